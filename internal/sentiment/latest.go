package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"newssentiment/internal/search"
)

// Layouts accepted for document timestamps. Layouts without an offset are read as UTC,
// which is how the engine itself stores zoneless dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// latest finds the newest document timestamp in index.
func (s *Service) latest(ctx context.Context, index string, strategy LatestStrategy) (time.Time, error) {
	switch strategy {
	case LatestByTopHit:
		return s.latestByTopHit(ctx, index)
	default:
		return s.latestByMax(ctx, index)
	}
}

func (s *Service) latestByMax(ctx context.Context, index string) (time.Time, error) {
	res, err := s.client.Search(ctx, index, BuildLatestByMaxQuery(s.fields))
	if err != nil {
		return time.Time{}, err
	}

	var agg search.MaxAggregation
	if err := res.Aggregation(aggLatestDate, &agg); err != nil {
		return time.Time{}, fmt.Errorf("latest timestamp: %w", err)
	}
	if agg.Value == nil || *agg.Value == 0 {
		return time.Time{}, ErrNoData
	}
	return time.UnixMilli(int64(*agg.Value)).UTC(), nil
}

func (s *Service) latestByTopHit(ctx context.Context, index string) (time.Time, error) {
	res, err := s.client.Search(ctx, index, BuildLatestDocumentQuery(s.fields))
	if err != nil {
		return time.Time{}, err
	}
	if len(res.Hits.Hits) == 0 {
		return time.Time{}, ErrNoData
	}

	var source map[string]json.RawMessage
	if err := json.Unmarshal(res.Hits.Hits[0].Source, &source); err != nil {
		return time.Time{}, fmt.Errorf("latest document: decode source: %w", err)
	}

	raw, ok := source[s.fields.Created]
	if !ok {
		// Documents without the field sort last, so none of them has it.
		return time.Time{}, ErrNoData
	}
	return parseTimestamp(raw)
}

// parseTimestamp reads a date field that is either a formatted string or epoch milliseconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if string(raw) == "null" {
		return time.Time{}, ErrNoData
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var millis json.Number
		if err := json.Unmarshal(raw, &millis); err != nil {
			return time.Time{}, fmt.Errorf("latest document: unsupported timestamp %s", raw)
		}
		ms, err := millis.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("latest document: unsupported timestamp %s", raw)
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("latest document: unsupported timestamp %q", text)
}
