package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrAggregationMissing is returned when a named aggregation is absent from a response or bucket.
var ErrAggregationMissing = errors.New("search: aggregation missing")

// Response is the subset of the engine's search response the service reads.
type Response struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Hits         Hits                       `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// Hits wraps the matched documents.
type Hits struct {
	Total *TotalHits `json:"total"`
	Hits  []Hit      `json:"hits"`
}

// TotalHits is the engine's hit count.
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// Hit is a single matched document.
type Hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

// TotalValue returns the hit count, zero when the engine omitted it.
func (r *Response) TotalValue() int64 {
	if r.Hits.Total == nil {
		return 0
	}
	return r.Hits.Total.Value
}

// Aggregation decodes the named top-level aggregation into v.
func (r *Response) Aggregation(name string, v any) error {
	return decodeAggregation(r.Aggregations, name, v)
}

// MaxAggregation is the result of a max metric aggregation. Value is nil when no document matched.
type MaxAggregation struct {
	Value         *float64 `json:"value"`
	ValueAsString string   `json:"value_as_string"`
}

// TermsAggregation is the result of a terms bucket aggregation.
type TermsAggregation struct {
	Buckets []TermsBucket `json:"buckets"`
}

// TermsBucket is one category of a terms aggregation.
type TermsBucket struct {
	Key      json.RawMessage `json:"key"`
	DocCount int64           `json:"doc_count"`
}

// Term renders the bucket key as a string. Keyword fields produce JSON strings;
// numeric or boolean fields are rendered from their literal.
func (b TermsBucket) Term() string {
	var s string
	if err := json.Unmarshal(b.Key, &s); err == nil {
		return s
	}
	return string(b.Key)
}

// DateHistogramAggregation is the result of a date_histogram bucket aggregation.
type DateHistogramAggregation struct {
	Buckets []DateHistogramBucket `json:"buckets"`
}

// DateHistogramBucket is one time bucket. Key is epoch milliseconds.
type DateHistogramBucket struct {
	Key             int64
	KeyAsString     string
	DocCount        int64
	SubAggregations map[string]json.RawMessage
}

// UnmarshalJSON splits the fixed bucket fields from the named sub-aggregations.
func (b *DateHistogramBucket) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*b = DateHistogramBucket{SubAggregations: make(map[string]json.RawMessage)}
	for name, raw := range fields {
		switch name {
		case "key":
			key, err := decodeEpochMillis(raw)
			if err != nil {
				return fmt.Errorf("bucket key: %w", err)
			}
			b.Key = key
		case "key_as_string":
			if err := json.Unmarshal(raw, &b.KeyAsString); err != nil {
				return fmt.Errorf("bucket key_as_string: %w", err)
			}
		case "doc_count":
			if err := json.Unmarshal(raw, &b.DocCount); err != nil {
				return fmt.Errorf("bucket doc_count: %w", err)
			}
		default:
			b.SubAggregations[name] = raw
		}
	}
	return nil
}

// Aggregation decodes the named sub-aggregation of the bucket into v.
func (b DateHistogramBucket) Aggregation(name string, v any) error {
	return decodeAggregation(b.SubAggregations, name, v)
}

func decodeAggregation(aggs map[string]json.RawMessage, name string, v any) error {
	raw, ok := aggs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAggregationMissing, name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode aggregation %s: %w", name, err)
	}
	return nil
}

func decodeEpochMillis(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
