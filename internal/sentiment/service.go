package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"newssentiment/internal/search"
)

// Service answers the news and sentiment queries against a search engine.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	client     search.Client
	loc        *time.Location
	focusMonth time.Month
	fields     Fields
	logger     *zap.Logger
}

// Options configures a Service. Zero values fall back to UTC, no month filter,
// DefaultFields and a no-op logger.
type Options struct {
	Location   *time.Location
	FocusMonth time.Month
	Fields     Fields
	Logger     *zap.Logger
}

// NewService constructs a Service.
func NewService(client search.Client, opts Options) (*Service, error) {
	if client == nil {
		return nil, errors.New("sentiment: service requires a search client")
	}
	if opts.FocusMonth < 0 || opts.FocusMonth > time.December {
		return nil, fmt.Errorf("sentiment: invalid focus month %d", opts.FocusMonth)
	}

	s := &Service{
		client:     client,
		loc:        opts.Location,
		focusMonth: opts.FocusMonth,
		fields:     opts.Fields,
		logger:     opts.Logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.fields.Created == "" {
		s.fields = DefaultFields()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// NewsDetails returns the display fields of the newest document in index.
func (s *Service) NewsDetails(ctx context.Context, index string) (json.RawMessage, error) {
	res, err := s.client.Search(ctx, index, BuildNewsDetailsQuery(s.fields))
	if err != nil {
		return nil, err
	}
	if len(res.Hits.Hits) == 0 {
		return nil, ErrNoData
	}

	hit := res.Hits.Hits[0]
	if len(hit.Source) == 0 || string(hit.Source) == "null" {
		return nil, fmt.Errorf("news details: document %q in %s has no _source", hit.ID, index)
	}
	return hit.Source, nil
}

// SentimentTotals counts documents per category over the whole index.
func (s *Service) SentimentTotals(ctx context.Context, index string) (*SentimentTotals, error) {
	res, err := s.client.Search(ctx, index, BuildSentimentTotalsQuery(s.fields))
	if err != nil {
		return nil, err
	}

	var public, police search.TermsAggregation
	if err := res.Aggregation(aggTotalPublic, &public); err != nil {
		return nil, fmt.Errorf("sentiment totals: %w", err)
	}
	if err := res.Aggregation(aggTotalPolice, &police); err != nil {
		return nil, fmt.Errorf("sentiment totals: %w", err)
	}

	return &SentimentTotals{
		TotalDocuments:        res.TotalValue(),
		SentimentTotals:       tallyOf(public),
		SentimentPolisiTotals: tallyOf(police),
	}, nil
}

// Timeline resolves the newest document's local day and returns its hourly sentiment
// breakdown. ErrNoData and *OutOfScopeError are returned before the hourly query is sent.
func (s *Service) Timeline(ctx context.Context, index string, v TimelineVariant) (*TimelineResult, error) {
	latest, err := s.latest(ctx, index, v.Latest)
	if err != nil {
		return nil, err
	}
	if err := checkMonth(latest, s.loc, s.focusMonth); err != nil {
		return nil, err
	}

	window := ResolveWindow(latest, s.loc)
	s.logger.Debug("timeline window resolved",
		zap.String("index", index),
		zap.String("variant", v.Name),
		zap.Time("latest", latest),
		zap.Time("start", window.Start),
		zap.Time("end", window.End),
	)

	res, err := s.client.Search(ctx, index, BuildHourlySentimentQuery(window, v, s.fields))
	if err != nil {
		return nil, err
	}

	var hist search.DateHistogramAggregation
	if err := res.Aggregation(aggByHour, &hist); err != nil {
		return nil, fmt.Errorf("hourly sentiment: %w", err)
	}

	records, err := Flatten(hist.Buckets, window, v.HourSource)
	if err != nil {
		return nil, fmt.Errorf("hourly sentiment: %w", err)
	}

	return &TimelineResult{
		Date:       window.Date(),
		Timezone:   s.loc.String(),
		HourlyData: records,
	}, nil
}
