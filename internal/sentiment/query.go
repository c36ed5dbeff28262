package sentiment

import "time"

const (
	aggLatestDate     = "latest_date"
	aggByHour         = "sentiment_by_hour"
	aggPublic         = "public_sentiment"
	aggPolice         = "police_sentiment"
	aggTotalPublic    = "total_sentiment"
	aggTotalPolice    = "total_sentiment_polisi"
	totalsTermsSize   = 10
	rangeDateFormat   = "strict_date_optional_time"
	histogramFormat   = "yyyy-MM-dd'T'HH:mm:ssxxx"
	histogramInterval = "1h"
)

// LatestStrategy selects how the newest document timestamp is found.
type LatestStrategy int

const (
	// LatestByMaxAggregation asks the engine for max(created).
	LatestByMaxAggregation LatestStrategy = iota + 1
	// LatestByTopHit sorts by created descending and reads the first hit.
	LatestByTopHit
)

// Interval selects the date_histogram bucketing mode.
type Interval int

const (
	// CalendarHour buckets with calendar_interval=hour.
	CalendarHour Interval = iota + 1
	// FixedHour buckets with fixed_interval=1h.
	FixedHour
)

// HourSource selects which bucket field yields the hour label.
type HourSource int

const (
	// HourFromKeyAsString parses the formatted bucket key.
	HourFromKeyAsString HourSource = iota + 1
	// HourFromKey converts the epoch-millisecond bucket key.
	HourFromKey
)

// TimelineVariant bundles the choices that distinguish the two timeline endpoints.
type TimelineVariant struct {
	Name       string
	Latest     LatestStrategy
	Interval   Interval
	TermsSize  int
	HourSource HourSource
	// FilterContext nests the day range in bool.filter instead of a bare range query.
	FilterContext bool
}

var (
	// FullTimeline reports up to 10 categories per tally.
	FullTimeline = TimelineVariant{
		Name:          "full",
		Latest:        LatestByMaxAggregation,
		Interval:      CalendarHour,
		TermsSize:     10,
		HourSource:    HourFromKeyAsString,
		FilterContext: true,
	}
	// CompactTimeline reports the top 3 categories per tally.
	CompactTimeline = TimelineVariant{
		Name:       "compact",
		Latest:     LatestByTopHit,
		Interval:   FixedHour,
		TermsSize:  3,
		HourSource: HourFromKey,
	}
)

// BuildHourlySentimentQuery requests per-hour document counts over the window, split by
// both sentiment fields. The range filter is inclusive on both ends and the histogram
// bounds are pinned to the window so empty hours are still returned.
func BuildHourlySentimentQuery(window DayWindow, v TimelineVariant, f Fields) map[string]any {
	tz := window.Start.Location().String()
	start := window.Start.Format(time.RFC3339)
	end := window.End.Format(time.RFC3339)

	rangeQuery := map[string]any{
		"range": map[string]any{
			f.Created: map[string]any{
				"gte":       start,
				"lte":       end,
				"format":    rangeDateFormat,
				"time_zone": tz,
			},
		},
	}

	query := rangeQuery
	if v.FilterContext {
		query = map[string]any{
			"bool": map[string]any{
				"filter": []any{rangeQuery},
			},
		}
	}

	histogram := map[string]any{
		"field":         f.Created,
		"min_doc_count": 0,
		"time_zone":     tz,
		"extended_bounds": map[string]any{
			"min": start,
			"max": end,
		},
	}
	switch v.Interval {
	case CalendarHour:
		histogram["calendar_interval"] = "hour"
		histogram["format"] = histogramFormat
	default:
		histogram["fixed_interval"] = histogramInterval
	}

	return map[string]any{
		"size":  0,
		"query": query,
		"aggs": map[string]any{
			aggByHour: map[string]any{
				"date_histogram": histogram,
				"aggs": map[string]any{
					aggPublic: termsAgg(f.PublicSentiment, v.TermsSize),
					aggPolice: termsAgg(f.PoliceSentiment, v.TermsSize),
				},
			},
		},
	}
}

// BuildLatestByMaxQuery asks for the maximum timestamp without returning documents.
func BuildLatestByMaxQuery(f Fields) map[string]any {
	return map[string]any{
		"size": 0,
		"aggs": map[string]any{
			aggLatestDate: map[string]any{
				"max": map[string]any{"field": f.Created},
			},
		},
	}
}

// BuildLatestDocumentQuery fetches only the timestamp of the newest document.
func BuildLatestDocumentQuery(f Fields) map[string]any {
	return newestDocument(f, []string{f.Created})
}

// BuildNewsDetailsQuery fetches the display fields of the newest document.
func BuildNewsDetailsQuery(f Fields) map[string]any {
	return newestDocument(f, f.Details)
}

// BuildSentimentTotalsQuery counts every document per category of both sentiment fields.
func BuildSentimentTotalsQuery(f Fields) map[string]any {
	return map[string]any{
		"size":             0,
		"track_total_hits": true,
		"aggs": map[string]any{
			aggTotalPublic: termsAgg(f.PublicSentiment, totalsTermsSize),
			aggTotalPolice: termsAgg(f.PoliceSentiment, totalsTermsSize),
		},
	}
}

func newestDocument(f Fields, source []string) map[string]any {
	return map[string]any{
		"size":    1,
		"_source": source,
		"sort": []any{
			map[string]any{
				f.Created: map[string]any{"order": "desc"},
			},
		},
	}
}

func termsAgg(field string, size int) map[string]any {
	return map[string]any{
		"terms": map[string]any{
			"field": field,
			"size":  size,
		},
	}
}
