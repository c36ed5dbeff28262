package sentiment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeBounds struct {
	Gte      string `json:"gte"`
	Lte      string `json:"lte"`
	Format   string `json:"format"`
	TimeZone string `json:"time_zone"`
}

type termsSpec struct {
	Terms struct {
		Field string `json:"field"`
		Size  int    `json:"size"`
	} `json:"terms"`
}

type hourlyQuery struct {
	Size  int `json:"size"`
	Query struct {
		Range map[string]rangeBounds `json:"range"`
		Bool  struct {
			Filter []struct {
				Range map[string]rangeBounds `json:"range"`
			} `json:"filter"`
		} `json:"bool"`
	} `json:"query"`
	Aggs struct {
		ByHour struct {
			DateHistogram struct {
				Field            string `json:"field"`
				CalendarInterval string `json:"calendar_interval"`
				FixedInterval    string `json:"fixed_interval"`
				Format           string `json:"format"`
				MinDocCount      *int   `json:"min_doc_count"`
				TimeZone         string `json:"time_zone"`
				ExtendedBounds   struct {
					Min string `json:"min"`
					Max string `json:"max"`
				} `json:"extended_bounds"`
			} `json:"date_histogram"`
			Aggs map[string]termsSpec `json:"aggs"`
		} `json:"sentiment_by_hour"`
	} `json:"aggs"`
}

func decodeHourlyQuery(t *testing.T, q map[string]any) hourlyQuery {
	t.Helper()
	data, err := json.Marshal(q)
	require.NoError(t, err)

	var out hourlyQuery
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func testWindow() DayWindow {
	return ResolveWindow(time.Date(2025, 4, 15, 23, 50, 0, 0, jakarta), jakarta)
}

func TestBuildHourlySentimentQueryFull(t *testing.T) {
	q := decodeHourlyQuery(t, BuildHourlySentimentQuery(testWindow(), FullTimeline, DefaultFields()))

	assert.Equal(t, 0, q.Size)
	assert.Empty(t, q.Query.Range)
	require.Len(t, q.Query.Bool.Filter, 1)
	bounds := q.Query.Bool.Filter[0].Range["created"]
	assert.Equal(t, "2025-04-15T00:00:00+07:00", bounds.Gte)
	assert.Equal(t, "2025-04-16T00:00:00+07:00", bounds.Lte)
	assert.Equal(t, "strict_date_optional_time", bounds.Format)
	assert.Equal(t, "Asia/Jakarta", bounds.TimeZone)

	hist := q.Aggs.ByHour.DateHistogram
	assert.Equal(t, "created", hist.Field)
	assert.Equal(t, "hour", hist.CalendarInterval)
	assert.Empty(t, hist.FixedInterval)
	assert.Equal(t, "yyyy-MM-dd'T'HH:mm:ssxxx", hist.Format)
	require.NotNil(t, hist.MinDocCount)
	assert.Equal(t, 0, *hist.MinDocCount)
	assert.Equal(t, "Asia/Jakarta", hist.TimeZone)

	require.Contains(t, q.Aggs.ByHour.Aggs, "public_sentiment")
	require.Contains(t, q.Aggs.ByHour.Aggs, "police_sentiment")
	assert.Equal(t, "sentiment.keyword", q.Aggs.ByHour.Aggs["public_sentiment"].Terms.Field)
	assert.Equal(t, 10, q.Aggs.ByHour.Aggs["public_sentiment"].Terms.Size)
	assert.Equal(t, "sentiment_polisi.keyword", q.Aggs.ByHour.Aggs["police_sentiment"].Terms.Field)
	assert.Equal(t, 10, q.Aggs.ByHour.Aggs["police_sentiment"].Terms.Size)
}

func TestBuildHourlySentimentQueryCompact(t *testing.T) {
	q := decodeHourlyQuery(t, BuildHourlySentimentQuery(testWindow(), CompactTimeline, DefaultFields()))

	assert.Empty(t, q.Query.Bool.Filter)
	bounds, ok := q.Query.Range["created"]
	require.True(t, ok)
	assert.Equal(t, "2025-04-15T00:00:00+07:00", bounds.Gte)
	assert.Equal(t, "2025-04-16T00:00:00+07:00", bounds.Lte)

	hist := q.Aggs.ByHour.DateHistogram
	assert.Equal(t, "1h", hist.FixedInterval)
	assert.Empty(t, hist.CalendarInterval)
	assert.Empty(t, hist.Format)
	assert.Equal(t, 3, q.Aggs.ByHour.Aggs["public_sentiment"].Terms.Size)
	assert.Equal(t, 3, q.Aggs.ByHour.Aggs["police_sentiment"].Terms.Size)
	assert.Len(t, q.Aggs.ByHour.Aggs, 2)
}

func TestBuildHourlySentimentQueryBoundsRoundTrip(t *testing.T) {
	for _, v := range []TimelineVariant{FullTimeline, CompactTimeline} {
		t.Run(v.Name, func(t *testing.T) {
			window := testWindow()
			q := decodeHourlyQuery(t, BuildHourlySentimentQuery(window, v, DefaultFields()))

			bounds := q.Query.Range["created"]
			if v.FilterContext {
				bounds = q.Query.Bool.Filter[0].Range["created"]
			}
			parsed := []string{
				bounds.Gte,
				bounds.Lte,
				q.Aggs.ByHour.DateHistogram.ExtendedBounds.Min,
				q.Aggs.ByHour.DateHistogram.ExtendedBounds.Max,
			}
			want := []time.Time{window.Start, window.End, window.Start, window.End}

			for i, s := range parsed {
				got, err := time.Parse(time.RFC3339, s)
				require.NoError(t, err)
				assert.True(t, got.Equal(want[i]), "bound %d: got %s want %s", i, got, want[i])
			}
		})
	}
}

func TestBuildHourlySentimentQueryFilterContextIndependentOfInterval(t *testing.T) {
	fixedFiltered := TimelineVariant{Name: "fixed-filtered", Interval: FixedHour, TermsSize: 5, FilterContext: true}
	q := decodeHourlyQuery(t, BuildHourlySentimentQuery(testWindow(), fixedFiltered, DefaultFields()))

	assert.Empty(t, q.Query.Range)
	require.Len(t, q.Query.Bool.Filter, 1)
	assert.Contains(t, q.Query.Bool.Filter[0].Range, "created")
	assert.Equal(t, "1h", q.Aggs.ByHour.DateHistogram.FixedInterval)

	calendarBare := TimelineVariant{Name: "calendar-bare", Interval: CalendarHour, TermsSize: 5}
	q = decodeHourlyQuery(t, BuildHourlySentimentQuery(testWindow(), calendarBare, DefaultFields()))

	assert.Empty(t, q.Query.Bool.Filter)
	assert.Contains(t, q.Query.Range, "created")
	assert.Equal(t, "hour", q.Aggs.ByHour.DateHistogram.CalendarInterval)
}

func TestBuildHourlySentimentQueryCustomFields(t *testing.T) {
	f := Fields{Created: "published_at", PublicSentiment: "tone", PoliceSentiment: "tone_authority"}
	q := decodeHourlyQuery(t, BuildHourlySentimentQuery(testWindow(), FullTimeline, f))

	assert.Contains(t, q.Query.Bool.Filter[0].Range, "published_at")
	assert.Equal(t, "published_at", q.Aggs.ByHour.DateHistogram.Field)
	assert.Equal(t, "tone", q.Aggs.ByHour.Aggs["public_sentiment"].Terms.Field)
	assert.Equal(t, "tone_authority", q.Aggs.ByHour.Aggs["police_sentiment"].Terms.Field)
}

func TestBuildLatestQueries(t *testing.T) {
	f := DefaultFields()

	byMax, err := json.Marshal(BuildLatestByMaxQuery(f))
	require.NoError(t, err)
	assert.JSONEq(t, `{"size": 0, "aggs": {"latest_date": {"max": {"field": "created"}}}}`, string(byMax))

	top, err := json.Marshal(BuildLatestDocumentQuery(f))
	require.NoError(t, err)
	assert.JSONEq(t, `{"size": 1, "_source": ["created"], "sort": [{"created": {"order": "desc"}}]}`, string(top))
}

func TestBuildNewsDetailsQuery(t *testing.T) {
	data, err := json.Marshal(BuildNewsDetailsQuery(DefaultFields()))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"size": 1,
		"_source": ["title", "author", "created", "fulltext", "jenis", "link", "media_url", "published"],
		"sort": [{"created": {"order": "desc"}}]
	}`, string(data))
}

func TestBuildSentimentTotalsQuery(t *testing.T) {
	data, err := json.Marshal(BuildSentimentTotalsQuery(DefaultFields()))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"size": 0,
		"track_total_hits": true,
		"aggs": {
			"total_sentiment": {"terms": {"field": "sentiment.keyword", "size": 10}},
			"total_sentiment_polisi": {"terms": {"field": "sentiment_polisi.keyword", "size": 10}}
		}
	}`, string(data))
}
