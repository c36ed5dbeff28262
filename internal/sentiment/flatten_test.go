package sentiment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newssentiment/internal/search"
)

func decodeBuckets(t *testing.T, raw string) []search.DateHistogramBucket {
	t.Helper()
	var hist search.DateHistogramAggregation
	require.NoError(t, json.Unmarshal([]byte(raw), &hist))
	return hist.Buckets
}

const threeHours = `{"buckets": [
	{
		"key_as_string": "2025-04-15T00:00:00+07:00",
		"key": 1744650000000,
		"doc_count": 5,
		"public_sentiment": {"buckets": [{"key": "positive", "doc_count": 3}, {"key": "negative", "doc_count": 2}]},
		"police_sentiment": {"buckets": [{"key": "neutral", "doc_count": 4}]}
	},
	{
		"key_as_string": "2025-04-15T01:00:00+07:00",
		"key": 1744653600000,
		"doc_count": 0,
		"public_sentiment": {"buckets": []},
		"police_sentiment": {"buckets": []}
	},
	{
		"key_as_string": "2025-04-15T02:00:00+07:00",
		"key": 1744657200000,
		"doc_count": 12,
		"public_sentiment": {"buckets": [{"key": "neutral", "doc_count": 9}]},
		"police_sentiment": {"buckets": [{"key": "negative", "doc_count": 7}, {"key": "positive", "doc_count": 1}]}
	}
]}`

func TestFlattenBuildsHourlyRecords(t *testing.T) {
	buckets := decodeBuckets(t, threeHours)

	for _, src := range []HourSource{HourFromKeyAsString, HourFromKey} {
		records, err := Flatten(buckets, testWindow(), src)
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, HourlyRecord{
			Hour:            "00:00",
			TotalDocuments:  5,
			PublicSentiment: Tally{"positive": 3, "negative": 2},
			PoliceSentiment: Tally{"neutral": 4},
		}, records[0])
		assert.Equal(t, "01:00", records[1].Hour)
		assert.Equal(t, int64(0), records[1].TotalDocuments)
		assert.Empty(t, records[1].PublicSentiment)
		assert.NotNil(t, records[1].PublicSentiment)
		assert.Equal(t, "02:00", records[2].Hour)
	}
}

func TestFlattenDoesNotZeroFillCategories(t *testing.T) {
	records, err := Flatten(decodeBuckets(t, threeHours), testWindow(), HourFromKey)
	require.NoError(t, err)

	_, ok := records[0].PublicSentiment["neutral"]
	assert.False(t, ok, "categories missing from an hour must stay absent")
	assert.Equal(t, int64(12), records[2].TotalDocuments, "total comes from doc_count, not tallies")
}

func TestFlattenPreservesEngineOrder(t *testing.T) {
	raw := `{"buckets": [
		{"key_as_string": "2025-04-15T05:00:00+07:00", "key": 1744668000000, "doc_count": 1,
		 "public_sentiment": {"buckets": []}, "police_sentiment": {"buckets": []}},
		{"key_as_string": "2025-04-15T03:00:00+07:00", "key": 1744660800000, "doc_count": 1,
		 "public_sentiment": {"buckets": []}, "police_sentiment": {"buckets": []}}
	]}`

	records, err := Flatten(decodeBuckets(t, raw), testWindow(), HourFromKeyAsString)
	require.NoError(t, err)
	assert.Equal(t, "05:00", records[0].Hour)
	assert.Equal(t, "03:00", records[1].Hour)
}

func TestFlattenUsesBucketTimestampNotPosition(t *testing.T) {
	// A UTC-formatted key still renders in the window's location.
	raw := `{"buckets": [
		{"key_as_string": "2025-04-14T20:00:00Z", "key": 1744660800000, "doc_count": 2,
		 "public_sentiment": {"buckets": []}, "police_sentiment": {"buckets": []}}
	]}`

	records, err := Flatten(decodeBuckets(t, raw), testWindow(), HourFromKeyAsString)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "03:00", records[0].Hour)
}

func TestFlattenEmpty(t *testing.T) {
	records, err := Flatten(nil, testWindow(), HourFromKey)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	data, err := json.Marshal(TimelineResult{HourlyData: records})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hourly_data":[]`)
}

func TestFlattenIsIdempotent(t *testing.T) {
	buckets := decodeBuckets(t, threeHours)

	first, err := Flatten(buckets, testWindow(), HourFromKeyAsString)
	require.NoError(t, err)
	second, err := Flatten(buckets, testWindow(), HourFromKeyAsString)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFlattenFailsWithoutPartialOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		src  HourSource
	}{
		{
			name: "missing sub-aggregation",
			raw: `{"buckets": [
				{"key_as_string": "2025-04-15T00:00:00+07:00", "key": 1744650000000, "doc_count": 1,
				 "public_sentiment": {"buckets": []}, "police_sentiment": {"buckets": []}},
				{"key_as_string": "2025-04-15T01:00:00+07:00", "key": 1744653600000, "doc_count": 1,
				 "public_sentiment": {"buckets": []}}
			]}`,
			src: HourFromKey,
		},
		{
			name: "bad key_as_string",
			raw: `{"buckets": [
				{"key_as_string": "15/04/2025 00:00", "key": 1744650000000, "doc_count": 1,
				 "public_sentiment": {"buckets": []}, "police_sentiment": {"buckets": []}}
			]}`,
			src: HourFromKeyAsString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Flatten(decodeBuckets(t, tt.raw), testWindow(), tt.src)
			assert.Error(t, err)
			assert.Nil(t, records)
		})
	}
}
