package sentiment

import (
	"fmt"
	"time"

	"newssentiment/internal/search"
)

const hourLayout = "15:04"

// Flatten turns hour buckets into timeline records in engine order. Hour labels come
// from each bucket's own timestamp, rendered in the window's location. Categories the
// engine did not return for an hour are left out of that hour's tallies.
func Flatten(buckets []search.DateHistogramBucket, window DayWindow, src HourSource) ([]HourlyRecord, error) {
	loc := window.Start.Location()
	records := make([]HourlyRecord, 0, len(buckets))

	for i, bucket := range buckets {
		at, err := bucketTime(bucket, src)
		if err != nil {
			return nil, fmt.Errorf("bucket %d: %w", i, err)
		}

		public, err := tally(bucket, aggPublic)
		if err != nil {
			return nil, fmt.Errorf("bucket %d: %w", i, err)
		}
		police, err := tally(bucket, aggPolice)
		if err != nil {
			return nil, fmt.Errorf("bucket %d: %w", i, err)
		}

		records = append(records, HourlyRecord{
			Hour:            at.In(loc).Format(hourLayout),
			TotalDocuments:  bucket.DocCount,
			PublicSentiment: public,
			PoliceSentiment: police,
		})
	}

	return records, nil
}

func bucketTime(bucket search.DateHistogramBucket, src HourSource) (time.Time, error) {
	if src == HourFromKeyAsString {
		t, err := time.Parse(time.RFC3339, bucket.KeyAsString)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse key_as_string %q: %w", bucket.KeyAsString, err)
		}
		return t, nil
	}
	return time.UnixMilli(bucket.Key), nil
}

func tally(bucket search.DateHistogramBucket, name string) (Tally, error) {
	var terms search.TermsAggregation
	if err := bucket.Aggregation(name, &terms); err != nil {
		return nil, err
	}
	return tallyOf(terms), nil
}

func tallyOf(terms search.TermsAggregation) Tally {
	out := make(Tally, len(terms.Buckets))
	for _, b := range terms.Buckets {
		out[b.Term()] = b.DocCount
	}
	return out
}
