package sentiment

// Tally maps a sentiment category to the number of documents carrying it.
type Tally map[string]int64

// HourlyRecord is one hour of the timeline.
type HourlyRecord struct {
	Hour            string `json:"hour"`
	TotalDocuments  int64  `json:"total_documents"`
	PublicSentiment Tally  `json:"public_sentiment"`
	PoliceSentiment Tally  `json:"police_sentiment"`
}

// TimelineResult is the hour-by-hour sentiment breakdown of the latest day.
type TimelineResult struct {
	Date       string         `json:"date"`
	Timezone   string         `json:"timezone"`
	HourlyData []HourlyRecord `json:"hourly_data"`
}

// SentimentTotals counts documents per category across the whole index.
type SentimentTotals struct {
	TotalDocuments        int64 `json:"total_documents"`
	SentimentTotals       Tally `json:"sentiment_totals"`
	SentimentPolisiTotals Tally `json:"sentiment_polisi_totals"`
}

// Fields names the document fields the queries read.
type Fields struct {
	Created         string
	PublicSentiment string
	PoliceSentiment string
	Details         []string
}

// DefaultFields matches the news index mapping.
func DefaultFields() Fields {
	return Fields{
		Created:         "created",
		PublicSentiment: "sentiment.keyword",
		PoliceSentiment: "sentiment_polisi.keyword",
		Details: []string{
			"title",
			"author",
			"created",
			"fulltext",
			"jenis",
			"link",
			"media_url",
			"published",
		},
	}
}
