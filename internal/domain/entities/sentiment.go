package entities

import "fmt"

// Sentiment categories as returned by the external sentiment analysis.
const (
	SentimentPositive = "POSITIVE"
	SentimentNeutral  = "NEUTRAL"
	SentimentNegative = "NEGATIVE"
)

// SentimentScore maps a categorical sentiment label to its numeric score:
// NEGATIVE is -1, NEUTRAL is 0, POSITIVE is 1. Any other label is an error,
// never a silent default. The ingestion pipeline and the sentiment-timeline
// tool share this mapping so the two cannot drift.
func SentimentScore(category string) (float64, error) {
	switch category {
	case SentimentPositive:
		return 1, nil
	case SentimentNeutral:
		return 0, nil
	case SentimentNegative:
		return -1, nil
	default:
		return 0, fmt.Errorf("unexpected sentiment value: %q", category)
	}
}
