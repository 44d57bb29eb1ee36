package timeline

import (
	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
	"github.com/johnquangdev/meeting-recapper/pkg/ai"
)

// previewLimit is the maximum number of transcript characters carried into a
// timeline entry before truncation.
const previewLimit = 50

// Entry is one point on the sentiment timeline.
type Entry struct {
	// Time is the segment start offset in whole seconds.
	Time int64 `json:"time"`
	// Text is the segment text, truncated to a short preview.
	Text string `json:"text"`
	// Sentiment is the provider's categorical label, unchanged.
	Sentiment string `json:"sentiment"`
	// Score is the numeric mapping of the label: 1, 0 or -1.
	Score int `json:"score"`
}

// Build maps sentiment analysis results to timeline entries in input order.
// An unrecognized sentiment category fails the whole build.
func Build(segments []ai.SentimentSegment) ([]Entry, error) {
	entries := make([]Entry, 0, len(segments))
	for _, seg := range segments {
		score, err := entities.SentimentScore(seg.Sentiment)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Time:      seg.StartMs / 1000,
			Text:      preview(seg.Text),
			Sentiment: seg.Sentiment,
			Score:     int(score),
		})
	}
	return entries, nil
}

// preview truncates text longer than the limit, marking the cut with an
// ellipsis. The limit counts characters, not bytes, so multi-byte text is
// never cut mid-rune. Text at or under the limit is returned unchanged.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}
