package entities

import "github.com/johnquangdev/meeting-recapper/pkg/ai"

// Segment is a time-bounded span of transcript text with a sentiment score
// in [-1, 1]. Listed ordered by start time for timeline rendering.
type Segment struct {
	ID        uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID uint    `json:"meeting_id" gorm:"not null;index"`
	StartMs   int64   `json:"start_time"`
	EndMs     int64   `json:"end_time"`
	Text      string  `json:"text" gorm:"type:text"`
	Score     float64 `json:"sentiment"`
}

// TableName specifies the table name for GORM
func (Segment) TableName() string {
	return "segments"
}

// NewSegmentFromSentiment maps one external sentiment result to a segment row.
// An unrecognized categorical label is a fatal input-validation error.
func NewSegmentFromSentiment(meetingID uint, s ai.SentimentSegment) (*Segment, error) {
	score, err := SentimentScore(s.Sentiment)
	if err != nil {
		return nil, err
	}
	return &Segment{
		MeetingID: meetingID,
		StartMs:   s.StartMs,
		EndMs:     s.EndMs,
		Text:      s.Text,
		Score:     score,
	}, nil
}
