package entities

import (
	"math"

	"github.com/johnquangdev/meeting-recapper/pkg/ai"
)

// Topic is an externally identified salient span of the transcript.
// Relevance is display-only and recomputed per request, never persisted.
type Topic struct {
	ID        uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID uint    `json:"meeting_id" gorm:"not null;index"`
	Label     string  `json:"topic" gorm:"type:text"`
	StartMs   int64   `json:"start_time"`
	EndMs     int64   `json:"end_time"`
	Relevance float64 `json:"relevance" gorm:"-"`
}

// TableName specifies the table name for GORM
func (Topic) TableName() string {
	return "topics"
}

// NewTopicFromHighlight maps an external highlight to a topic row using the
// first time range of the span. Highlights without any time range are skipped.
func NewTopicFromHighlight(meetingID uint, h ai.Highlight) (*Topic, bool) {
	if len(h.Timestamps) == 0 {
		return nil, false
	}
	first := h.Timestamps[0]
	return &Topic{
		MeetingID: meetingID,
		Label:     h.Text,
		StartMs:   first.StartMs,
		EndMs:     first.EndMs,
	}, true
}

// ComputeRelevance fills in the display relevance of each topic, proportional
// to span duration relative to the longest span in the meeting, scaled to a
// maximum of 25 and rounded to two decimals.
func ComputeRelevance(topics []Topic) {
	var maxDur int64
	for _, t := range topics {
		if d := t.EndMs - t.StartMs; d > maxDur {
			maxDur = d
		}
	}
	if maxDur == 0 {
		return
	}
	for i := range topics {
		dur := topics[i].EndMs - topics[i].StartMs
		rel := float64(dur) / float64(maxDur) * 25
		topics[i].Relevance = math.Round(rel*100) / 100
	}
}
