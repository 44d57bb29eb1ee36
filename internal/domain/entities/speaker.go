package entities

import (
	"sort"

	"github.com/johnquangdev/meeting-recapper/pkg/ai"
)

// Speaker holds the cumulative speaking time of one diarized speaker label
// within a meeting.
type Speaker struct {
	ID             uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID      uint   `json:"meeting_id" gorm:"not null;index"`
	Label          string `json:"speaker_id" gorm:"type:varchar(50);not null"`
	SpeakingTimeMs int64  `json:"speaking_time"`
}

// TableName specifies the table name for GORM
func (Speaker) TableName() string {
	return "speakers"
}

// AggregateSpeakers sums (end-start) over all utterances grouped by speaker
// label. Labels with no utterances never appear. Output is sorted by label so
// batch inserts are deterministic.
func AggregateSpeakers(meetingID uint, utterances []ai.Utterance) []Speaker {
	if len(utterances) == 0 {
		return nil
	}

	times := make(map[string]int64)
	for _, utt := range utterances {
		times[utt.Speaker] += utt.EndMs - utt.StartMs
	}

	labels := make([]string, 0, len(times))
	for label := range times {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	speakers := make([]Speaker, 0, len(labels))
	for _, label := range labels {
		speakers = append(speakers, Speaker{
			MeetingID:      meetingID,
			Label:          label,
			SpeakingTimeMs: times[label],
		})
	}
	return speakers
}
