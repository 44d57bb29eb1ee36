package entities

import "time"

// Meeting is one uploaded recording and the root of its analysis results.
// TranscriptID and Duration stay null until background processing finishes;
// readers use a null Duration as the "still processing" signal.
type Meeting struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string    `json:"title" gorm:"type:varchar(255);not null"`
	FilePath     string    `json:"file_path" gorm:"type:text"`
	TranscriptID *string   `json:"transcript_id,omitempty" gorm:"type:varchar(255)"`
	Duration     *int      `json:"duration,omitempty"` // in seconds
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a meeting row for a freshly uploaded recording.
func NewMeeting(title, filePath string) *Meeting {
	return &Meeting{
		Title:     title,
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}
}

// IsProcessed reports whether background processing has completed.
func (m *Meeting) IsProcessed() bool {
	return m.Duration != nil
}
