package entities

import (
	"time"

	"gorm.io/datatypes"
)

// JobStatus represents the status of a background processing job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing" // External transcription and extraction in flight
	JobStatusCompleted  JobStatus = "completed"  // All extraction categories attempted and persisted
	JobStatusFailed     JobStatus = "failed"     // Transcription failed; reason recorded in LastError
)

// ProcessingJob tracks the detached background work for one meeting, so
// failures are observable instead of a meeting silently staying incomplete.
type ProcessingJob struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID uint      `json:"meeting_id" gorm:"not null;index"`
	Status    JobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'processing'"`
	LastError *string   `json:"last_error,omitempty" gorm:"type:text"`

	// Metadata holds per-job diagnostics (raw extraction response, counts).
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ProcessingJob) TableName() string {
	return "processing_jobs"
}

// NewProcessingJob creates a job in the processing state for a meeting.
func NewProcessingJob(meetingID uint) *ProcessingJob {
	return &ProcessingJob{
		MeetingID: meetingID,
		Status:    JobStatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// MarkCompleted marks the job as completed
func (j *ProcessingJob) MarkCompleted() {
	j.Status = JobStatusCompleted
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed marks the job as failed with a reason
func (j *ProcessingJob) MarkFailed(reason string) {
	j.Status = JobStatusFailed
	j.LastError = &reason
	j.UpdatedAt = time.Now()
}
