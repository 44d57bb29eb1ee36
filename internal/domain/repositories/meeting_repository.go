package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
)

// MeetingRepository defines meeting persistence operations
type MeetingRepository interface {
	// Create inserts a meeting row and fills in its generated ID.
	Create(ctx context.Context, meeting *entities.Meeting) error
	// UpdateTranscription records the external transcript reference and the
	// audio duration once processing completes.
	UpdateTranscription(ctx context.Context, id uint, transcriptID string, durationSec int) error
	// List returns all meetings ordered newest first.
	List(ctx context.Context) ([]entities.Meeting, error)
	// GetByID returns the meeting, or (nil, nil) when the id is absent.
	GetByID(ctx context.Context, id uint) (*entities.Meeting, error)
}

// AnalysisRepository defines persistence for the per-meeting analysis rows.
// Batch inserts with empty input are no-ops, and list results for segments
// and topics are ordered by start time.
type AnalysisRepository interface {
	CreateSpeakers(ctx context.Context, speakers []entities.Speaker) error
	CreateSegments(ctx context.Context, segments []entities.Segment) error
	CreateTopics(ctx context.Context, topics []entities.Topic) error
	CreateActionItems(ctx context.Context, items []entities.ActionItem) error

	ListSpeakers(ctx context.Context, meetingID uint) ([]entities.Speaker, error)
	ListSegments(ctx context.Context, meetingID uint) ([]entities.Segment, error)
	ListTopics(ctx context.Context, meetingID uint) ([]entities.Topic, error)
	ListActionItems(ctx context.Context, meetingID uint) ([]entities.ActionItem, error)
}

// JobRepository defines persistence for background processing jobs
type JobRepository interface {
	Create(ctx context.Context, job *entities.ProcessingJob) error
	Update(ctx context.Context, job *entities.ProcessingJob) error
	// GetByMeetingID returns the latest job for a meeting, or (nil, nil).
	GetByMeetingID(ctx context.Context, meetingID uint) (*entities.ProcessingJob, error)
}
