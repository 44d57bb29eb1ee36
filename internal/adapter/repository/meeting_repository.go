package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a meeting row and fills in the generated ID
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// UpdateTranscription records the transcript reference and duration
func (r *MeetingRepository) UpdateTranscription(ctx context.Context, id uint, transcriptID string, durationSec int) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transcript_id": transcriptID,
			"duration":      durationSec,
		}).Error
}

// List returns all meetings ordered newest first
func (r *MeetingRepository) List(ctx context.Context) ([]entities.Meeting, error) {
	var meetings []entities.Meeting
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// GetByID retrieves a meeting by ID, returning (nil, nil) when absent
func (r *MeetingRepository) GetByID(ctx context.Context, id uint) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// JobRepository handles processing job data operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new processing job repository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a processing job
func (r *JobRepository) Create(ctx context.Context, job *entities.ProcessingJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// Update persists job state changes
func (r *JobRepository) Update(ctx context.Context, job *entities.ProcessingJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	job.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(job).Error
}

// GetByMeetingID retrieves the latest job for a meeting, or (nil, nil)
func (r *JobRepository) GetByMeetingID(ctx context.Context, meetingID uint) (*entities.ProcessingJob, error) {
	var job entities.ProcessingJob
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at DESC").
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}
