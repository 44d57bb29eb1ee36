package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
)

// AnalysisRepository handles the per-meeting analysis rows (speakers,
// segments, topics, action items). Batch inserts with empty input are no-ops.
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// CreateSpeakers batch-inserts speaker rows
func (r *AnalysisRepository) CreateSpeakers(ctx context.Context, speakers []entities.Speaker) error {
	if len(speakers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&speakers).Error
}

// CreateSegments batch-inserts segment rows
func (r *AnalysisRepository) CreateSegments(ctx context.Context, segments []entities.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&segments).Error
}

// CreateTopics batch-inserts topic rows
func (r *AnalysisRepository) CreateTopics(ctx context.Context, topics []entities.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&topics).Error
}

// CreateActionItems batch-inserts action item rows
func (r *AnalysisRepository) CreateActionItems(ctx context.Context, items []entities.ActionItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// ListSpeakers returns all speakers for a meeting
func (r *AnalysisRepository) ListSpeakers(ctx context.Context, meetingID uint) ([]entities.Speaker, error) {
	var speakers []entities.Speaker
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Find(&speakers).Error; err != nil {
		return nil, err
	}
	return speakers, nil
}

// ListSegments returns segments for a meeting ordered by start time
func (r *AnalysisRepository) ListSegments(ctx context.Context, meetingID uint) ([]entities.Segment, error) {
	var segments []entities.Segment
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("start_ms ASC").
		Find(&segments).Error; err != nil {
		return nil, err
	}
	return segments, nil
}

// ListTopics returns topics for a meeting ordered by start time
func (r *AnalysisRepository) ListTopics(ctx context.Context, meetingID uint) ([]entities.Topic, error) {
	var topics []entities.Topic
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("start_ms ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

// ListActionItems returns action items for a meeting
func (r *AnalysisRepository) ListActionItems(ctx context.Context, meetingID uint) ([]entities.ActionItem, error) {
	var items []entities.ActionItem
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("start_time ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
