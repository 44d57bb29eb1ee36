package meetings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recapper/errors"
	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
	"github.com/johnquangdev/meeting-recapper/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recapper/internal/infrastructure/cache"
)

// MeetingSummary is one row of the meeting list with its derived status.
type MeetingSummary struct {
	entities.Meeting
	Status entities.JobStatus `json:"status"`
}

// MeetingRecord is the full retrieval view of one meeting: the meeting row,
// its processing status and every persisted analysis category.
type MeetingRecord struct {
	Meeting     entities.Meeting      `json:"meeting"`
	Status      entities.JobStatus    `json:"status"`
	LastError   *string               `json:"last_error,omitempty"`
	Speakers    []entities.Speaker    `json:"speakers"`
	Segments    []entities.Segment    `json:"segments"`
	Topics      []entities.Topic      `json:"topics"`
	ActionItems []entities.ActionItem `json:"action_items"`
}

// Service reads meetings and their analysis results. It never talks to the
// transcription provider, retrieval is served from the database alone.
type Service interface {
	List(ctx context.Context) ([]MeetingSummary, error)
	// Get assembles the full record for a meeting, or returns a not-found
	// error when the id is unknown.
	Get(ctx context.Context, id uint) (*MeetingRecord, error)
}

type service struct {
	meetingRepo  repositories.MeetingRepository
	analysisRepo repositories.AnalysisRepository
	jobRepo      repositories.JobRepository
	cache        cache.Store
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewService creates the retrieval service
func NewService(
	meetingRepo repositories.MeetingRepository,
	analysisRepo repositories.AnalysisRepository,
	jobRepo repositories.JobRepository,
	cacheStore cache.Store,
	cacheTTL time.Duration,
	logger *zap.Logger,
) Service {
	return &service{
		meetingRepo:  meetingRepo,
		analysisRepo: analysisRepo,
		jobRepo:      jobRepo,
		cache:        cacheStore,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func (s *service) List(ctx context.Context) ([]MeetingSummary, error) {
	meetings, err := s.meetingRepo.List(ctx)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list meetings", err)
	}

	summaries := make([]MeetingSummary, 0, len(meetings))
	for _, m := range meetings {
		summaries = append(summaries, MeetingSummary{Meeting: m, Status: s.meetingStatus(ctx, m)})
	}
	return summaries, nil
}

// meetingStatus resolves the status shown for a meeting. The job row is
// authoritative, it is the only place a failure is recorded; meetings
// without one fall back to the duration-derived state.
func (s *service) meetingStatus(ctx context.Context, m entities.Meeting) entities.JobStatus {
	job, err := s.jobRepo.GetByMeetingID(ctx, m.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Job lookup failed", zap.Uint("meeting_id", m.ID), zap.Error(err))
		}
	} else if job != nil {
		return job.Status
	}

	if m.IsProcessed() {
		return entities.JobStatusCompleted
	}
	return entities.JobStatusProcessing
}

func (s *service) Get(ctx context.Context, id uint) (*MeetingRecord, error) {
	if record, ok := s.cachedRecord(ctx, id); ok {
		return record, nil
	}

	meeting, err := s.meetingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get meeting", err)
	}
	if meeting == nil {
		return nil, apperrors.ErrNotFound("meeting")
	}

	record := &MeetingRecord{
		Meeting: *meeting,
		Status:  entities.JobStatusProcessing,
	}

	job, err := s.jobRepo.GetByMeetingID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get processing job", err)
	}
	if job != nil {
		record.Status = job.Status
		record.LastError = job.LastError
	} else if meeting.IsProcessed() {
		record.Status = entities.JobStatusCompleted
	}

	if record.Speakers, err = s.analysisRepo.ListSpeakers(ctx, id); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list speakers", err)
	}
	if record.Segments, err = s.analysisRepo.ListSegments(ctx, id); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list segments", err)
	}
	if record.Topics, err = s.analysisRepo.ListTopics(ctx, id); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list topics", err)
	}
	if record.ActionItems, err = s.analysisRepo.ListActionItems(ctx, id); err != nil {
		return nil, apperrors.ErrDBQueryFailed("list action items", err)
	}

	// Relevance is display-only and depends on the topic set as a whole,
	// so it is computed on read rather than stored.
	entities.ComputeRelevance(record.Topics)

	// Only settled records are cached, a processing meeting changes under us.
	if record.Status == entities.JobStatusCompleted {
		s.cacheRecord(ctx, id, record)
	}

	return record, nil
}

func (s *service) cachedRecord(ctx context.Context, id uint) (*MeetingRecord, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, found, err := s.cache.Get(ctx, meetingCacheKey(id))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Cache read failed", zap.Uint("meeting_id", id), zap.Error(err))
		}
		return nil, false
	}
	if !found {
		return nil, false
	}

	var record MeetingRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, false
	}
	return &record, true
}

func (s *service) cacheRecord(ctx context.Context, id uint, record *MeetingRecord) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, meetingCacheKey(id), string(raw), s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Cache write failed", zap.Uint("meeting_id", id), zap.Error(err))
	}
}

func meetingCacheKey(meetingID uint) string {
	return fmt.Sprintf("meeting:%d", meetingID)
}
