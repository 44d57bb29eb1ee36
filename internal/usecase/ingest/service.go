package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/johnquangdev/meeting-recapper/errors"
	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
	"github.com/johnquangdev/meeting-recapper/internal/domain/repositories"
	"github.com/johnquangdev/meeting-recapper/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-recapper/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-recapper/pkg/ai"
	"github.com/johnquangdev/meeting-recapper/pkg/jobcontext"
)

// Transcriber is the slice of the AI client the ingestion pipeline needs.
type Transcriber interface {
	Transcribe(ctx context.Context, source string, opts ai.Options) (*ai.TranscriptResult, error)
	SummarizeTask(ctx context.Context, transcriptID, prompt string) (string, error)
}

// Service accepts meeting uploads and runs the asynchronous analysis
// pipeline for each of them.
type Service interface {
	// Upload stores the recording, registers the meeting and its processing
	// job, starts the background pipeline and returns immediately.
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
}

// UploadInput carries one multipart upload into the usecase layer.
type UploadInput struct {
	Title       string
	FileName    string
	Size        int64
	ContentType string
	File        io.Reader
}

// UploadResult is the immediate acknowledgment of an accepted upload.
type UploadResult struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type service struct {
	meetingRepo  repositories.MeetingRepository
	analysisRepo repositories.AnalysisRepository
	jobRepo      repositories.JobRepository
	store        storage.Storage
	transcriber  Transcriber
	cache        cache.Store
	parser       *Parser
	logger       *zap.Logger
}

// NewService creates the ingestion service
func NewService(
	meetingRepo repositories.MeetingRepository,
	analysisRepo repositories.AnalysisRepository,
	jobRepo repositories.JobRepository,
	store storage.Storage,
	transcriber Transcriber,
	cacheStore cache.Store,
	logger *zap.Logger,
) Service {
	return &service{
		meetingRepo:  meetingRepo,
		analysisRepo: analysisRepo,
		jobRepo:      jobRepo,
		store:        store,
		transcriber:  transcriber,
		cache:        cacheStore,
		parser:       NewParser(),
		logger:       logger,
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Title == "" {
		return nil, apperrors.ErrMissingUploadField("title")
	}
	if in.File == nil || in.FileName == "" {
		return nil, apperrors.ErrMissingUploadField("meeting")
	}

	// Time prefix plus a random component so concurrent uploads of the same
	// file name never collide.
	objectName := fmt.Sprintf("%d_%s_%s", time.Now().UnixMilli(), uuid.New().String(), filepath.Base(in.FileName))

	fileRef, err := s.store.Save(ctx, objectName, in.File, in.Size, in.ContentType)
	if err != nil {
		return nil, apperrors.ErrUploadFailed(err)
	}

	meeting := entities.NewMeeting(in.Title, fileRef)
	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create meeting", err)
	}

	job := entities.NewProcessingJob(meeting.ID)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create processing job", err)
	}

	if s.logger != nil {
		s.logger.Info("📥 Meeting upload accepted",
			zap.Uint("meeting_id", meeting.ID),
			zap.String("title", meeting.Title),
			zap.String("file", fileRef),
		)
	}

	// Detached from the request context: the upload response must not wait
	// for transcription.
	go s.process(job, meeting)

	return &UploadResult{
		ID:      meeting.ID,
		Title:   meeting.Title,
		Status:  string(job.Status),
		Message: "File uploaded successfully, processing started",
	}, nil
}

// process runs the full analysis pipeline for one meeting. Transcription
// failure fails the job; each extraction category after that is attempted
// independently so one bad category never discards the others.
func (s *service) process(job *entities.ProcessingJob, meeting *entities.Meeting) {
	ctx, cancel := jobcontext.JobBegin(job.ID, meeting.ID)
	defer cancel()
	meta := jobcontext.GetJobMetadata(ctx)

	err := jobcontext.JobRun(ctx, func(ctx context.Context) error {
		result, err := s.transcribe(ctx, meeting.FilePath)
		if err != nil {
			return apperrors.ErrTranscriptionFailed(err)
		}

		if err := s.meetingRepo.UpdateTranscription(ctx, meeting.ID, result.ID, result.DurationSec); err != nil {
			return apperrors.ErrDBQueryFailed("update transcription", err)
		}

		categoryErrs := map[string]string{}
		counts := map[string]int{}

		if n, err := s.persistSpeakers(ctx, meeting.ID, result); err != nil {
			categoryErrs["speakers"] = apperrors.ErrExtractionFailed("speakers", err).Error()
		} else {
			counts["speakers"] = n
		}
		if n, err := s.persistSegments(ctx, meeting.ID, result); err != nil {
			categoryErrs["segments"] = apperrors.ErrExtractionFailed("segments", err).Error()
		} else {
			counts["segments"] = n
		}
		if n, err := s.persistTopics(ctx, meeting.ID, result); err != nil {
			categoryErrs["topics"] = apperrors.ErrExtractionFailed("topics", err).Error()
		} else {
			counts["topics"] = n
		}
		if n, err := s.persistActionItems(ctx, meeting.ID, result.ID); err != nil {
			categoryErrs["action_items"] = apperrors.ErrExtractionFailed("action_items", err).Error()
		} else {
			counts["action_items"] = n
		}

		for category, msg := range categoryErrs {
			if s.logger != nil {
				s.logger.Error("❌ Extraction category failed",
					zap.Uint("meeting_id", meeting.ID),
					zap.String("category", category),
					zap.String("error", msg),
				)
			}
		}

		job.Metadata = jobMetadata(result.DurationSec, counts, categoryErrs)
		job.MarkCompleted()
		if err := s.jobRepo.Update(ctx, job); err != nil {
			return apperrors.ErrDBQueryFailed("complete processing job", err)
		}

		if s.logger != nil {
			s.logger.Info("✅ Meeting processing completed",
				zap.Uint("job_id", meta.JobID),
				zap.Uint("meeting_id", meta.MeetingID),
				zap.Int("duration_sec", result.DurationSec),
				zap.Int("failed_categories", len(categoryErrs)),
				zap.Duration("elapsed", time.Since(meta.StartTime)),
			)
		}
		return nil
	})

	if err != nil {
		s.failJob(job, meeting.ID, err)
	}

	// Whatever happened, stale cached records for this meeting are invalid.
	if s.cache != nil {
		if cerr := s.cache.Delete(context.Background(), meetingCacheKey(meeting.ID)); cerr != nil && s.logger != nil {
			s.logger.Warn("⚠️ Cache invalidation failed",
				zap.Uint("meeting_id", meeting.ID),
				zap.Error(cerr),
			)
		}
	}
}

// transcribe submits the recording with all analyses enabled, retrying
// transient submission failures with exponential backoff.
func (s *service) transcribe(ctx context.Context, source string) (*ai.TranscriptResult, error) {
	var result *ai.TranscriptResult

	submitFn := func() error {
		var err error
		result, err = s.transcriber.Transcribe(ctx, source, ai.AllAnalyses())
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) persistSpeakers(ctx context.Context, meetingID uint, result *ai.TranscriptResult) (int, error) {
	speakers := entities.AggregateSpeakers(meetingID, result.Utterances)
	if len(speakers) == 0 {
		return 0, nil
	}
	if err := s.analysisRepo.CreateSpeakers(ctx, speakers); err != nil {
		return 0, err
	}
	return len(speakers), nil
}

func (s *service) persistSegments(ctx context.Context, meetingID uint, result *ai.TranscriptResult) (int, error) {
	segments := make([]entities.Segment, 0, len(result.SentimentSegments))
	for _, sent := range result.SentimentSegments {
		segment, err := entities.NewSegmentFromSentiment(meetingID, sent)
		if err != nil {
			// An unrecognized sentiment label poisons the whole timeline,
			// so no segment rows are written for this meeting.
			return 0, err
		}
		segments = append(segments, *segment)
	}
	if len(segments) == 0 {
		return 0, nil
	}
	if err := s.analysisRepo.CreateSegments(ctx, segments); err != nil {
		return 0, err
	}
	return len(segments), nil
}

func (s *service) persistTopics(ctx context.Context, meetingID uint, result *ai.TranscriptResult) (int, error) {
	topics := make([]entities.Topic, 0, len(result.Highlights))
	for _, h := range result.Highlights {
		topic, ok := entities.NewTopicFromHighlight(meetingID, h)
		if !ok {
			continue
		}
		topics = append(topics, *topic)
	}
	if len(topics) == 0 {
		return 0, nil
	}
	if err := s.analysisRepo.CreateTopics(ctx, topics); err != nil {
		return 0, err
	}
	return len(topics), nil
}

func (s *service) persistActionItems(ctx context.Context, meetingID uint, transcriptID string) (int, error) {
	raw, err := s.transcriber.SummarizeTask(ctx, transcriptID, actionItemsPrompt)
	if err != nil {
		return 0, err
	}

	drafts := s.parser.ParseActionItems(raw)
	items := make([]entities.ActionItem, 0, len(drafts))
	for _, draft := range drafts {
		if draft.Text == "" {
			continue
		}
		assignee := entities.DefaultAssignee
		if draft.Assignee != nil && *draft.Assignee != "" {
			assignee = *draft.Assignee
		}
		items = append(items, entities.ActionItem{
			MeetingID: meetingID,
			Text:      draft.Text,
			Assignee:  assignee,
			StartTime: draft.TimeIndex,
		})
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := s.analysisRepo.CreateActionItems(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// failJob records a pipeline failure on the job row. It uses a fresh context
// because the job context may already be cancelled or expired.
func (s *service) failJob(job *entities.ProcessingJob, meetingID uint, cause error) {
	if s.logger != nil {
		s.logger.Error("❌ Meeting processing failed",
			zap.Uint("meeting_id", meetingID),
			zap.Uint("job_id", job.ID),
			zap.Error(cause),
		)
	}

	job.MarkFailed(cause.Error())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.jobRepo.Update(ctx, job); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to record job failure",
			zap.Uint("job_id", job.ID),
			zap.Error(err),
		)
	}
}

func jobMetadata(durationSec int, counts map[string]int, categoryErrs map[string]string) datatypes.JSON {
	meta := map[string]interface{}{
		"duration_seconds": durationSec,
		"row_counts":       counts,
	}
	if len(categoryErrs) > 0 {
		meta["category_errors"] = categoryErrs
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func meetingCacheKey(meetingID uint) string {
	return fmt.Sprintf("meeting:%d", meetingID)
}
