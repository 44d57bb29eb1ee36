package ingest

import (
	"context"
	stdErrors "errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/johnquangdev/meeting-recapper/errors"
	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
	"github.com/johnquangdev/meeting-recapper/pkg/ai"
)

type mockMeetingRepo struct {
	mu      sync.Mutex
	created []*entities.Meeting
	updates int
}

func (m *mockMeetingRepo) Create(ctx context.Context, meeting *entities.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting.ID = uint(len(m.created) + 1)
	m.created = append(m.created, meeting)
	return nil
}

func (m *mockMeetingRepo) UpdateTranscription(ctx context.Context, id uint, transcriptID string, durationSec int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	return nil
}

func (m *mockMeetingRepo) List(ctx context.Context) ([]entities.Meeting, error) {
	return nil, nil
}

func (m *mockMeetingRepo) GetByID(ctx context.Context, id uint) (*entities.Meeting, error) {
	return nil, nil
}

type mockAnalysisRepo struct {
	mu          sync.Mutex
	speakers    []entities.Speaker
	segments    []entities.Segment
	topics      []entities.Topic
	actionItems []entities.ActionItem
}

func (m *mockAnalysisRepo) CreateSpeakers(ctx context.Context, speakers []entities.Speaker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speakers = append(m.speakers, speakers...)
	return nil
}

func (m *mockAnalysisRepo) CreateSegments(ctx context.Context, segments []entities.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = append(m.segments, segments...)
	return nil
}

func (m *mockAnalysisRepo) CreateTopics(ctx context.Context, topics []entities.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topics...)
	return nil
}

func (m *mockAnalysisRepo) CreateActionItems(ctx context.Context, items []entities.ActionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionItems = append(m.actionItems, items...)
	return nil
}

func (m *mockAnalysisRepo) ListSpeakers(ctx context.Context, meetingID uint) ([]entities.Speaker, error) {
	return nil, nil
}

func (m *mockAnalysisRepo) ListSegments(ctx context.Context, meetingID uint) ([]entities.Segment, error) {
	return nil, nil
}

func (m *mockAnalysisRepo) ListTopics(ctx context.Context, meetingID uint) ([]entities.Topic, error) {
	return nil, nil
}

func (m *mockAnalysisRepo) ListActionItems(ctx context.Context, meetingID uint) ([]entities.ActionItem, error) {
	return nil, nil
}

type mockJobRepo struct {
	mu      sync.Mutex
	created []*entities.ProcessingJob
	updated []*entities.ProcessingJob
}

func (m *mockJobRepo) Create(ctx context.Context, job *entities.ProcessingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.ID = uint(len(m.created) + 1)
	m.created = append(m.created, job)
	return nil
}

func (m *mockJobRepo) Update(ctx context.Context, job *entities.ProcessingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, job)
	return nil
}

func (m *mockJobRepo) GetByMeetingID(ctx context.Context, meetingID uint) (*entities.ProcessingJob, error) {
	return nil, nil
}

type mockStorage struct {
	saved []string
}

func (m *mockStorage) Save(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	m.saved = append(m.saved, objectName)
	return "uploads/" + objectName, nil
}

type mockTranscriber struct {
	result       *ai.TranscriptResult
	err          error
	summary      string
	summaryErr   error
	summaryCalls int
}

func (m *mockTranscriber) Transcribe(ctx context.Context, source string, opts ai.Options) (*ai.TranscriptResult, error) {
	if m.err != nil {
		// Permanent so tests do not sit in the retry loop
		return nil, backoff.Permanent(m.err)
	}
	return m.result, nil
}

func (m *mockTranscriber) SummarizeTask(ctx context.Context, transcriptID, prompt string) (string, error) {
	m.summaryCalls++
	return m.summary, m.summaryErr
}

func newTestService(mr *mockMeetingRepo, ar *mockAnalysisRepo, jr *mockJobRepo, tr *mockTranscriber) *service {
	return &service{
		meetingRepo:  mr,
		analysisRepo: ar,
		jobRepo:      jr,
		store:        &mockStorage{},
		transcriber:  tr,
		parser:       NewParser(),
	}
}

func TestUpload_MissingTitle(t *testing.T) {
	mr := &mockMeetingRepo{}
	svc := newTestService(mr, &mockAnalysisRepo{}, &mockJobRepo{}, &mockTranscriber{})

	_, err := svc.Upload(context.Background(), UploadInput{
		FileName: "standup.mp3",
		File:     strings.NewReader("audio"),
	})
	if err == nil {
		t.Fatal("expected error for missing title")
	}

	var appErr apperrors.AppError
	if !stdErrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrorCode_MISSING_UPLOAD_FIELD {
		t.Fatalf("code = %v, want MISSING_UPLOAD_FIELD", appErr.Code)
	}
	if len(mr.created) != 0 {
		t.Fatal("no meeting row should be created for a rejected upload")
	}
}

func TestUpload_MissingFile(t *testing.T) {
	svc := newTestService(&mockMeetingRepo{}, &mockAnalysisRepo{}, &mockJobRepo{}, &mockTranscriber{})

	_, err := svc.Upload(context.Background(), UploadInput{Title: "Standup"})
	var appErr apperrors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_MISSING_UPLOAD_FIELD {
		t.Fatalf("expected MISSING_UPLOAD_FIELD, got %v", err)
	}
}

func TestUpload_AcceptsAndRegistersJob(t *testing.T) {
	mr := &mockMeetingRepo{}
	jr := &mockJobRepo{}
	// Transcriber fails fast so the background goroutine settles quickly
	tr := &mockTranscriber{err: stdErrors.New("provider down")}
	svc := newTestService(mr, &mockAnalysisRepo{}, jr, tr)

	result, err := svc.Upload(context.Background(), UploadInput{
		Title:    "Standup",
		FileName: "standup.mp3",
		File:     strings.NewReader("audio"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != string(entities.JobStatusProcessing) {
		t.Fatalf("status = %q, want processing", result.Status)
	}
	if result.ID == 0 {
		t.Fatal("expected a generated meeting id")
	}
	if len(mr.created) != 1 || mr.created[0].Title != "Standup" {
		t.Fatalf("meeting not persisted: %+v", mr.created)
	}

	jr.mu.Lock()
	defer jr.mu.Unlock()
	if len(jr.created) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jr.created))
	}
}

func TestProcess_CategoryIsolation(t *testing.T) {
	mr := &mockMeetingRepo{}
	ar := &mockAnalysisRepo{}
	jr := &mockJobRepo{}
	tr := &mockTranscriber{
		result: &ai.TranscriptResult{
			ID:          "transcript-1",
			DurationSec: 300,
			Utterances: []ai.Utterance{
				{Speaker: "A", StartMs: 0, EndMs: 1000},
			},
			SentimentSegments: []ai.SentimentSegment{
				{StartMs: 0, EndMs: 1000, Text: "fine", Sentiment: "NEUTRAL"},
				{StartMs: 1000, EndMs: 2000, Text: "odd", Sentiment: "MIXED"},
			},
			Highlights: []ai.Highlight{
				{Text: "budget", Timestamps: []ai.TimeRange{{StartMs: 0, EndMs: 500}}},
			},
		},
		summary: `[{"text": "Send notes", "assignee": null, "deadline": null, "timeIndex": 10}]`,
	}
	svc := newTestService(mr, ar, jr, tr)

	meeting := &entities.Meeting{ID: 1, Title: "Standup", FilePath: "uploads/a.mp3"}
	job := entities.NewProcessingJob(meeting.ID)
	job.ID = 1

	svc.process(job, meeting)

	// The bad sentiment label kills the segment category only
	if len(ar.segments) != 0 {
		t.Fatalf("segments persisted despite bad label: %+v", ar.segments)
	}
	if len(ar.speakers) != 1 {
		t.Fatalf("got %d speakers, want 1", len(ar.speakers))
	}
	if len(ar.topics) != 1 {
		t.Fatalf("got %d topics, want 1", len(ar.topics))
	}
	if len(ar.actionItems) != 1 || ar.actionItems[0].Assignee != entities.DefaultAssignee {
		t.Fatalf("unexpected action items: %+v", ar.actionItems)
	}

	if job.Status != entities.JobStatusCompleted {
		t.Fatalf("job status = %q, want completed", job.Status)
	}
	meta := string(job.Metadata)
	if !strings.Contains(meta, "AI_EXTRACTION_FAILED") || !strings.Contains(meta, "segments") {
		t.Fatalf("segment failure not recorded in job metadata: %s", meta)
	}
	if mr.updates != 1 {
		t.Fatalf("transcription update count = %d, want 1", mr.updates)
	}
}

func TestProcess_TranscriptionFailureFailsJob(t *testing.T) {
	jr := &mockJobRepo{}
	tr := &mockTranscriber{err: stdErrors.New("upstream 500")}
	svc := newTestService(&mockMeetingRepo{}, &mockAnalysisRepo{}, jr, tr)

	meeting := &entities.Meeting{ID: 2, FilePath: "uploads/b.mp3"}
	job := entities.NewProcessingJob(meeting.ID)
	job.ID = 2

	svc.process(job, meeting)

	if job.Status != entities.JobStatusFailed {
		t.Fatalf("job status = %q, want failed", job.Status)
	}
	if job.LastError == nil || !strings.Contains(*job.LastError, "upstream 500") {
		t.Fatalf("last error not recorded: %v", job.LastError)
	}
	if len(jr.updated) != 1 {
		t.Fatalf("job update count = %d, want 1", len(jr.updated))
	}
}

func TestProcess_NoSpeakersOrTopicsSkipsInserts(t *testing.T) {
	ar := &mockAnalysisRepo{}
	tr := &mockTranscriber{
		result:  &ai.TranscriptResult{ID: "transcript-2", DurationSec: 60},
		summary: "[]",
	}
	svc := newTestService(&mockMeetingRepo{}, ar, &mockJobRepo{}, tr)

	meeting := &entities.Meeting{ID: 3, FilePath: "uploads/c.mp3"}
	job := entities.NewProcessingJob(meeting.ID)
	job.ID = 3

	svc.process(job, meeting)

	if len(ar.speakers) != 0 || len(ar.topics) != 0 || len(ar.actionItems) != 0 {
		t.Fatalf("unexpected rows: %+v %+v %+v", ar.speakers, ar.topics, ar.actionItems)
	}
	if job.Status != entities.JobStatusCompleted {
		t.Fatalf("job status = %q, want completed", job.Status)
	}
}
