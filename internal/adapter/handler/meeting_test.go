package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	apperrors "github.com/johnquangdev/meeting-recapper/errors"
	"github.com/johnquangdev/meeting-recapper/internal/domain/entities"
	"github.com/johnquangdev/meeting-recapper/internal/usecase/ingest"
	"github.com/johnquangdev/meeting-recapper/internal/usecase/meetings"
	pkgvalidator "github.com/johnquangdev/meeting-recapper/pkg/validator"
)

type stubIngestService struct {
	lastInput *ingest.UploadInput
	result    *ingest.UploadResult
	err       error
}

func (s *stubIngestService) Upload(ctx context.Context, in ingest.UploadInput) (*ingest.UploadResult, error) {
	s.lastInput = &in
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubMeetingService struct {
	record    *meetings.MeetingRecord
	summaries []meetings.MeetingSummary
}

func (s *stubMeetingService) List(ctx context.Context) ([]meetings.MeetingSummary, error) {
	return s.summaries, nil
}

func (s *stubMeetingService) Get(ctx context.Context, id uint) (*meetings.MeetingRecord, error) {
	if s.record == nil || s.record.Meeting.ID != id {
		return nil, apperrors.ErrNotFound("meeting")
	}
	return s.record, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	return e
}

func multipartUpload(t *testing.T, title string, withFile bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if title != "" {
		if err := writer.WriteField("title", title); err != nil {
			t.Fatalf("write title: %v", err)
		}
	}
	if withFile {
		part, err := writer.CreateFormFile("meeting", "standup.mp3")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("fake audio bytes")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/upload", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUploadHandler_Success(t *testing.T) {
	e := newTestEcho()
	ingestStub := &stubIngestService{result: &ingest.UploadResult{
		ID:     1,
		Title:  "Standup",
		Status: "processing",
	}}
	h := NewMeetingHandler(ingestStub, &stubMeetingService{}, nil)

	req := multipartUpload(t, "Standup", true)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if ingestStub.lastInput == nil {
		t.Fatal("service was not called")
	}
	if ingestStub.lastInput.Title != "Standup" || ingestStub.lastInput.FileName != "standup.mp3" {
		t.Fatalf("unexpected input: %+v", ingestStub.lastInput)
	}

	var resp struct {
		Data ingest.UploadResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Status != "processing" {
		t.Fatalf("response status = %q, want processing", resp.Data.Status)
	}
}

func TestUploadHandler_MissingTitle(t *testing.T) {
	e := newTestEcho()
	ingestStub := &stubIngestService{}
	h := NewMeetingHandler(ingestStub, &stubMeetingService{}, nil)

	req := multipartUpload(t, "", true)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "title") {
		t.Fatalf("error body does not name the missing field: %s", rec.Body.String())
	}
	if ingestStub.lastInput != nil {
		t.Fatal("service must not be called for an invalid request")
	}
}

func TestUploadHandler_MissingFile(t *testing.T) {
	e := newTestEcho()
	h := NewMeetingHandler(&stubIngestService{}, &stubMeetingService{}, nil)

	req := multipartUpload(t, "Standup", false)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "meeting") {
		t.Fatalf("error body does not name the missing field: %s", rec.Body.String())
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	e := newTestEcho()
	h := NewMeetingHandler(&stubIngestService{}, &stubMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetHandler_InvalidID(t *testing.T) {
	e := newTestEcho()
	h := NewMeetingHandler(&stubIngestService{}, &stubMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetHandler_ReturnsRecord(t *testing.T) {
	e := newTestEcho()
	record := &meetings.MeetingRecord{
		Meeting: entities.Meeting{ID: 5, Title: "Retro"},
		Status:  entities.JobStatusCompleted,
	}
	h := NewMeetingHandler(&stubIngestService{}, &stubMeetingService{record: record}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Retro") {
		t.Fatalf("response missing meeting data: %s", rec.Body.String())
	}
}

func TestListHandler(t *testing.T) {
	e := newTestEcho()
	svc := &stubMeetingService{summaries: []meetings.MeetingSummary{
		{Meeting: entities.Meeting{ID: 2, Title: "Newest"}, Status: entities.JobStatusProcessing},
		{Meeting: entities.Meeting{ID: 1, Title: "Oldest"}, Status: entities.JobStatusCompleted},
	}}
	h := NewMeetingHandler(&stubIngestService{}, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data []meetings.MeetingSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 2 || resp.Data[0].Title != "Newest" {
		t.Fatalf("unexpected list payload: %+v", resp.Data)
	}
}
