package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-recapper/errors"
	meetingdto "github.com/johnquangdev/meeting-recapper/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-recapper/internal/usecase/ingest"
	"github.com/johnquangdev/meeting-recapper/internal/usecase/meetings"
)

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	ingestService  ingest.Service
	meetingService meetings.Service
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(ingestService ingest.Service, meetingService meetings.Service, logger *zap.Logger) *Meeting {
	return &Meeting{
		ingestService:  ingestService,
		meetingService: meetingService,
		logger:         logger,
	}
}

// Upload handles POST /v1/meetings/upload. The body is multipart form data
// with a "title" field and the recording in the "meeting" field. The response
// acknowledges the upload, analysis continues in the background.
func (h *Meeting) Upload(c echo.Context) error {
	var req meetingdto.UploadMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrMissingUploadField("title"))
	}

	fileHeader, err := c.FormFile("meeting")
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrMissingUploadField("meeting"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrUploadFailed(err))
	}
	defer src.Close()

	result, err := h.ingestService.Upload(c.Request().Context(), ingest.UploadInput{
		Title:       req.Title,
		FileName:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		File:        src,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, result)
}

// List handles GET /v1/meetings
func (h *Meeting) List(c echo.Context) error {
	summaries, err := h.meetingService.List(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, summaries)
}

// Get handles GET /v1/meetings/:id, returning the meeting with all of its
// analysis results.
func (h *Meeting) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("meeting id must be a positive integer"))
	}

	record, err := h.meetingService.Get(c.Request().Context(), uint(id))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, record)
}
