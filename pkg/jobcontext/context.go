package jobcontext

import (
	"context"
	"fmt"
	"time"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyMeetingID    KeyContext = "meeting_id"
	keyJobStartTime KeyContext = "job_start_time"
)

// Transcription alone can take several minutes for long recordings, so the
// budget for a full pipeline run is generous.
const jobTimeout = 30 * time.Minute

// JobMetadata holds metadata for a background pipeline run
type JobMetadata struct {
	JobID     uint
	MeetingID uint
	StartTime time.Time
}

// JobBegin initializes a job context with metadata and timeout.
// The returned context is detached from any request lifetime.
func JobBegin(jobID, meetingID uint) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)

	ctx = context.WithValue(ctx, keyJobID, jobID)
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// JobRun executes the job function with panic recovery so a misbehaving
// pipeline step cannot take the whole server down.
func JobRun(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	return jobFunc(ctx)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uint, bool) {
	jobID, ok := ctx.Value(keyJobID).(uint)
	return jobID, ok
}

// GetMeetingID extracts meeting ID from context
func GetMeetingID(ctx context.Context) (uint, bool) {
	meetingID, ok := ctx.Value(keyMeetingID).(uint)
	return meetingID, ok
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	meetingID, _ := GetMeetingID(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:     jobID,
		MeetingID: meetingID,
		StartTime: startTime,
	}
}
