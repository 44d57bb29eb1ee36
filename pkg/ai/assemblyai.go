package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-recapper/pkg/config"
)

// Options selects which analyses AssemblyAI should run on the audio.
type Options struct {
	SentimentAnalysis bool
	SpeakerLabels     bool
	AutoHighlights    bool
	EntityDetection   bool
	Summarization     bool
}

// AllAnalyses enables every analysis the ingestion pipeline consumes.
func AllAnalyses() Options {
	return Options{
		SentimentAnalysis: true,
		SpeakerLabels:     true,
		AutoHighlights:    true,
		EntityDetection:   true,
		Summarization:     true,
	}
}

// Utterance is one diarized span of speech.
type Utterance struct {
	Speaker string `json:"speaker"`
	StartMs int64  `json:"start"`
	EndMs   int64  `json:"end"`
	Text    string `json:"text"`
}

// SentimentSegment is one sentiment-scored span of transcript text.
// Sentiment is the categorical label as returned by the API
// (POSITIVE, NEUTRAL or NEGATIVE).
type SentimentSegment struct {
	StartMs   int64  `json:"start"`
	EndMs     int64  `json:"end"`
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

// TimeRange is a millisecond span within the audio.
type TimeRange struct {
	StartMs int64 `json:"start"`
	EndMs   int64 `json:"end"`
}

// Highlight is an auto-detected salient phrase with the spans it occurs in.
type Highlight struct {
	Text       string      `json:"text"`
	Timestamps []TimeRange `json:"timestamps"`
}

// TranscriptResult is the assembled result of a completed transcription job.
type TranscriptResult struct {
	ID                string
	DurationSec       int
	Text              string
	Utterances        []Utterance
	SentimentSegments []SentimentSegment
	Highlights        []Highlight
}

// Client wraps the official AssemblyAI SDK for transcription and LeMUR tasks.
type Client struct {
	sdk        *aai.Client
	finalModel string
	logger     *zap.Logger
}

// NewClient creates an AssemblyAI client from config.
func NewClient(cfg *config.AssemblyAIConfig, logger *zap.Logger) *Client {
	return &Client{
		sdk:        aai.NewClient(cfg.APIKey),
		finalModel: cfg.LemurModel,
		logger:     logger,
	}
}

// Transcribe submits an audio source and waits for the remote job to reach a
// terminal state. The source may be an http(s) URL or a local file path; local
// files are uploaded through the SDK. The call can take minutes for long audio.
func (c *Client) Transcribe(ctx context.Context, source string, opts Options) (*TranscriptResult, error) {
	if source == "" {
		return nil, fmt.Errorf("audio source is required")
	}

	params := &aai.TranscriptOptionalParams{
		SentimentAnalysis: aai.Bool(opts.SentimentAnalysis),
		SpeakerLabels:     aai.Bool(opts.SpeakerLabels),
		AutoHighlights:    aai.Bool(opts.AutoHighlights),
		EntityDetection:   aai.Bool(opts.EntityDetection),
		Summarization:     aai.Bool(opts.Summarization),
	}

	var (
		transcript aai.Transcript
		err        error
	)

	if isURL(source) {
		if c.logger != nil {
			c.logger.Info("🎙️ Submitting audio URL for transcription",
				zap.String("source", source),
			)
		}
		transcript, err = c.sdk.Transcripts.TranscribeFromURL(ctx, source, params)
	} else {
		f, openErr := os.Open(source)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open audio file: %w", openErr)
		}
		defer f.Close()

		if c.logger != nil {
			c.logger.Info("🎙️ Uploading local audio file for transcription",
				zap.String("source", source),
			)
		}
		transcript, err = c.sdk.Transcripts.TranscribeFromReader(ctx, f, params)
	}
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai reported error: %s", msg)
	}

	result := fromSDKTranscript(transcript)

	if c.logger != nil {
		c.logger.Info("✅ Transcription complete",
			zap.String("transcript_id", result.ID),
			zap.Int("duration_sec", result.DurationSec),
			zap.Int("utterances", len(result.Utterances)),
			zap.Int("sentiment_segments", len(result.SentimentSegments)),
			zap.Int("highlights", len(result.Highlights)),
		)
	}

	return result, nil
}

// SummarizeTask sends a natural-language instruction to LeMUR for a previously
// completed transcript and returns the raw response text. The response is
// expected, but not guaranteed, to be a JSON array.
func (c *Client) SummarizeTask(ctx context.Context, transcriptID, prompt string) (string, error) {
	if transcriptID == "" {
		return "", fmt.Errorf("transcript ID is required")
	}

	var params aai.LeMURTaskParams
	params.Prompt = aai.String(prompt)
	params.TranscriptIDs = []string{transcriptID}
	params.FinalModel = aai.LeMURModel(c.finalModel)

	resp, err := c.sdk.LeMUR.Task(ctx, params)
	if err != nil {
		return "", fmt.Errorf("lemur task failed: %w", err)
	}
	if resp.Response == nil {
		return "", fmt.Errorf("empty response from lemur")
	}
	return *resp.Response, nil
}

// fromSDKTranscript converts the SDK transcript into the assembled result,
// guarding every optional pointer.
func fromSDKTranscript(t aai.Transcript) *TranscriptResult {
	result := &TranscriptResult{}

	if t.ID != nil {
		result.ID = *t.ID
	}
	if t.Text != nil {
		result.Text = *t.Text
	}
	if t.AudioDuration != nil {
		result.DurationSec = int(*t.AudioDuration)
	}

	for _, utt := range t.Utterances {
		u := Utterance{}
		if utt.Speaker != nil {
			u.Speaker = *utt.Speaker
		}
		if utt.Start != nil {
			u.StartMs = int64(*utt.Start)
		}
		if utt.End != nil {
			u.EndMs = int64(*utt.End)
		}
		if utt.Text != nil {
			u.Text = *utt.Text
		}
		result.Utterances = append(result.Utterances, u)
	}

	for _, sr := range t.SentimentAnalysisResults {
		seg := SentimentSegment{Sentiment: string(sr.Sentiment)}
		if sr.Start != nil {
			seg.StartMs = int64(*sr.Start)
		}
		if sr.End != nil {
			seg.EndMs = int64(*sr.End)
		}
		if sr.Text != nil {
			seg.Text = *sr.Text
		}
		result.SentimentSegments = append(result.SentimentSegments, seg)
	}

	for _, hr := range t.AutoHighlightsResult.Results {
		h := Highlight{}
		if hr.Text != nil {
			h.Text = *hr.Text
		}
		for _, ts := range hr.Timestamps {
			tr := TimeRange{}
			if ts.Start != nil {
				tr.StartMs = int64(*ts.Start)
			}
			if ts.End != nil {
				tr.EndMs = int64(*ts.End)
			}
			h.Timestamps = append(h.Timestamps, tr)
		}
		result.Highlights = append(result.Highlights, h)
	}

	return result
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
