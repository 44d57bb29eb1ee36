package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-recapper/internal/usecase/timeline"
	pkgai "github.com/johnquangdev/meeting-recapper/pkg/ai"
	"github.com/johnquangdev/meeting-recapper/pkg/config"
)

const defaultOutput = "sentiment-timeline.json"

// sentiment-timeline transcribes one recording with sentiment analysis and
// writes the per-segment timeline as JSON. It shares the transcription client
// and sentiment mapping with the API server but runs standalone.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <audio file or URL> [output file]\n", os.Args[0])
		os.Exit(1)
	}
	source := os.Args[1]

	output := defaultOutput
	if len(os.Args) > 2 {
		output = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	client := pkgai.NewClient(&cfg.Assembly, logger)

	log.Printf("🎙️  Transcribing %s ...", source)
	result, err := client.Transcribe(context.Background(), source, pkgai.Options{SentimentAnalysis: true})
	if err != nil {
		log.Fatalf("Transcription failed: %v", err)
	}

	entries, err := timeline.Build(result.SentimentSegments)
	if err != nil {
		log.Fatalf("Failed to build timeline: %v", err)
	}

	if len(entries) == 0 {
		log.Println("No sentiment data returned for this recording, nothing to write")
		return
	}

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode timeline: %v", err)
	}
	if err := os.WriteFile(output, raw, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", output, err)
	}

	log.Printf("✅ Wrote %d timeline entries to %s", len(entries), output)
	preview(entries)
}

// preview prints the first few entries so a quick run shows its result
// without opening the output file.
func preview(entries []timeline.Entry) {
	n := len(entries)
	if n > 3 {
		n = 3
	}
	for _, entry := range entries[:n] {
		fmt.Printf("  %s [%4ds] %s\n", sentimentEmoji(entry.Sentiment), entry.Time, entry.Text)
	}
	if len(entries) > n {
		fmt.Printf("  ... and %d more\n", len(entries)-n)
	}
}

func sentimentEmoji(sentiment string) string {
	switch sentiment {
	case "POSITIVE":
		return "😊"
	case "NEGATIVE":
		return "😟"
	default:
		return "😐"
	}
}
