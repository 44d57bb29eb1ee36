package timeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/johnquangdev/meeting-recapper/pkg/ai"
)

func TestBuild(t *testing.T) {
	entries, err := Build([]ai.SentimentSegment{
		{StartMs: 0, EndMs: 3000, Text: "Kickoff", Sentiment: "NEUTRAL"},
		{StartMs: 3500, EndMs: 7000, Text: "Shipping early!", Sentiment: "POSITIVE"},
		{StartMs: 61999, EndMs: 70000, Text: "We slipped again", Sentiment: "NEGATIVE"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	// Start offsets are floored to whole seconds
	if entries[0].Time != 0 || entries[1].Time != 3 || entries[2].Time != 61 {
		t.Fatalf("times = %d, %d, %d, want 0, 3, 61", entries[0].Time, entries[1].Time, entries[2].Time)
	}

	wantScores := []int{0, 1, -1}
	for i, want := range wantScores {
		if entries[i].Score != want {
			t.Fatalf("entry %d score = %d, want %d", i, entries[i].Score, want)
		}
	}
	if entries[1].Sentiment != "POSITIVE" {
		t.Fatalf("sentiment label = %q, want POSITIVE", entries[1].Sentiment)
	}
}

func TestBuild_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 51)
	entries, err := Build([]ai.SentimentSegment{
		{Text: long, Sentiment: "NEUTRAL"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := entries[0].Text
	if len(got) != 53 {
		t.Fatalf("truncated length = %d, want 53", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated text %q missing ellipsis", got)
	}
	if got[:50] != long[:50] {
		t.Fatal("truncated text does not preserve the first 50 characters")
	}
}

func TestBuild_MultiByteText(t *testing.T) {
	// 20 characters but well over 50 bytes of UTF-8
	short := strings.Repeat("ế", 20)
	long := strings.Repeat("ế", 60)

	entries, err := Build([]ai.SentimentSegment{
		{Text: short, Sentiment: "NEUTRAL"},
		{Text: long, Sentiment: "NEUTRAL"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entries[0].Text != short {
		t.Fatalf("text under the character limit was modified: %q", entries[0].Text)
	}

	got := entries[1].Text
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 53 {
		t.Fatalf("truncated length = %d runes, want 53", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") || !strings.HasPrefix(got, "ế") {
		t.Fatalf("unexpected truncated text: %q", got)
	}
}

func TestBuild_KeepsShortTextIntact(t *testing.T) {
	exact := strings.Repeat("b", 50)
	entries, err := Build([]ai.SentimentSegment{
		{Text: exact, Sentiment: "NEUTRAL"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Text != exact {
		t.Fatalf("text of exactly 50 chars was modified: %q", entries[0].Text)
	}
}

func TestBuild_UnknownCategoryFails(t *testing.T) {
	if _, err := Build([]ai.SentimentSegment{{Text: "x", Sentiment: "MIXED"}}); err == nil {
		t.Fatal("expected error for unknown sentiment category")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	entries, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries for empty input", len(entries))
	}
}
