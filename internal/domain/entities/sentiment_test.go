package entities

import "testing"

func TestSentimentScore_KnownCategories(t *testing.T) {
	cases := []struct {
		category string
		want     float64
	}{
		{SentimentPositive, 1},
		{SentimentNeutral, 0},
		{SentimentNegative, -1},
	}

	for _, tc := range cases {
		got, err := SentimentScore(tc.category)
		if err != nil {
			t.Fatalf("SentimentScore(%q) returned error: %v", tc.category, err)
		}
		if got != tc.want {
			t.Fatalf("SentimentScore(%q) = %v, want %v", tc.category, got, tc.want)
		}
	}
}

func TestSentimentScore_UnknownCategoryFails(t *testing.T) {
	for _, category := range []string{"", "positive", "MIXED", "Neutral", "POSITIVE "} {
		if _, err := SentimentScore(category); err == nil {
			t.Fatalf("SentimentScore(%q) did not fail", category)
		}
	}
}
