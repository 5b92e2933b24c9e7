package service

import (
	"testing"

	"regimeforge-go/internal/model"
)

func TestSentiment(t *testing.T) {
	tests := []struct {
		change float64
		want   string
	}{
		{4.2, model.SentimentBullish},
		{1.5, model.SentimentSlightlyBullish},
		{0.5, model.SentimentNeutral},
		{0, model.SentimentNeutral},
		{-0.5, model.SentimentNeutral},
		{-1.5, model.SentimentSlightlyBearish},
		{-4.2, model.SentimentBearish},
	}

	for _, tt := range tests {
		if got := Sentiment(tt.change); got != tt.want {
			t.Fatalf("Sentiment(%v) = %q, want %q", tt.change, got, tt.want)
		}
	}
}

func TestNeutralMarketSummary(t *testing.T) {
	summary := model.NeutralMarketSummary()
	if summary.Sentiment != model.SentimentUnknown {
		t.Fatalf("Sentiment = %q, want UNKNOWN", summary.Sentiment)
	}
	if summary.BTCDominance != 0 || summary.PriceChange7d != 0 || summary.IsTrending {
		t.Fatalf("neutral summary not zero-valued: %+v", summary)
	}
}
