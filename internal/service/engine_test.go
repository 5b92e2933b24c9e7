package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/model"
)

// fakeMarket serves canned ticker/depth payloads
type fakeMarket struct {
	price  float64
	high   float64
	low    float64
	change float64
}

func (f fakeMarket) GetTicker(ctx context.Context, symbol string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"last":               f.price,
			"high_24h":           f.high,
			"low_24h":            f.low,
			"base_volume":        1000.0,
			"priceChangePercent": f.change,
		},
	}
}

func (f fakeMarket) GetDepth(ctx context.Context, symbol string) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"bids": []interface{}{[]interface{}{f.price * 0.9999, 1.0}},
			"asks": []interface{}{[]interface{}{f.price * 1.0001, 1.0}},
		},
	}
}

type fakeContext struct {
	summary model.MarketSummary
	err     error
}

func (f fakeContext) GetMarketSummary(ctx context.Context, coin string) (model.MarketSummary, error) {
	return f.summary, f.err
}

func neutralContext() fakeContext {
	return fakeContext{summary: model.MarketSummary{Sentiment: model.SentimentNeutral, BTCDominance: 50}}
}

func TestAnalyzeNeutralMidRange(t *testing.T) {
	// Mid-range price, no 24h change, moderate volatility: nothing to act on
	engine := NewEngine(fakeMarket{price: 100000, high: 101500, low: 98500, change: 0}, neutralContext())

	signal := engine.Analyze(context.Background(), "BTC", "")
	if signal.Signal != model.VerdictNeutral {
		t.Fatalf("Signal = %v, want NEUTRAL", signal.Signal)
	}
	if len(signal.Reasoning) == 0 {
		t.Fatal("Reasoning must never be empty")
	}
}

func TestAnalyzeStrongSupportBypassesSmoothing(t *testing.T) {
	// Price at the bottom of the range after a hard drop: immediate LONG,
	// even on the very first analysis with no history
	engine := NewEngine(fakeMarket{price: 98100, high: 102000, low: 98000, change: -4}, neutralContext())

	signal := engine.Analyze(context.Background(), "BTC", "")
	if signal.Signal != model.VerdictLong {
		t.Fatalf("Signal = %v, want LONG", signal.Signal)
	}
	if !strings.Contains(signal.Reasoning[0], "Strong buy zone") {
		t.Fatalf("first reason = %q, want strong buy zone bypass", signal.Reasoning[0])
	}
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	markets := []fakeMarket{
		{price: 98100, high: 102000, low: 98000, change: -8},
		{price: 101900, high: 102000, low: 98000, change: 8},
		{price: 100000, high: 100100, low: 99900, change: 0},
		{price: 100000, high: 110000, low: 90000, change: 12},
	}

	for _, m := range markets {
		engine := NewEngine(m, neutralContext())
		for i := 0; i < 8; i++ {
			signal := engine.Analyze(context.Background(), "BTC", "")
			if signal.Confidence < config.MinConfidence || signal.Confidence > config.MaxConfidence {
				t.Fatalf("Confidence %v out of [%v, %v] for market %+v",
					signal.Confidence, config.MinConfidence, config.MaxConfidence, m)
			}
		}
	}
}

func TestAnalyzeHistoryCap(t *testing.T) {
	engine := NewEngine(fakeMarket{price: 100000, high: 101500, low: 98500, change: 0}, neutralContext())

	for i := 0; i < 14; i++ {
		engine.Analyze(context.Background(), "BTC", "")
	}
	if got := len(engine.History()); got != 10 {
		t.Fatalf("history length = %d, want 10", got)
	}
}

func TestAnalyzeForcedSignal(t *testing.T) {
	engine := NewEngine(fakeMarket{price: 100000, high: 101500, low: 98500, change: 0}, neutralContext())

	signal := engine.Analyze(context.Background(), "BTC", model.VerdictShort)
	if signal.Signal != model.VerdictShort {
		t.Fatalf("Signal = %v, want forced SHORT", signal.Signal)
	}
	if !strings.Contains(signal.Reasoning[0], "User requested SHORT") {
		t.Fatalf("first reason = %q, want user-request override note", signal.Reasoning[0])
	}
}

func TestAnalyzeForcedSignalAgreement(t *testing.T) {
	// Strong support produces LONG on its own; forcing LONG should read as
	// confirmation, not override
	engine := NewEngine(fakeMarket{price: 98100, high: 102000, low: 98000, change: -4}, neutralContext())

	signal := engine.Analyze(context.Background(), "BTC", model.VerdictLong)
	if signal.Signal != model.VerdictLong {
		t.Fatalf("Signal = %v, want LONG", signal.Signal)
	}
	if !strings.Contains(signal.Reasoning[0], "AI confirms LONG") {
		t.Fatalf("first reason = %q, want confirmation note", signal.Reasoning[0])
	}
}

func TestAnalyzeContextFailureDegrades(t *testing.T) {
	engine := NewEngine(
		fakeMarket{price: 100000, high: 101500, low: 98500, change: 0},
		fakeContext{err: errors.New("coingecko down")},
	)

	signal := engine.Analyze(context.Background(), "BTC", "")
	if signal == nil {
		t.Fatal("Analyze() must not fail when context provider is down")
	}
	if signal.Indicators["btc_dominance"] != 0 {
		t.Fatalf("btc_dominance = %v, want neutral 0", signal.Indicators["btc_dominance"])
	}
}

func TestAnalyzeFractionalChangeScaling(t *testing.T) {
	// A change reported as a fraction (0.04) must be treated as 4%
	engine := NewEngine(fakeMarket{price: 100000, high: 101500, low: 98500, change: 0.04}, neutralContext())

	signal := engine.Analyze(context.Background(), "BTC", "")
	if got := signal.Indicators["price_change_24h"]; got != 4 {
		t.Fatalf("price_change_24h = %v, want 4", got)
	}
}

func TestDetectRegimePriority(t *testing.T) {
	tests := []struct {
		name       string
		rsi        float64
		volatility float64
		trend      float64
		want       model.MarketRegime
	}{
		{"high volatility wins over trend", 70, 5.0, 0.9, model.RegimeHighVolatility},
		{"low volatility wins over trend", 70, 0.5, 0.9, model.RegimeLowVolatility},
		{"bull trending", 60, 2.0, 0.8, model.RegimeBullTrending},
		{"bear trending", 40, 2.0, -0.8, model.RegimeBearTrending},
		{"trend without rsi agreement is range", 50, 2.0, 0.8, model.RegimeRangeBound},
		{"range bound", 50, 2.0, 0.1, model.RegimeRangeBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectRegime(tt.rsi, tt.volatility, tt.trend); got != tt.want {
				t.Fatalf("detectRegime(%v, %v, %v) = %v, want %v", tt.rsi, tt.volatility, tt.trend, got, tt.want)
			}
		})
	}
}

func TestSmoothingHoldsLastSignal(t *testing.T) {
	// Build LONG history without strong-zone bypass: lower-middle range
	// (position ~25) plus a drop gives moderate long scores
	long := fakeMarket{price: 99000, high: 102000, low: 98000, change: -4}
	neutral := fakeMarket{price: 100000, high: 101500, low: 98500, change: 0}

	engine := NewEngine(long, neutralContext())
	for i := 0; i < 6; i++ {
		engine.Analyze(context.Background(), "BTC", "")
	}
	if engine.lastSignal != model.VerdictLong {
		t.Fatalf("lastSignal = %v, want LONG after consistent long markets", engine.lastSignal)
	}

	// One neutral reading should not flip the smoothed signal
	engine.client = neutral
	signal := engine.Analyze(context.Background(), "BTC", "")
	if signal.Signal != model.VerdictLong {
		t.Fatalf("Signal = %v, want LONG held by smoothing", signal.Signal)
	}
}

func TestReset(t *testing.T) {
	engine := NewEngine(fakeMarket{price: 98100, high: 102000, low: 98000, change: -4}, neutralContext())

	for i := 0; i < 6; i++ {
		engine.Analyze(context.Background(), "BTC", "")
	}

	engine.Reset()
	if len(engine.History()) != 0 {
		t.Fatalf("history not cleared: %v", engine.History())
	}
	if engine.lastSignal != model.VerdictNeutral {
		t.Fatalf("lastSignal = %v, want NEUTRAL after reset", engine.lastSignal)
	}

	// Switching instrument after reset must see no smoothing carryover
	engine.client = fakeMarket{price: 3000, high: 3050, low: 2960, change: 0}
	signal := engine.Analyze(context.Background(), "ETH", "")
	if signal.Signal != model.VerdictNeutral {
		t.Fatalf("Signal = %v, want NEUTRAL with no carryover from prior instrument", signal.Signal)
	}
}

func TestGetCachedSignal(t *testing.T) {
	engine := NewEngine(fakeMarket{price: 100000, high: 101500, low: 98500, change: 0}, neutralContext())

	current := time.Unix(1_700_000_000, 0)
	engine.now = func() time.Time { return current }

	first := engine.GetCachedSignal(context.Background(), "BTC", 60*time.Second)
	second := engine.GetCachedSignal(context.Background(), "BTC", 60*time.Second)
	if first != second {
		t.Fatal("second call within maxAge must return the cached signal")
	}

	current = current.Add(61 * time.Second)
	third := engine.GetCachedSignal(context.Background(), "BTC", 60*time.Second)
	if third == first {
		t.Fatal("expired cache must trigger a fresh analysis")
	}
}
