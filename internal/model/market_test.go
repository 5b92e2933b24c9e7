package model

import (
	"math"
	"testing"
)

func TestPricePosition(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		high     float64
		low      float64
		expected float64
	}{
		{"at low", 98, 102, 98, 0},
		{"at high", 102, 102, 98, 100},
		{"mid range", 100, 102, 98, 50},
		{"flat range defaults to mid", 100, 100, 100, 50},
		{"inverted range defaults to mid", 100, 98, 102, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MarketSnapshot{Price: tt.price, High24h: tt.high, Low24h: tt.low}
			got := m.PricePosition()
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Fatalf("PricePosition() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPricePositionBounds(t *testing.T) {
	// Whatever the inputs, position must stay within [0, 100]
	snapshots := []MarketSnapshot{
		{Price: 110, High24h: 102, Low24h: 98},
		{Price: 90, High24h: 102, Low24h: 98},
		{Price: 0, High24h: 102, Low24h: 98},
	}
	for _, m := range snapshots {
		got := m.PricePosition()
		if got < 0 || got > 100 {
			t.Fatalf("PricePosition() = %v out of [0, 100] for %+v", got, m)
		}
	}
}

func TestVolatilityPct(t *testing.T) {
	m := MarketSnapshot{Price: 100, High24h: 104, Low24h: 100}
	if got := m.VolatilityPct(); math.Abs(got-4) > 1e-9 {
		t.Fatalf("VolatilityPct() = %v, want 4", got)
	}

	// Zero price falls back to the moderate default
	zero := MarketSnapshot{Price: 0, High24h: 104, Low24h: 100}
	if got := zero.VolatilityPct(); got != 2.0 {
		t.Fatalf("VolatilityPct() with zero price = %v, want 2.0", got)
	}
}

func TestPositionPnLPct(t *testing.T) {
	tests := []struct {
		name     string
		side     Verdict
		entry    float64
		current  float64
		expected float64
	}{
		{"long profit", VerdictLong, 100000, 101500, 1.5},
		{"long loss", VerdictLong, 100000, 98000, -2.0},
		{"short profit", VerdictShort, 100000, 98000, 2.0},
		{"short loss", VerdictShort, 100000, 101000, -1.0},
		{"zero entry", VerdictLong, 0, 101000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Position{Side: tt.side, EntryPrice: tt.entry, CurrentPrice: tt.current}
			got := p.PnLPct()
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Fatalf("PnLPct() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPositionValueAndMargin(t *testing.T) {
	p := Position{Size: 0.5, CurrentPrice: 100000, Leverage: 20}
	if got := p.ValueUSDT(); got != 50000 {
		t.Fatalf("ValueUSDT() = %v, want 50000", got)
	}
	if got := p.MarginUSDT(); got != 2500 {
		t.Fatalf("MarginUSDT() = %v, want 2500", got)
	}
}

func TestTakeProfitResetTracking(t *testing.T) {
	s := DefaultTakeProfitSettings()
	s.PeakProfitPct = 2.4
	s.EntryPrice = 100000
	s.PositionSide = VerdictLong

	s.ResetTracking()
	if s.PeakProfitPct != 0 || s.EntryPrice != 0 || s.PositionSide != "" {
		t.Fatalf("ResetTracking() left state behind: %+v", s)
	}
	// Configuration survives a reset
	if s.FixedTargetPct != 1.5 || s.TrailingDropPct != 0.5 {
		t.Fatalf("ResetTracking() clobbered configuration: %+v", s)
	}
}
