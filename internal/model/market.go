package model

import "time"

// MarketSnapshot is a point-in-time view of one contract's market state.
// Built once per fetch by the exchange parsers and never mutated after.
type MarketSnapshot struct {
	Price        float64   `json:"price"`
	High24h      float64   `json:"high_24h"`
	Low24h       float64   `json:"low_24h"`
	Volume24h    float64   `json:"volume_24h"`
	Change24hPct float64   `json:"change_24h_pct"`
	BidPrice     float64   `json:"bid_price"`
	AskPrice     float64   `json:"ask_price"`
	SpreadPct    float64   `json:"spread_pct"`
	Timestamp    time.Time `json:"timestamp"`
}

// PriceRange returns the 24h price range
func (m MarketSnapshot) PriceRange() float64 {
	return m.High24h - m.Low24h
}

// PricePosition returns the price's position within the 24h range, clamped
// to [0, 100]. A degenerate range reads as mid-range.
func (m MarketSnapshot) PricePosition() float64 {
	r := m.PriceRange()
	if r <= 0 {
		return 50.0
	}
	position := ((m.Price - m.Low24h) / r) * 100
	if position < 0 {
		return 0
	}
	if position > 100 {
		return 100
	}
	return position
}

// VolatilityPct returns the 24h range as a percentage of price
func (m MarketSnapshot) VolatilityPct() float64 {
	if m.Price <= 0 {
		return 2.0
	}
	return (m.PriceRange() / m.Price) * 100
}
