package model

// Position is a normalized view of an exchange position record.
// Reconstructed from the exchange on every query, never persisted.
type Position struct {
	Coin             string  `json:"coin"`
	Symbol           string  `json:"symbol"`
	Side             Verdict `json:"side"` // LONG or SHORT
	Size             float64 `json:"size"`
	EntryPrice       float64 `json:"entry_price"`
	CurrentPrice     float64 `json:"current_price"`
	Leverage         int     `json:"leverage"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	LiquidationPrice float64 `json:"liquidation_price"`
}

// PnLPct returns the signed profit/loss percentage for the position side
func (p Position) PnLPct() float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	if p.Side == VerdictLong {
		return ((p.CurrentPrice - p.EntryPrice) / p.EntryPrice) * 100
	}
	return ((p.EntryPrice - p.CurrentPrice) / p.EntryPrice) * 100
}

// PnLUSDT returns the profit/loss in quote currency
func (p Position) PnLUSDT() float64 {
	if p.Side == VerdictLong {
		return (p.CurrentPrice - p.EntryPrice) * p.Size
	}
	return (p.EntryPrice - p.CurrentPrice) * p.Size
}

// ValueUSDT returns the position's notional value
func (p Position) ValueUSDT() float64 {
	return p.Size * p.CurrentPrice
}

// MarginUSDT returns the margin backing the position
func (p Position) MarginUSDT() float64 {
	if p.Leverage <= 0 {
		return p.ValueUSDT()
	}
	return p.ValueUSDT() / float64(p.Leverage)
}
