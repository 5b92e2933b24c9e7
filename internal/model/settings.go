package model

// TakeProfitMode selects how the take-profit tracker decides to close
type TakeProfitMode string

const (
	TPModeFixed    TakeProfitMode = "fixed"
	TPModeTrailing TakeProfitMode = "trailing"
)

// TakeProfitSettings is the per-coin take-profit configuration plus the
// tracking state accumulated between position open and close.
type TakeProfitSettings struct {
	Enabled         bool           `json:"enabled" bson:"enabled"`
	Mode            TakeProfitMode `json:"mode" bson:"mode"`
	FixedTargetPct  float64        `json:"fixed_target_pct" bson:"fixed_target_pct"`
	TrailingDropPct float64        `json:"trailing_drop_pct" bson:"trailing_drop_pct"`

	// Tracking state. PeakProfitPct only moves up between resets.
	PeakProfitPct float64 `json:"peak_profit_pct" bson:"peak_profit_pct"`
	EntryPrice    float64 `json:"entry_price" bson:"entry_price"`
	PositionSide  Verdict `json:"position_side,omitempty" bson:"position_side,omitempty"`
}

// DefaultTakeProfitSettings returns the per-coin defaults
func DefaultTakeProfitSettings() TakeProfitSettings {
	return TakeProfitSettings{
		Enabled:         false,
		Mode:            TPModeFixed,
		FixedTargetPct:  1.5,
		TrailingDropPct: 0.5,
	}
}

// ResetTracking clears tracking state after a position closes
func (s *TakeProfitSettings) ResetTracking() {
	s.PeakProfitPct = 0
	s.EntryPrice = 0
	s.PositionSide = ""
}

// AutomationSettings holds automation configuration and runtime counters.
// A single instance lives for the process; only the automation controller
// mutates it.
type AutomationSettings struct {
	Enabled        bool    `json:"enabled"`
	AutoEntry      bool    `json:"auto_entry"`
	AutoTakeProfit bool    `json:"auto_take_profit"`
	AutoStopLoss   bool    `json:"auto_stop_loss"`

	MarginUSDT         float64 `json:"margin_usdt"`
	Leverage           int     `json:"leverage"`
	MinConfidence      float64 `json:"min_confidence"`
	StopLossPct        float64 `json:"stop_loss_pct"`
	MaxTradesPerHour   int     `json:"max_trades_per_hour"`
	CooldownMinutes    int     `json:"cooldown_minutes"`
	DailyLossLimitUSDT float64 `json:"daily_loss_limit_usdt"`

	// Runtime counters. Hour/day buckets are identified by integer division
	// of unix time; rollover is detected by bucket-id change only.
	TradesThisHour int     `json:"trades_this_hour"`
	HourStart      int64   `json:"hour_start"`
	LastTradeTime  int64   `json:"last_trade_time"`
	DailyPnL       float64 `json:"daily_pnl"`
	DayStart       int64   `json:"day_start"`
	LastAutoAction string  `json:"last_auto_action"`
}

// DefaultAutomationSettings returns the automation defaults (everything off)
func DefaultAutomationSettings() AutomationSettings {
	return AutomationSettings{
		MarginUSDT:         30.0,
		Leverage:           20,
		MinConfidence:      0.65,
		StopLossPct:        2.0,
		MaxTradesPerHour:   3,
		CooldownMinutes:    5,
		DailyLossLimitUSDT: 20.0,
	}
}

// PositionValue returns the notional opened per trade
func (s AutomationSettings) PositionValue() float64 {
	return s.MarginUSDT * float64(s.Leverage)
}
