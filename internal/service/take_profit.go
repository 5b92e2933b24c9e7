package service

import (
	"fmt"
	"log"
	"sync"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/model"
)

// TakeProfitDecision is the outcome of one take-profit evaluation
type TakeProfitDecision struct {
	ShouldClose bool    `json:"should_close"`
	Reason      string  `json:"reason"`
	PnLPct      float64 `json:"pnl_pct"`
	PeakPct     float64 `json:"peak_pct"`
}

// TakeProfitService tracks per-coin take-profit settings and peak profit
// state, and decides when an open position should be closed.
type TakeProfitService struct {
	mu       sync.Mutex
	settings map[string]*model.TakeProfitSettings
}

// NewTakeProfitService creates the tracker with defaults for every coin
func NewTakeProfitService() *TakeProfitService {
	return &TakeProfitService{
		settings: make(map[string]*model.TakeProfitSettings),
	}
}

func (s *TakeProfitService) get(coin string) *model.TakeProfitSettings {
	if tp, ok := s.settings[coin]; ok {
		return tp
	}
	tp := model.DefaultTakeProfitSettings()
	s.settings[coin] = &tp
	return &tp
}

// GetSettings returns a copy of the take-profit settings for a coin
func (s *TakeProfitService) GetSettings(coin string) model.TakeProfitSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.get(coin)
}

// TakeProfitUpdate carries a partial settings change; nil fields keep the
// current value
type TakeProfitUpdate struct {
	Enabled         *bool
	Mode            *model.TakeProfitMode
	FixedTargetPct  *float64
	TrailingDropPct *float64
}

// UpdateSettings applies a partial update and returns the resulting settings
func (s *TakeProfitService) UpdateSettings(coin string, update TakeProfitUpdate) (model.TakeProfitSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tp := s.get(coin)
	if update.Mode != nil {
		if *update.Mode != model.TPModeFixed && *update.Mode != model.TPModeTrailing {
			return *tp, fmt.Errorf("invalid take-profit mode: %s", *update.Mode)
		}
		tp.Mode = *update.Mode
	}
	if update.Enabled != nil {
		tp.Enabled = *update.Enabled
		if !tp.Enabled {
			tp.ResetTracking()
		}
	}
	if update.FixedTargetPct != nil {
		if *update.FixedTargetPct <= 0 {
			return *tp, fmt.Errorf("fixed target must be positive, got %.2f", *update.FixedTargetPct)
		}
		tp.FixedTargetPct = *update.FixedTargetPct
	}
	if update.TrailingDropPct != nil {
		if *update.TrailingDropPct <= 0 {
			return *tp, fmt.Errorf("trailing drop must be positive, got %.2f", *update.TrailingDropPct)
		}
		tp.TrailingDropPct = *update.TrailingDropPct
	}

	log.Printf("🎯 [TakeProfit] %s settings updated: enabled=%v mode=%s target=%.2f%% trail=%.2f%%",
		coin, tp.Enabled, tp.Mode, tp.FixedTargetPct, tp.TrailingDropPct)
	return *tp, nil
}

// EnableTrailingForAuto switches a coin to trailing mode with fresh tracking
// for an automation-opened position, keeping the user's drop distance if
// already set
func (s *TakeProfitService) EnableTrailingForAuto(coin string, entryPrice float64, side model.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tp := s.get(coin)
	tp.ResetTracking()
	tp.Enabled = true
	tp.Mode = model.TPModeTrailing
	tp.EntryPrice = entryPrice
	tp.PositionSide = side
}

// ResetTracking clears the tracked peak and entry for a coin, typically after
// a position closes
func (s *TakeProfitService) ResetTracking(coin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(coin).ResetTracking()
}

// Check evaluates the take-profit rules against an open position. The peak
// only ratchets up; a new position (different entry or side) re-arms tracking
// first.
func (s *TakeProfitService) Check(coin string, position *model.Position) TakeProfitDecision {
	s.mu.Lock()
	defer s.mu.Unlock()

	tp := s.get(coin)
	if position == nil {
		tp.ResetTracking()
		return TakeProfitDecision{Reason: "No open position"}
	}

	pnlPct := position.PnLPct()

	if !tp.Enabled {
		return TakeProfitDecision{Reason: "Take profit disabled", PnLPct: pnlPct}
	}
	if position.EntryPrice <= 0 || position.CurrentPrice <= 0 {
		return TakeProfitDecision{Reason: "Invalid price data"}
	}

	// Different entry or side means the tracked position is gone
	if tp.EntryPrice != position.EntryPrice || tp.PositionSide != position.Side {
		tp.ResetTracking()
		tp.EntryPrice = position.EntryPrice
		tp.PositionSide = position.Side
	}

	if pnlPct > tp.PeakProfitPct {
		tp.PeakProfitPct = pnlPct
	}

	decision := TakeProfitDecision{PnLPct: pnlPct, PeakPct: tp.PeakProfitPct}

	switch tp.Mode {
	case model.TPModeFixed:
		if pnlPct >= tp.FixedTargetPct {
			decision.ShouldClose = true
			decision.Reason = fmt.Sprintf("Fixed target hit: +%.2f%% >= +%.2f%%", pnlPct, tp.FixedTargetPct)
			return decision
		}
		decision.Reason = fmt.Sprintf("Holding: +%.2f%% of +%.2f%% target", pnlPct, tp.FixedTargetPct)

	case model.TPModeTrailing:
		if tp.PeakProfitPct < config.TrailingActivationThreshold {
			decision.Reason = fmt.Sprintf("Trailing not armed: peak +%.2f%% below +%.2f%%",
				tp.PeakProfitPct, config.TrailingActivationThreshold)
			return decision
		}
		drop := tp.PeakProfitPct - pnlPct
		if drop >= tp.TrailingDropPct {
			decision.ShouldClose = true
			decision.Reason = fmt.Sprintf("Trailing stop: dropped %.2f%% from peak +%.2f%%", drop, tp.PeakProfitPct)
			return decision
		}
		decision.Reason = fmt.Sprintf("Trailing armed: +%.2f%% (peak +%.2f%%)", pnlPct, tp.PeakProfitPct)
	}

	return decision
}
