package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"regimeforge-go/internal/model"
)

// AutomationResult reports what one automation cycle decided. TradeExecuted
// and PnL are set on every executed open/close; PnL carries the realized
// amount on closes.
type AutomationResult struct {
	Coin          string  `json:"coin"`
	Action        string  `json:"action"`
	Reason        string  `json:"reason"`
	OrderID       string  `json:"order_id,omitempty"`
	TradeExecuted bool    `json:"trade_executed"`
	PnL           float64 `json:"pnl,omitempty"`
}

// AutomationService runs the periodic trade-decision cycle: it manages an
// open position (stop loss, take profit) or evaluates entry gates and opens
// one. A single instance owns the settings and counters.
type AutomationService struct {
	trading    *TradingService
	engine     *Engine
	takeProfit *TakeProfitService
	journal    *JournalService
	notifier   *TelegramService

	mu       sync.Mutex
	settings model.AutomationSettings

	// injected for tests
	now func() time.Time
}

// NewAutomationService creates the controller with default (disabled)
// settings. journal and notifier may be nil.
func NewAutomationService(trading *TradingService, engine *Engine, takeProfit *TakeProfitService, journal *JournalService, notifier *TelegramService) *AutomationService {
	return &AutomationService{
		trading:    trading,
		engine:     engine,
		takeProfit: takeProfit,
		journal:    journal,
		notifier:   notifier,
		settings:   model.DefaultAutomationSettings(),
		now:        time.Now,
	}
}

// GetSettings returns a copy of the current automation settings
func (s *AutomationService) GetSettings() model.AutomationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// AutomationUpdate carries a partial settings change; nil fields keep the
// current value
type AutomationUpdate struct {
	Enabled        *bool
	AutoEntry      *bool
	AutoTakeProfit *bool
	AutoStopLoss   *bool

	MarginUSDT         *float64
	Leverage           *int
	MinConfidence      *float64
	StopLossPct        *float64
	MaxTradesPerHour   *int
	CooldownMinutes    *int
	DailyLossLimitUSDT *float64
}

// UpdateSettings applies a partial update after validation and returns the
// resulting settings
func (s *AutomationService) UpdateSettings(update AutomationUpdate) (model.AutomationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if update.MarginUSDT != nil {
		if *update.MarginUSDT <= 0 {
			return s.settings, fmt.Errorf("margin must be positive, got %.2f", *update.MarginUSDT)
		}
		next.MarginUSDT = *update.MarginUSDT
	}
	if update.Leverage != nil {
		if *update.Leverage < 1 || *update.Leverage > 125 {
			return s.settings, fmt.Errorf("leverage must be within [1, 125], got %d", *update.Leverage)
		}
		next.Leverage = *update.Leverage
	}
	if update.MinConfidence != nil {
		if *update.MinConfidence < 0 || *update.MinConfidence > 1 {
			return s.settings, fmt.Errorf("min confidence must be within [0, 1], got %.2f", *update.MinConfidence)
		}
		next.MinConfidence = *update.MinConfidence
	}
	if update.StopLossPct != nil {
		if *update.StopLossPct <= 0 {
			return s.settings, fmt.Errorf("stop loss must be positive, got %.2f", *update.StopLossPct)
		}
		next.StopLossPct = *update.StopLossPct
	}
	if update.MaxTradesPerHour != nil {
		if *update.MaxTradesPerHour < 0 {
			return s.settings, fmt.Errorf("max trades per hour must not be negative, got %d", *update.MaxTradesPerHour)
		}
		next.MaxTradesPerHour = *update.MaxTradesPerHour
	}
	if update.CooldownMinutes != nil {
		if *update.CooldownMinutes < 0 {
			return s.settings, fmt.Errorf("cooldown must not be negative, got %d", *update.CooldownMinutes)
		}
		next.CooldownMinutes = *update.CooldownMinutes
	}
	if update.DailyLossLimitUSDT != nil {
		if *update.DailyLossLimitUSDT <= 0 {
			return s.settings, fmt.Errorf("daily loss limit must be positive, got %.2f", *update.DailyLossLimitUSDT)
		}
		next.DailyLossLimitUSDT = *update.DailyLossLimitUSDT
	}

	if update.AutoEntry != nil {
		next.AutoEntry = *update.AutoEntry
	}
	if update.AutoTakeProfit != nil {
		next.AutoTakeProfit = *update.AutoTakeProfit
	}
	if update.AutoStopLoss != nil {
		next.AutoStopLoss = *update.AutoStopLoss
	}
	if update.Enabled != nil {
		next.Enabled = *update.Enabled
		if next.Enabled && !s.settings.Enabled {
			log.Printf("🤖 [Automation] ENABLED: margin %.0f USDT, %dx leverage, min conf %.0f%%",
				next.MarginUSDT, next.Leverage, next.MinConfidence*100)
		}
	}

	s.settings = next
	return s.settings, nil
}

// rollBuckets resets hourly and daily counters when their integer-division
// bucket changes. A process that slept across several buckets still resets
// exactly once.
func (s *AutomationService) rollBuckets(nowUnix int64) {
	hourBucket := nowUnix / 3600
	if s.settings.HourStart != hourBucket {
		s.settings.HourStart = hourBucket
		s.settings.TradesThisHour = 0
	}
	dayBucket := nowUnix / 86400
	if s.settings.DayStart != dayBucket {
		s.settings.DayStart = dayBucket
		s.settings.DailyPnL = 0
	}
}

// Run executes one automation cycle for a coin
func (s *AutomationService) Run(ctx context.Context, coin string) AutomationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.run(ctx, coin)
	s.settings.LastAutoAction = fmt.Sprintf("%s: %s", result.Action, result.Reason)
	if s.journal != nil && result.Action != "none" {
		s.journal.RecordAction(ctx, coin, result.Action, result.Reason, result.OrderID)
	}
	return result
}

func (s *AutomationService) run(ctx context.Context, coin string) AutomationResult {
	result := AutomationResult{Coin: coin, Action: "none"}

	if !s.settings.Enabled {
		result.Reason = "Automation disabled"
		return result
	}

	nowUnix := s.now().Unix()
	s.rollBuckets(nowUnix)

	if s.settings.DailyPnL <= -s.settings.DailyLossLimitUSDT {
		result.Reason = fmt.Sprintf("Daily loss limit reached (%.2f USDT)", s.settings.DailyPnL)
		return result
	}

	position := s.trading.GetPosition(ctx, coin)
	if position != nil {
		return s.managePosition(ctx, coin, position)
	}

	if !s.settings.AutoEntry {
		result.Reason = "Auto entry disabled"
		return result
	}

	if s.settings.CooldownMinutes > 0 && s.settings.LastTradeTime > 0 {
		elapsed := nowUnix - s.settings.LastTradeTime
		cooldown := int64(s.settings.CooldownMinutes) * 60
		if elapsed < cooldown {
			result.Reason = fmt.Sprintf("Cooldown active (%ds remaining)", cooldown-elapsed)
			return result
		}
	}

	if s.settings.TradesThisHour >= s.settings.MaxTradesPerHour {
		result.Reason = fmt.Sprintf("Hourly trade limit reached (%d/%d)",
			s.settings.TradesThisHour, s.settings.MaxTradesPerHour)
		return result
	}

	signal := s.engine.Analyze(ctx, coin, "")
	if signal.Signal == model.VerdictNeutral {
		result.Reason = "No directional signal"
		return result
	}
	if signal.Confidence < s.settings.MinConfidence {
		result.Reason = fmt.Sprintf("Confidence %.0f%% below %.0f%% threshold",
			signal.Confidence*100, s.settings.MinConfidence*100)
		return result
	}

	order := s.trading.PlaceOrder(ctx, coin, signal.Signal, s.settings.MarginUSDT, s.settings.Leverage, signal)
	if !order.Success {
		result.Reason = fmt.Sprintf("Order failed: %s", order.Error)
		return result
	}

	s.settings.TradesThisHour++
	s.settings.LastTradeTime = nowUnix
	s.takeProfit.EnableTrailingForAuto(coin, order.Price, signal.Signal)

	if signal.Signal == model.VerdictLong {
		result.Action = "open_long"
	} else {
		result.Action = "open_short"
	}
	result.Reason = fmt.Sprintf("Opened %s at %.0f%% confidence", signal.Signal, signal.Confidence*100)
	result.OrderID = order.OrderID
	result.TradeExecuted = true

	s.notify(fmt.Sprintf("🤖 Auto-opened %s %s (%.0f%% conf, %.0f USDT x%d)",
		signal.Signal, coin, signal.Confidence*100, s.settings.MarginUSDT, s.settings.Leverage))
	return result
}

// managePosition applies stop loss and take profit to an open position.
// Stop loss wins when both would fire.
func (s *AutomationService) managePosition(ctx context.Context, coin string, position *model.Position) AutomationResult {
	result := AutomationResult{Coin: coin, Action: "none"}
	pnlPct := position.PnLPct()

	if s.settings.AutoStopLoss && pnlPct <= -s.settings.StopLossPct {
		reason := fmt.Sprintf("Stop loss: %.2f%% <= -%.2f%%", pnlPct, s.settings.StopLossPct)
		order := s.trading.ClosePosition(ctx, coin, reason)
		if !order.Success {
			result.Reason = fmt.Sprintf("Stop loss close failed: %s", order.Error)
			return result
		}
		realized := position.PnLUSDT()
		s.settings.DailyPnL += realized
		s.takeProfit.ResetTracking(coin)
		result.Action = "stop_loss"
		result.Reason = reason
		result.OrderID = order.OrderID
		result.TradeExecuted = true
		result.PnL = realized
		s.notify(fmt.Sprintf("🛑 Stop loss closed %s %s at %.2f%%", position.Side, coin, pnlPct))
		return result
	}

	if s.settings.AutoTakeProfit {
		decision := s.takeProfit.Check(coin, position)
		if decision.ShouldClose {
			order := s.trading.ClosePosition(ctx, coin, decision.Reason)
			if !order.Success {
				result.Reason = fmt.Sprintf("Take profit close failed: %s", order.Error)
				return result
			}
			realized := position.PnLUSDT()
			s.settings.DailyPnL += realized
			s.takeProfit.ResetTracking(coin)
			result.Action = "take_profit"
			result.Reason = decision.Reason
			result.OrderID = order.OrderID
			result.TradeExecuted = true
			result.PnL = realized
			s.notify(fmt.Sprintf("🎯 Take profit closed %s %s at +%.2f%%", position.Side, coin, pnlPct))
			return result
		}
	}

	result.Reason = fmt.Sprintf("Holding %s position (%.2f%%)", position.Side, pnlPct)
	return result
}

func (s *AutomationService) notify(text string) {
	if s.notifier != nil {
		s.notifier.Send(text)
	}
}
