package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"regimeforge-go/internal/service"
)

// PositionMonitor periodically summarizes open positions and exposure
type PositionMonitor struct {
	trading *service.TradingService
}

// NewPositionMonitor creates a position monitor
func NewPositionMonitor(trading *service.TradingService) *PositionMonitor {
	return &PositionMonitor{trading: trading}
}

// LogOpenPositions fetches every open position and logs a summary line per
// position plus aggregate exposure
func (m *PositionMonitor) LogOpenPositions(ctx context.Context) {
	positions := m.trading.GetAllPositions(ctx)
	if len(positions) == 0 {
		log.Println("📊 [Monitor] No open positions")
		return
	}

	totalValue := 0.0
	totalPnL := 0.0
	for _, p := range positions {
		totalValue += p.ValueUSDT()
		totalPnL += p.PnLUSDT()
		log.Printf("📊 [Monitor] %s %s: size %.4f, entry %.4f, mark %.4f, PnL %+.2f%%",
			p.Side, p.Coin, p.Size, p.EntryPrice, p.CurrentPrice, p.PnLPct())
	}

	log.Printf("📊 [Monitor] %d position(s), notional %.2f USDT, unrealized %+.2f USDT",
		len(positions), totalValue, totalPnL)
}

// Summary renders the open positions as a notification-ready block
func (m *PositionMonitor) Summary(ctx context.Context) string {
	positions := m.trading.GetAllPositions(ctx)
	if len(positions) == 0 {
		return "No open positions"
	}

	var sb strings.Builder
	sb.WriteString("📊 Open Positions\n")
	sb.WriteString("------------------------\n")
	for _, p := range positions {
		sb.WriteString(fmt.Sprintf("%s %s: %+.2f%% (%.2f USDT)\n",
			p.Side, p.Coin, p.PnLPct(), p.PnLUSDT()))
	}
	return sb.String()
}
