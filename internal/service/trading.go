package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/exchange"
	"regimeforge-go/internal/model"
)

// ExchangeAPI is the slice of the exchange client the trading service needs
type ExchangeAPI interface {
	GetTicker(ctx context.Context, symbol string) map[string]interface{}
	GetAssets(ctx context.Context) map[string]interface{}
	GetPosition(ctx context.Context, symbol string) map[string]interface{}
	PlaceOrder(ctx context.Context, order map[string]interface{}) map[string]interface{}
	CancelOrder(ctx context.Context, symbol, orderID string) map[string]interface{}
	UploadAILog(ctx context.Context, aiLog map[string]interface{}) map[string]interface{}
}

// WEEX contract order type codes
const (
	orderOpenLong   = "1"
	orderOpenShort  = "2"
	orderCloseLong  = "3"
	orderCloseShort = "4"
)

// OrderResult reports the outcome of an order placement or close
type OrderResult struct {
	Success bool    `json:"success"`
	OrderID string  `json:"order_id,omitempty"`
	Error   string  `json:"error,omitempty"`
	Coin    string  `json:"coin"`
	Side    string  `json:"side,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Price   float64 `json:"price,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// TradingService executes orders and reads positions through the exchange
type TradingService struct {
	client ExchangeAPI
	now    func() time.Time
}

// NewTradingService creates a trading service
func NewTradingService(client ExchangeAPI) *TradingService {
	return &TradingService{client: client, now: time.Now}
}

// CurrentPrice returns the last traded price for a coin, 0 when unavailable
func (s *TradingService) CurrentPrice(ctx context.Context, coin string) float64 {
	ticker := s.client.GetTicker(ctx, config.Symbol(coin))
	return exchange.ParseTicker(ticker).Price
}

// PlaceOrder opens a market position sized from margin x leverage at the
// current price. A signal, when given, is attached to the exchange audit log.
func (s *TradingService) PlaceOrder(ctx context.Context, coin string, side model.Verdict, marginUSDT float64, leverage int, signal *model.Signal) OrderResult {
	result := OrderResult{Coin: coin, Side: string(side)}

	if side != model.VerdictLong && side != model.VerdictShort {
		result.Error = fmt.Sprintf("invalid side: %s", side)
		return result
	}

	price := s.CurrentPrice(ctx, coin)
	if !ValidatePrice(price) {
		result.Error = "Price unavailable"
		return result
	}

	notional := marginUSDT * float64(leverage)
	size := CalculateOrderSize(coin, notional, price)
	if size <= 0 {
		result.Error = fmt.Sprintf("computed size is zero (notional %.2f at price %.4f)", notional, price)
		return result
	}

	typeCode := orderOpenLong
	if side == model.VerdictShort {
		typeCode = orderOpenShort
	}

	symbol := config.Symbol(coin)
	order := map[string]interface{}{
		"symbol":      symbol,
		"client_oid":  fmt.Sprintf("rf_%d", s.now().Unix()),
		"size":        FormatCoinSize(coin, size),
		"type":        typeCode,
		"order_type":  "0",
		"match_price": "1",
		"price":       "",
	}

	resp := s.client.PlaceOrder(ctx, order)
	if errText, ok := resp["error"]; ok {
		result.Error = fmt.Sprintf("%v", errText)
		log.Printf("❌ [Trading] %s %s order failed: %s", coin, side, result.Error)
		return result
	}

	orderID := exchange.ExtractOrderID(resp)
	if orderID == "" {
		result.Error = "order accepted but no order id returned"
		log.Printf("❌ [Trading] %s %s: %s", coin, side, result.Error)
		return result
	}

	result.Success = true
	result.OrderID = orderID
	result.Size = size
	result.Price = price
	log.Printf("✅ [Trading] Opened %s %s: size %s at %.4f (order %s)",
		side, coin, FormatCoinSize(coin, size), price, orderID)

	s.SubmitAuditLog(ctx, coin, "OPEN_POSITION", orderID, signal)
	return result
}

// ClosePosition closes the open position for a coin with a market order
func (s *TradingService) ClosePosition(ctx context.Context, coin, reason string) OrderResult {
	result := OrderResult{Coin: coin, Reason: reason}

	position := s.GetPosition(ctx, coin)
	if position == nil {
		result.Error = "No open position"
		return result
	}

	typeCode := orderCloseLong
	if position.Side == model.VerdictShort {
		typeCode = orderCloseShort
	}

	symbol := config.Symbol(coin)
	order := map[string]interface{}{
		"symbol":      symbol,
		"client_oid":  fmt.Sprintf("rf_close_%d", s.now().Unix()),
		"size":        FormatCoinSize(coin, position.Size),
		"type":        typeCode,
		"order_type":  "0",
		"match_price": "1",
		"price":       "",
	}

	resp := s.client.PlaceOrder(ctx, order)
	if errText, ok := resp["error"]; ok {
		result.Error = fmt.Sprintf("%v", errText)
		log.Printf("❌ [Trading] Close %s failed: %s", coin, result.Error)
		return result
	}

	result.Success = true
	result.OrderID = exchange.ExtractOrderID(resp)
	result.Side = string(position.Side)
	result.Size = position.Size
	result.Price = position.CurrentPrice
	log.Printf("✅ [Trading] Closed %s %s (%.2f%% PnL): %s",
		position.Side, coin, position.PnLPct(), reason)

	s.SubmitAuditLog(ctx, coin, "CLOSE_POSITION", result.OrderID, nil)
	return result
}

// CancelOrder cancels an open order. WEEX signals success either with a
// boolean result or one of its success codes.
func (s *TradingService) CancelOrder(ctx context.Context, coin, orderID string) OrderResult {
	result := OrderResult{Coin: coin, OrderID: orderID}

	resp := s.client.CancelOrder(ctx, config.Symbol(coin), orderID)
	if errText, ok := resp["error"]; ok {
		result.Error = fmt.Sprintf("%v", errText)
		return result
	}

	if ok, _ := resp["result"].(bool); ok {
		result.Success = true
		return result
	}
	code := exchange.String(resp["code"])
	if code == "00000" || code == "200" {
		result.Success = true
		return result
	}

	result.Error = fmt.Sprintf("cancel rejected: %v", resp["msg"])
	return result
}

// GetPosition returns the open position for a coin with the current mark
// price filled in, or nil when flat or the exchange is unreachable
func (s *TradingService) GetPosition(ctx context.Context, coin string) *model.Position {
	symbol := config.Symbol(coin)
	payload := s.client.GetPosition(ctx, symbol)
	if _, failed := payload["error"]; failed {
		return nil
	}

	position := exchange.ParsePosition(payload, coin, symbol)
	if position == nil {
		return nil
	}

	if price := s.CurrentPrice(ctx, coin); price > 0 {
		position.CurrentPrice = price
	} else {
		position.CurrentPrice = position.EntryPrice
	}
	return position
}

// GetAllPositions scans every supported coin sequentially and returns the
// open positions. A failing coin is skipped, not fatal.
func (s *TradingService) GetAllPositions(ctx context.Context) []*model.Position {
	positions := make([]*model.Position, 0, len(config.CoinOrder))
	for _, coin := range config.CoinOrder {
		position := s.GetPosition(ctx, coin)
		if position != nil {
			positions = append(positions, position)
		}
	}
	return positions
}

// Balance returns the available USDT balance, 0 when unavailable
func (s *TradingService) Balance(ctx context.Context) float64 {
	payload := s.client.GetAssets(ctx)
	if _, failed := payload["error"]; failed {
		return 0
	}

	records, ok := payload["data"].([]interface{})
	if !ok {
		return 0
	}
	for _, r := range records {
		asset, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		if exchange.String(asset["symbol"]) == "usdt" || exchange.String(asset["coin"]) == "USDT" {
			return exchange.Float(asset["available"])
		}
	}
	return 0
}

// SubmitAuditLog uploads a strategy audit record to the exchange. Best
// effort: failures are logged and swallowed.
func (s *TradingService) SubmitAuditLog(ctx context.Context, coin, stage, orderID string, signal *model.Signal) {
	record := map[string]interface{}{
		"stage":           stage,
		"model":           config.ModelVersion,
		"input":           fmt.Sprintf("market analysis for %s", coin),
		"output":          stage,
		"explanation":     "",
		"serverTimestamp": s.now().UnixMilli(),
	}
	if orderID != "" {
		record["orderId"] = orderID
	}

	if signal != nil {
		explanation := map[string]interface{}{
			"signal":     signal.Signal,
			"confidence": signal.Confidence,
			"regime":     signal.Regime,
			"reasoning":  signal.Reasoning,
			"indicators": signal.Indicators,
		}
		if encoded, err := json.Marshal(explanation); err == nil {
			text := string(encoded)
			// Character budget, not bytes: never split a multi-byte rune
			if runes := []rune(text); len(runes) > config.ExplanationMaxChars {
				text = string(runes[:config.ExplanationMaxChars])
			}
			record["explanation"] = text
		}
	}

	resp := s.client.UploadAILog(ctx, record)
	if errText, ok := resp["error"]; ok {
		log.Printf("⚠️  [Trading] Audit log upload failed (non-fatal): %v", errText)
	}
}
