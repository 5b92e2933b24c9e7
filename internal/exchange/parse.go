package exchange

import (
	"strconv"
	"strings"
	"time"

	"regimeforge-go/internal/model"
)

// The WEEX API wraps payloads inconsistently: sometimes under a "data"
// envelope, sometimes flat, with snake_case or camelCase field names and
// numbers serialized as strings. All of that flexibility is absorbed here;
// the rest of the codebase only sees model types.

// Envelope unwraps the optional "data" wrapper of a response
func Envelope(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return map[string]interface{}{}
	}
	if data, ok := payload["data"].(map[string]interface{}); ok {
		return data
	}
	return payload
}

// Float coerces a loosely-typed field (float, int or numeric string) to float64
func Float(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String coerces a field to string
func String(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// firstFloat returns the first present key coerced to float64
func firstFloat(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return Float(v)
		}
	}
	return 0
}

// TickerData is the normalized ticker shape
type TickerData struct {
	Price     float64
	High24h   float64
	Low24h    float64
	Volume    float64
	ChangePct float64
}

// ParseTicker normalizes a raw ticker payload. Missing high/low default to
// ±2% of the last price so downstream range math stays usable.
func ParseTicker(ticker map[string]interface{}) TickerData {
	data := Envelope(ticker)

	price := firstFloat(data, "last")
	high := firstFloat(data, "high_24h", "high24h")
	low := firstFloat(data, "low_24h", "low24h")
	volume := firstFloat(data, "base_volume", "baseVolume")
	changePct := firstFloat(data, "priceChangePercent", "change24h")

	if high <= 0 {
		high = price * 1.02
	}
	if low <= 0 {
		low = price * 0.98
	}

	return TickerData{
		Price:     price,
		High24h:   high,
		Low24h:    low,
		Volume:    volume,
		ChangePct: changePct,
	}
}

// ParseDepth extracts best bid/ask from an order book payload. Either side
// missing falls back to the given price, collapsing the spread to zero.
func ParseDepth(depth map[string]interface{}, fallbackPrice float64) (bid, ask float64) {
	bid, ask = fallbackPrice, fallbackPrice
	data := Envelope(depth)

	if bids, ok := data["bids"].([]interface{}); ok && len(bids) > 0 {
		bid = parseLevel(bids[0], fallbackPrice)
	}
	if asks, ok := data["asks"].([]interface{}); ok && len(asks) > 0 {
		ask = parseLevel(asks[0], fallbackPrice)
	}
	return bid, ask
}

// parseLevel reads a price level shaped either as [price, size] or
// {"price": ...}
func parseLevel(level interface{}, fallback float64) float64 {
	switch t := level.(type) {
	case []interface{}:
		if len(t) > 0 {
			if p := Float(t[0]); p > 0 {
				return p
			}
		}
	case map[string]interface{}:
		if p := Float(t["price"]); p > 0 {
			return p
		}
	}
	return fallback
}

// BuildSnapshot combines raw ticker and depth payloads into a MarketSnapshot
func BuildSnapshot(ticker, depth map[string]interface{}) model.MarketSnapshot {
	t := ParseTicker(ticker)
	bid, ask := ParseDepth(depth, t.Price)

	spreadPct := 0.0
	if t.Price > 0 {
		spreadPct = ((ask - bid) / t.Price) * 100
	}

	return model.MarketSnapshot{
		Price:        t.Price,
		High24h:      t.High24h,
		Low24h:       t.Low24h,
		Volume24h:    t.Volume,
		Change24hPct: t.ChangePct,
		BidPrice:     bid,
		AskPrice:     ask,
		SpreadPct:    spreadPct,
		Timestamp:    time.Now().UTC(),
	}
}

// ExtractOrderID pulls an order id out of the several response shapes WEEX
// uses: order_id/orderId top-level, the same nested under data, or a bare
// data string.
func ExtractOrderID(result map[string]interface{}) string {
	if result == nil {
		return ""
	}

	for _, k := range []string{"order_id", "orderId"} {
		if v, ok := result[k]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}

	switch data := result["data"].(type) {
	case map[string]interface{}:
		for _, k := range []string{"order_id", "orderId"} {
			if v, ok := data[k]; ok {
				if s := stringify(v); s != "" {
					return s
				}
			}
		}
	case string:
		return data
	}

	return ""
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

// ParsePosition converts an exchange position payload into a Position.
// Returns nil when the payload holds no position or size is not positive.
// CurrentPrice is left zero; callers fill it from a ticker when needed.
func ParsePosition(payload map[string]interface{}, coin, symbol string) *model.Position {
	if payload == nil {
		return nil
	}

	records, ok := payload["data"].([]interface{})
	if !ok {
		if records, ok = payload["positions"].([]interface{}); !ok {
			return nil
		}
	}
	if len(records) == 0 {
		return nil
	}

	pos, ok := records[0].(map[string]interface{})
	if !ok {
		return nil
	}

	size := firstFloat(pos, "size", "total")
	if size <= 0 {
		return nil
	}

	openValue := firstFloat(pos, "open_value", "openValue")
	side := strings.ToUpper(String(pos["side"]))
	if side == "" {
		side = strings.ToUpper(String(pos["holdSide"]))
	}
	if side == "" {
		side = string(model.VerdictLong)
	}

	leverage := firstFloat(pos, "leverage")
	if leverage <= 0 {
		leverage = 20
	}

	return &model.Position{
		Coin:             coin,
		Symbol:           symbol,
		Side:             model.Verdict(side),
		Size:             size,
		EntryPrice:       openValue / size,
		Leverage:         int(leverage),
		UnrealizedPnL:    firstFloat(pos, "unrealized_pnl", "unrealizedPL"),
		LiquidationPrice: firstFloat(pos, "liquidation_price", "liq_price", "liquidationPrice"),
	}
}
