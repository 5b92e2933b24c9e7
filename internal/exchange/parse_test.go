package exchange

import (
	"math"
	"testing"
)

func TestParseTicker(t *testing.T) {
	ticker := map[string]interface{}{
		"data": map[string]interface{}{
			"last":               "100000.5",
			"high_24h":           102000.0,
			"low_24h":            "98000",
			"base_volume":        1234.5,
			"priceChangePercent": -2.5,
		},
	}

	got := ParseTicker(ticker)
	if got.Price != 100000.5 {
		t.Fatalf("Price = %v, want 100000.5", got.Price)
	}
	if got.High24h != 102000 || got.Low24h != 98000 {
		t.Fatalf("High/Low = %v/%v, want 102000/98000", got.High24h, got.Low24h)
	}
	if got.ChangePct != -2.5 {
		t.Fatalf("ChangePct = %v, want -2.5", got.ChangePct)
	}
}

func TestParseTickerMissingRangeDefaults(t *testing.T) {
	ticker := map[string]interface{}{"last": "50000"}

	got := ParseTicker(ticker)
	if math.Abs(got.High24h-51000) > 1e-6 {
		t.Fatalf("High24h = %v, want 51000 (price +2%%)", got.High24h)
	}
	if math.Abs(got.Low24h-49000) > 1e-6 {
		t.Fatalf("Low24h = %v, want 49000 (price -2%%)", got.Low24h)
	}
}

func TestParseDepth(t *testing.T) {
	tests := []struct {
		name    string
		depth   map[string]interface{}
		wantBid float64
		wantAsk float64
	}{
		{
			name: "array levels",
			depth: map[string]interface{}{
				"data": map[string]interface{}{
					"bids": []interface{}{[]interface{}{"99999.5", "1.2"}},
					"asks": []interface{}{[]interface{}{100000.5, 0.8}},
				},
			},
			wantBid: 99999.5,
			wantAsk: 100000.5,
		},
		{
			name: "object levels",
			depth: map[string]interface{}{
				"bids": []interface{}{map[string]interface{}{"price": 99998.0}},
				"asks": []interface{}{map[string]interface{}{"price": "100002"}},
			},
			wantBid: 99998,
			wantAsk: 100002,
		},
		{
			name:    "empty book falls back to price",
			depth:   map[string]interface{}{},
			wantBid: 100000,
			wantAsk: 100000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bid, ask := ParseDepth(tt.depth, 100000)
			if bid != tt.wantBid || ask != tt.wantAsk {
				t.Fatalf("ParseDepth() = %v/%v, want %v/%v", bid, ask, tt.wantBid, tt.wantAsk)
			}
		})
	}
}

func TestBuildSnapshotSpread(t *testing.T) {
	ticker := map[string]interface{}{"last": 100000.0, "high_24h": 102000.0, "low_24h": 98000.0}
	depth := map[string]interface{}{
		"bids": []interface{}{[]interface{}{99990.0, 1.0}},
		"asks": []interface{}{[]interface{}{100010.0, 1.0}},
	}

	snapshot := BuildSnapshot(ticker, depth)
	if math.Abs(snapshot.SpreadPct-0.02) > 1e-9 {
		t.Fatalf("SpreadPct = %v, want 0.02", snapshot.SpreadPct)
	}
}

func TestExtractOrderID(t *testing.T) {
	tests := []struct {
		name   string
		result map[string]interface{}
		want   string
	}{
		{"top level snake", map[string]interface{}{"order_id": "123"}, "123"},
		{"top level camel", map[string]interface{}{"orderId": "456"}, "456"},
		{"nested under data", map[string]interface{}{"data": map[string]interface{}{"order_id": "789"}}, "789"},
		{"bare data string", map[string]interface{}{"data": "987654"}, "987654"},
		{"numeric id", map[string]interface{}{"orderId": 123456789.0}, "123456789"},
		{"missing", map[string]interface{}{"code": "00000"}, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractOrderID(tt.result); got != tt.want {
				t.Fatalf("ExtractOrderID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePosition(t *testing.T) {
	payload := map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{
				"size":           "0.5",
				"open_value":     50000.0,
				"side":           "long",
				"leverage":       10.0,
				"unrealized_pnl": 12.5,
			},
		},
	}

	got := ParsePosition(payload, "BTC", "cmt_btcusdt")
	if got == nil {
		t.Fatal("ParsePosition() = nil, want position")
	}
	if got.EntryPrice != 100000 {
		t.Fatalf("EntryPrice = %v, want 100000 (open value / size)", got.EntryPrice)
	}
	if got.Side != "LONG" {
		t.Fatalf("Side = %v, want LONG", got.Side)
	}
	if got.Leverage != 10 {
		t.Fatalf("Leverage = %v, want 10", got.Leverage)
	}
}

func TestParsePositionEmpty(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"nil payload", nil},
		{"no records", map[string]interface{}{"data": []interface{}{}}},
		{"zero size", map[string]interface{}{"data": []interface{}{
			map[string]interface{}{"size": 0.0, "open_value": 0.0},
		}}},
		{"error payload", map[string]interface{}{"error": "timeout", "status": 408.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePosition(tt.payload, "BTC", "cmt_btcusdt"); got != nil {
				t.Fatalf("ParsePosition() = %+v, want nil", got)
			}
		})
	}
}

func TestFloatCoercion(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
	}{
		{42.5, 42.5},
		{"42.5", 42.5},
		{" 7 ", 7},
		{"not a number", 0},
		{nil, 0},
		{true, 0},
	}

	for _, tt := range tests {
		if got := Float(tt.in); got != tt.want {
			t.Fatalf("Float(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
