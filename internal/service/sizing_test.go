package service

import "testing"

func TestCalculateOrderSize(t *testing.T) {
	tests := []struct {
		name     string
		coin     string
		notional float64
		price    float64
		want     float64
	}{
		{"btc floors to 3 decimals", "BTC", 600, 98100, 0.006},
		{"doge floors to whole units", "DOGE", 600, 0.135, 4444},
		{"xrp floors to 1 decimal", "XRP", 600, 2.37, 253.1},
		{"zero price", "BTC", 600, 0, 0},
		{"zero notional", "BTC", 0, 98100, 0},
		{"unknown coin uses 4 decimals", "PEPE", 100, 3, 33.3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateOrderSize(tt.coin, tt.notional, tt.price); got != tt.want {
				t.Fatalf("CalculateOrderSize(%s, %v, %v) = %v, want %v",
					tt.coin, tt.notional, tt.price, got, tt.want)
			}
		})
	}
}

func TestFormatCoinSize(t *testing.T) {
	tests := []struct {
		coin string
		size float64
		want string
	}{
		{"BTC", 0.0065, "0.006"},
		{"DOGE", 4444.9, "4444"},
		{"SOL", 3.456, "3.45"},
	}

	for _, tt := range tests {
		if got := FormatCoinSize(tt.coin, tt.size); got != tt.want {
			t.Fatalf("FormatCoinSize(%s, %v) = %q, want %q", tt.coin, tt.size, got, tt.want)
		}
	}
}
