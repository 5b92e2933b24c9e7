package service

import (
	"github.com/shopspring/decimal"

	"regimeforge-go/internal/config"
)

// CalculateOrderSize converts a notional (margin x leverage) into a contract
// size at the given price, floored to the coin's size precision so the
// exchange never rejects on step violations.
func CalculateOrderSize(coin string, notionalUSDT, price float64) float64 {
	if price <= 0 || notionalUSDT <= 0 {
		return 0
	}

	decimals, ok := config.CoinDecimals[coin]
	if !ok {
		decimals = 4
	}

	size := decimal.NewFromFloat(notionalUSDT).
		Div(decimal.NewFromFloat(price)).
		RoundFloor(decimals)

	f, _ := size.Float64()
	return f
}

// FormatCoinSize renders a size with the coin's precision, trimming nothing:
// the exchange expects fixed decimal places per instrument.
func FormatCoinSize(coin string, size float64) string {
	decimals, ok := config.CoinDecimals[coin]
	if !ok {
		decimals = 4
	}
	return decimal.NewFromFloat(size).RoundFloor(decimals).StringFixed(decimals)
}
