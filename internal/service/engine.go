package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/exchange"
	"regimeforge-go/internal/model"
)

// MarketAPI is the slice of the exchange client the engine needs
type MarketAPI interface {
	GetTicker(ctx context.Context, symbol string) map[string]interface{}
	GetDepth(ctx context.Context, symbol string) map[string]interface{}
}

// Engine detects market regimes and generates smoothed trading signals.
//
// Signal history and the result cache live for the process but are scoped to
// one instrument at a time: Reset must be called whenever the active coin
// changes or smoothing bleeds across instruments. Calls are not safe for
// concurrent use; the caller serializes decision cycles.
type Engine struct {
	client  MarketAPI
	context ContextProvider

	lastSignal    model.Verdict
	signalHistory []model.Verdict

	cachedSignal *model.Signal
	cachedAt     time.Time

	now func() time.Time
}

// NewEngine creates a signal engine
func NewEngine(client MarketAPI, contextProvider ContextProvider) *Engine {
	return &Engine{
		client:     client,
		context:    contextProvider,
		lastSignal: model.VerdictNeutral,
		now:        time.Now,
	}
}

// FetchMarketData fetches ticker and depth for a coin and builds a snapshot.
// Transport failures degrade to a default-valued snapshot rather than an
// error.
func (e *Engine) FetchMarketData(ctx context.Context, coin string) model.MarketSnapshot {
	symbol := config.Symbol(coin)
	ticker := e.client.GetTicker(ctx, symbol)
	depth := e.client.GetDepth(ctx, symbol)
	return exchange.BuildSnapshot(ticker, depth)
}

func (e *Engine) fetchContext(ctx context.Context, coin string) model.MarketSummary {
	if e.context == nil {
		return model.NeutralMarketSummary()
	}
	summary, err := e.context.GetMarketSummary(ctx, coin)
	if err != nil {
		log.Printf("⚠️  [Engine] Global context unavailable, using neutral defaults: %v", err)
		return model.NeutralMarketSummary()
	}
	return summary
}

// detectRegime classifies the market condition. Checks run in fixed priority
// order; first match wins.
func detectRegime(rsi, volatility, trendStrength float64) model.MarketRegime {
	switch {
	case volatility > config.HighVolatilityThreshold:
		return model.RegimeHighVolatility
	case volatility < config.LowVolatilityThreshold:
		return model.RegimeLowVolatility
	case trendStrength > config.BullTrendThreshold && rsi > config.RSIBullThreshold:
		return model.RegimeBullTrending
	case trendStrength < config.BearTrendThreshold && rsi < config.RSIBearThreshold:
		return model.RegimeBearTrending
	default:
		return model.RegimeRangeBound
	}
}

// Analyze runs one full analysis cycle and returns a signal. force overrides
// the final verdict for user-requested trades (empty means no override).
func (e *Engine) Analyze(ctx context.Context, coin string, force model.Verdict) *model.Signal {
	market := e.FetchMarketData(ctx, coin)
	summary := e.fetchContext(ctx, coin)

	pricePosition := market.PricePosition()
	volatilityPct := market.VolatilityPct()

	change24h := market.Change24hPct
	// Some ticker shapes report the 24h change as a fraction
	if math.Abs(change24h) < 1 {
		change24h = change24h * 100
	}

	// The "rsi" here is a reuse of 24h range position, not a real RSI.
	// Downstream thresholds are tuned against this quantity; do not swap in
	// a textbook RSI.
	rsiEstimate := pricePosition
	trendStrength := ClampFloat64(change24h/5, -1, 1)

	indicators := map[string]float64{
		"rsi":                round1(rsiEstimate),
		"price_position_pct": round1(pricePosition),
		"volatility_pct":     round2(volatilityPct),
		"trend_strength":     round2(trendStrength),
		"spread_pct":         round4(market.SpreadPct),
		"price_change_24h":   round2(change24h),
		"high_24h":           market.High24h,
		"low_24h":            market.Low24h,
		"btc_dominance":      round1(summary.BTCDominance),
		"price_change_7d":    round2(summary.PriceChange7d),
	}

	regime := detectRegime(rsiEstimate, volatilityPct, trendStrength)

	var reasoning []string
	longScore := 0
	shortScore := 0

	// Global sentiment
	switch summary.Sentiment {
	case model.SentimentBullish:
		longScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Global market bullish (cap %+.1f%% 24h)", summary.MarketCapChange24))
	case model.SentimentSlightlyBullish:
		longScore += config.WeakSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Global market slightly bullish (cap %+.1f%% 24h)", summary.MarketCapChange24))
	case model.SentimentBearish:
		shortScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Global market bearish (cap %+.1f%% 24h)", summary.MarketCapChange24))
	case model.SentimentSlightlyBearish:
		shortScore += config.WeakSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Global market slightly bearish (cap %+.1f%% 24h)", summary.MarketCapChange24))
	}

	// BTC dominance extremes only matter for altcoins
	if coin != "BTC" && summary.BTCDominance > 0 {
		if summary.BTCDominance > config.DominanceHighThreshold {
			shortScore += config.WeakSignalScore
			reasoning = append(reasoning, fmt.Sprintf("BTC dominance high (%.1f%%) - altcoins may underperform", summary.BTCDominance))
		} else if summary.BTCDominance < config.DominanceLowThreshold {
			longScore += config.WeakSignalScore
			reasoning = append(reasoning, fmt.Sprintf("BTC dominance low (%.1f%%) - altcoin season potential", summary.BTCDominance))
		}
	}

	// 7-day trend extremes, mean-reversion framing
	if summary.PriceChange7d > config.Trend7dRallyThreshold {
		shortScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Strong 7d rally (%+.1f%%) - reversion risk", summary.PriceChange7d))
	} else if summary.PriceChange7d < config.Trend7dSlumpThreshold {
		longScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Strong 7d decline (%+.1f%%) - reversion potential", summary.PriceChange7d))
	}

	if summary.IsTrending {
		longScore += config.WeakSignalScore
		reasoning = append(reasoning, fmt.Sprintf("%s is trending on CoinGecko - elevated attention", coin))
	}

	// Price position within 24h range
	switch {
	case pricePosition < config.StrongSupportThreshold:
		longScore += config.StrongSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Price near 24h low (%.0f%%) - strong support zone", pricePosition))
	case pricePosition < config.SupportThreshold:
		longScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Price in lower 24h range (%.0f%%) - potential bounce", pricePosition))
	case pricePosition > config.StrongResistanceThreshold:
		shortScore += config.StrongSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Price near 24h high (%.0f%%) - strong resistance zone", pricePosition))
	case pricePosition > config.ResistanceThreshold:
		shortScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("Price in upper 24h range (%.0f%%) - potential pullback", pricePosition))
	default:
		reasoning = append(reasoning, fmt.Sprintf("Price mid-range (%.0f%%) - no clear direction", pricePosition))
	}

	// 24h change tiers
	switch {
	case change24h < config.StrongOversoldThreshold:
		longScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("24h down %.1f%% - oversold, reversal potential", change24h))
	case change24h < config.MildOversoldThreshold:
		longScore += config.WeakSignalScore
		reasoning = append(reasoning, fmt.Sprintf("24h slightly down %.1f%%", change24h))
	case change24h > config.StrongOverboughtThreshold:
		shortScore += config.ModerateSignalScore
		reasoning = append(reasoning, fmt.Sprintf("24h up %.1f%% - overbought, pullback potential", change24h))
	case change24h > config.MildOverboughtThreshold:
		shortScore += config.WeakSignalScore
		reasoning = append(reasoning, fmt.Sprintf("24h slightly up %.1f%%", change24h))
	}

	// Volatility note, no score effect
	if volatilityPct > config.ExtremeVolatilityThreshold {
		reasoning = append(reasoning, fmt.Sprintf("High volatility (%.1f%%) - increased risk", volatilityPct))
	} else if volatilityPct < 1.5 {
		reasoning = append(reasoning, fmt.Sprintf("Low volatility (%.1f%%) - consolidation phase", volatilityPct))
	}

	// Raw verdict from score difference
	scoreDiff := longScore - shortScore
	rawSignal := model.VerdictNeutral
	confidence := config.NeutralConfidence

	if scoreDiff >= config.SignalScoreThreshold {
		rawSignal = model.VerdictLong
		confidence = math.Min(config.SideConfidenceCap, config.BaseConfidence+float64(scoreDiff)*config.ConfidenceIncrement)
	} else if scoreDiff <= -config.SignalScoreThreshold {
		rawSignal = model.VerdictShort
		confidence = math.Min(config.SideConfidenceCap, config.BaseConfidence+math.Abs(float64(scoreDiff))*config.ConfidenceIncrement)
	}

	// Record raw verdict, capped FIFO
	e.signalHistory = append(e.signalHistory, rawSignal)
	if len(e.signalHistory) > 10 {
		e.signalHistory = e.signalHistory[len(e.signalHistory)-10:]
	}

	signal, reasoning := e.smoothSignal(rawSignal, pricePosition, reasoning)
	e.lastSignal = signal

	// Regime confidence adjustment
	switch regime {
	case model.RegimeHighVolatility:
		confidence *= 0.85
		reasoning = append(reasoning, fmt.Sprintf("High volatility (%.1f%%) - reduced confidence", volatilityPct))
	case model.RegimeLowVolatility:
		confidence *= 0.90
		reasoning = append(reasoning, fmt.Sprintf("Low volatility (%.1f%%) - range-bound market", volatilityPct))
	}

	// Sentiment alignment bonus
	if signalAlignsWithSentiment(signal, summary.Sentiment) {
		confidence *= config.SentimentAlignBonus
		reasoning = append(reasoning, fmt.Sprintf("Signal aligned with global %s sentiment", summary.Sentiment))
	}

	// Forced signal for user-requested trades
	if force == model.VerdictLong || force == model.VerdictShort {
		original := signal
		signal = force
		if original != force {
			reasoning = append([]string{fmt.Sprintf("User requested %s (AI suggested %s)", signal, original)}, reasoning...)
		} else {
			reasoning = append([]string{fmt.Sprintf("AI confirms %s signal", signal)}, reasoning...)
		}
	}

	confidence = ClampFloat64(confidence, config.MinConfidence, config.MaxConfidence)

	if len(reasoning) == 0 {
		reasoning = append(reasoning, "Market conditions neutral")
	}

	log.Printf("🤖 [Engine] %s: %s (%.0f%% conf, %s)", coin, signal, confidence*100, regime)

	return &model.Signal{
		Signal:          signal,
		Confidence:      round2(confidence),
		Regime:          regime,
		Reasoning:       reasoning,
		Indicators:      indicators,
		RecommendedSize: "0.001",
	}
}

// smoothSignal damps raw verdicts with recent history to avoid whipsaws
func (e *Engine) smoothSignal(raw model.Verdict, pricePosition float64, reasoning []string) (model.Verdict, []string) {
	// Extreme price positions bypass smoothing entirely
	if pricePosition < config.StrongSupportThreshold && raw == model.VerdictLong {
		reasoning = append([]string{fmt.Sprintf("⚡ Strong buy zone (RSI %.0f%%) - immediate signal", pricePosition)}, reasoning...)
		return model.VerdictLong, reasoning
	}
	if pricePosition > config.StrongResistanceThreshold && raw == model.VerdictShort {
		reasoning = append([]string{fmt.Sprintf("⚡ Strong sell zone (RSI %.0f%%) - immediate signal", pricePosition)}, reasoning...)
		return model.VerdictShort, reasoning
	}

	if len(e.signalHistory) < 5 {
		return raw, reasoning
	}

	recent := e.signalHistory[len(e.signalHistory)-5:]
	if countVerdict(recent, raw) >= 4 {
		return raw, reasoning
	}
	if countVerdict(recent, e.lastSignal) >= 2 {
		if raw != e.lastSignal {
			reasoning = append(reasoning, fmt.Sprintf("Maintaining %s (awaiting confirmation)", e.lastSignal))
		}
		return e.lastSignal, reasoning
	}
	return model.VerdictNeutral, reasoning
}

func countVerdict(verdicts []model.Verdict, v model.Verdict) int {
	n := 0
	for _, x := range verdicts {
		if x == v {
			n++
		}
	}
	return n
}

func signalAlignsWithSentiment(signal model.Verdict, sentiment string) bool {
	switch signal {
	case model.VerdictLong:
		return sentiment == model.SentimentBullish || sentiment == model.SentimentSlightlyBullish
	case model.VerdictShort:
		return sentiment == model.SentimentBearish || sentiment == model.SentimentSlightlyBearish
	default:
		return false
	}
}

// GetCachedSignal returns the cached signal when younger than maxAge,
// otherwise recomputes and refreshes the cache
func (e *Engine) GetCachedSignal(ctx context.Context, coin string, maxAge time.Duration) *model.Signal {
	if e.cachedSignal != nil && e.now().Sub(e.cachedAt) < maxAge {
		return e.cachedSignal
	}

	signal := e.Analyze(ctx, coin, "")
	e.cachedSignal = signal
	e.cachedAt = e.now()
	return signal
}

// Reset clears history, smoothing state and the cache. Must be called when
// the active coin changes.
func (e *Engine) Reset() {
	e.signalHistory = nil
	e.lastSignal = model.VerdictNeutral
	e.cachedSignal = nil
	e.cachedAt = time.Time{}
}

// History returns a copy of the raw verdict history (newest last)
func (e *Engine) History() []model.Verdict {
	out := make([]model.Verdict, len(e.signalHistory))
	copy(out, e.signalHistory)
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
