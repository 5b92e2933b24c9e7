package model

// Verdict represents the direction of a trading signal
type Verdict string

const (
	VerdictLong    Verdict = "LONG"
	VerdictShort   Verdict = "SHORT"
	VerdictNeutral Verdict = "NEUTRAL"
)

// MarketRegime represents the coarse market condition classification
type MarketRegime string

const (
	RegimeBullTrending   MarketRegime = "BULL_TRENDING"
	RegimeBearTrending   MarketRegime = "BEAR_TRENDING"
	RegimeRangeBound     MarketRegime = "RANGE_BOUND"
	RegimeHighVolatility MarketRegime = "HIGH_VOLATILITY"
	RegimeLowVolatility  MarketRegime = "LOW_VOLATILITY"
)

// Signal is an engine-generated trading signal. Immutable once returned.
type Signal struct {
	Signal          Verdict            `json:"signal" bson:"signal"`
	Confidence      float64            `json:"confidence" bson:"confidence"`
	Regime          MarketRegime       `json:"regime" bson:"regime"`
	Reasoning       []string           `json:"reasoning" bson:"reasoning"`
	Indicators      map[string]float64 `json:"indicators" bson:"indicators"`
	RecommendedSize string             `json:"recommended_size" bson:"recommended_size"`
}

// MarketSummary is the global-context view used to bias signal scoring.
// A failed context fetch degrades to NeutralMarketSummary, never an error.
type MarketSummary struct {
	BTCDominance      float64  `json:"btc_dominance"`
	Sentiment         string   `json:"market_sentiment"`
	MarketCapChange24 float64  `json:"market_cap_change_24h"`
	PriceChange7d     float64  `json:"price_change_7d"`
	IsTrending        bool     `json:"current_coin_trending"`
	TrendingCoins     []string `json:"trending_coins"`
}

// Sentiment labels derived from 24h global market-cap change
const (
	SentimentBullish         = "BULLISH"
	SentimentSlightlyBullish = "SLIGHTLY_BULLISH"
	SentimentNeutral         = "NEUTRAL"
	SentimentSlightlyBearish = "SLIGHTLY_BEARISH"
	SentimentBearish         = "BEARISH"
	SentimentUnknown         = "UNKNOWN"
)

// NeutralMarketSummary returns the defaults substituted when the context
// provider is unavailable
func NeutralMarketSummary() MarketSummary {
	return MarketSummary{Sentiment: SentimentUnknown}
}
