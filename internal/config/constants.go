package config

// ========================================
// SIGNAL THRESHOLDS
// ========================================

// Price position within the 24h range (0-100)
const (
	StrongSupportThreshold    = 20.0
	SupportThreshold          = 35.0
	StrongResistanceThreshold = 80.0
	ResistanceThreshold       = 65.0
)

// Rule weights
const (
	StrongSignalScore   = 4
	ModerateSignalScore = 2
	WeakSignalScore     = 1
)

// Volatility (24h range as % of price)
const (
	HighVolatilityThreshold    = 4.0
	LowVolatilityThreshold     = 1.0
	ExtremeVolatilityThreshold = 5.0
)

// Trend / RSI regime gates
const (
	BullTrendThreshold = 0.6
	BearTrendThreshold = -0.6
	RSIBullThreshold   = 55.0
	RSIBearThreshold   = 45.0
)

// 24h percent-change tiers
const (
	StrongOversoldThreshold   = -3.0
	MildOversoldThreshold     = -1.0
	StrongOverboughtThreshold = 3.0
	MildOverboughtThreshold   = 1.0
)

// Global-context (CoinGecko) scoring
const (
	DominanceHighThreshold = 60.0
	DominanceLowThreshold  = 40.0
	Trend7dRallyThreshold  = 15.0
	Trend7dSlumpThreshold  = -15.0
)

// Confidence bounds
const (
	MaxConfidence        = 0.92
	MinConfidence        = 0.35
	BaseConfidence       = 0.55
	ConfidenceIncrement  = 0.04
	SignalScoreThreshold = 3
	SideConfidenceCap    = 0.85
	NeutralConfidence    = 0.45
	SentimentAlignBonus  = 1.05
)

// Trailing take-profit arms once peak profit crosses this percent
const TrailingActivationThreshold = 0.3

const ModelVersion = "RegimeForge-Alpha-v1.0.0"

// AI log explanations are truncated to this many characters before upload
const ExplanationMaxChars = 1000

// ========================================
// SUPPORTED TRADING PAIRS
// ========================================

// SupportedCoins maps coin symbols to WEEX contract symbols
var SupportedCoins = map[string]string{
	"BTC":  "cmt_btcusdt",
	"ETH":  "cmt_ethusdt",
	"SOL":  "cmt_solusdt",
	"XRP":  "cmt_xrpusdt",
	"BNB":  "cmt_bnbusdt",
	"ADA":  "cmt_adausdt",
	"DOGE": "cmt_dogeusdt",
	"LTC":  "cmt_ltcusdt",
}

// CoinOrder keeps iteration deterministic for bulk operations
var CoinOrder = []string{"BTC", "ETH", "SOL", "XRP", "BNB", "ADA", "DOGE", "LTC"}

// CoinDecimals holds lot-step precision per coin (WEEX requirements).
// BTC stepSize is 0.001 (3 decimals), not 0.0001.
var CoinDecimals = map[string]int32{
	"BTC":  3,
	"ETH":  3,
	"SOL":  2,
	"XRP":  1,
	"BNB":  3,
	"ADA":  1,
	"DOGE": 0,
	"LTC":  3,
}

const DefaultSymbol = "cmt_btcusdt"

// Symbol returns the contract symbol for a coin, defaulting to BTC
func Symbol(coin string) string {
	if s, ok := SupportedCoins[coin]; ok {
		return s
	}
	return DefaultSymbol
}
