package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/model"
)

// ContextProvider supplies the global-market summary used to bias signal
// scoring. Implementations should fail with an error; callers substitute
// model.NeutralMarketSummary.
type ContextProvider interface {
	GetMarketSummary(ctx context.Context, coin string) (model.MarketSummary, error)
}

// coinGeckoIDs maps coin symbols to CoinGecko identifiers
var coinGeckoIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"XRP":  "ripple",
	"BNB":  "binancecoin",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"LTC":  "litecoin",
}

// Cache TTLs chosen for the CoinGecko free tier (30 calls/minute)
const (
	cacheTTLGlobal   = 2 * time.Minute
	cacheTTLCoins    = 1 * time.Minute
	cacheTTLTrending = 5 * time.Minute
)

type cacheEntry struct {
	value     interface{}
	fetchedAt time.Time
}

// CoinGeckoService fetches global market context with response caching
type CoinGeckoService struct {
	http *resty.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCoinGeckoService creates a CoinGecko client from the loaded config
func NewCoinGeckoService() *CoinGeckoService {
	http := resty.New()
	http.SetBaseURL(config.AppConfig.CoinGeckoBaseURL)
	http.SetTimeout(10 * time.Second)

	return &CoinGeckoService{
		http:  http,
		cache: make(map[string]cacheEntry),
	}
}

func (s *CoinGeckoService) getCached(key string, ttl time.Duration) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok || time.Since(entry.fetchedAt) >= ttl {
		return nil, false
	}
	return entry.value, true
}

func (s *CoinGeckoService) setCached(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{value: value, fetchedAt: time.Now()}
}

// globalData is the subset of GET /global we use
type globalData struct {
	BTCDominance      float64
	MarketCapChange24 float64
}

// Sentiment derives a coarse market sentiment label from the 24h global
// market-cap change
func Sentiment(marketCapChange24 float64) string {
	switch {
	case marketCapChange24 > 3:
		return model.SentimentBullish
	case marketCapChange24 > 1:
		return model.SentimentSlightlyBullish
	case marketCapChange24 < -3:
		return model.SentimentBearish
	case marketCapChange24 < -1:
		return model.SentimentSlightlyBearish
	default:
		return model.SentimentNeutral
	}
}

func (s *CoinGeckoService) getGlobal(ctx context.Context) (globalData, error) {
	if cached, ok := s.getCached("global", cacheTTLGlobal); ok {
		return cached.(globalData), nil
	}

	var payload struct {
		Data struct {
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
			MarketCapChange24h  float64            `json:"market_cap_change_percentage_24h_usd"`
		} `json:"data"`
	}

	resp, err := s.http.R().SetContext(ctx).SetResult(&payload).Get("/global")
	if err != nil {
		return globalData{}, fmt.Errorf("coingecko global: %w", err)
	}
	if resp.StatusCode() != 200 {
		return globalData{}, fmt.Errorf("coingecko global: status %d", resp.StatusCode())
	}

	result := globalData{
		BTCDominance:      payload.Data.MarketCapPercentage["btc"],
		MarketCapChange24: payload.Data.MarketCapChange24h,
	}
	s.setCached("global", result)
	return result, nil
}

func (s *CoinGeckoService) getCoin7dChange(ctx context.Context, coin string) (float64, error) {
	id, ok := coinGeckoIDs[coin]
	if !ok {
		return 0, nil
	}

	cacheKey := "coin_" + coin
	if cached, ok := s.getCached(cacheKey, cacheTTLCoins); ok {
		return cached.(float64), nil
	}

	var payload []struct {
		Symbol        string  `json:"symbol"`
		PriceChange7d float64 `json:"price_change_percentage_7d_in_currency"`
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency":             "usd",
			"ids":                     id,
			"sparkline":               "false",
			"price_change_percentage": "24h,7d",
		}).
		SetResult(&payload).
		Get("/coins/markets")
	if err != nil {
		return 0, fmt.Errorf("coingecko markets: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("coingecko markets: status %d", resp.StatusCode())
	}
	if len(payload) == 0 {
		return 0, fmt.Errorf("coingecko markets: empty response for %s", coin)
	}

	change := payload[0].PriceChange7d
	s.setCached(cacheKey, change)
	return change, nil
}

func (s *CoinGeckoService) getTrending(ctx context.Context) ([]string, error) {
	if cached, ok := s.getCached("trending", cacheTTLTrending); ok {
		return cached.([]string), nil
	}

	var payload struct {
		Coins []struct {
			Item struct {
				Symbol string `json:"symbol"`
			} `json:"item"`
		} `json:"coins"`
	}

	resp, err := s.http.R().SetContext(ctx).SetResult(&payload).Get("/search/trending")
	if err != nil {
		return nil, fmt.Errorf("coingecko trending: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("coingecko trending: status %d", resp.StatusCode())
	}

	symbols := make([]string, 0, 10)
	for i, c := range payload.Coins {
		if i >= 10 {
			break
		}
		symbols = append(symbols, strings.ToUpper(c.Item.Symbol))
	}
	s.setCached("trending", symbols)
	return symbols, nil
}

// GetMarketSummary combines global, per-coin and trending data into the
// context summary the signal engine consumes
func (s *CoinGeckoService) GetMarketSummary(ctx context.Context, coin string) (model.MarketSummary, error) {
	global, err := s.getGlobal(ctx)
	if err != nil {
		return model.MarketSummary{}, err
	}

	change7d, err := s.getCoin7dChange(ctx, coin)
	if err != nil {
		log.Printf("⚠️  [CoinGecko] 7d change unavailable for %s: %v", coin, err)
		change7d = 0
	}

	trending, err := s.getTrending(ctx)
	if err != nil {
		log.Printf("⚠️  [CoinGecko] trending unavailable: %v", err)
		trending = nil
	}

	isTrending := false
	for _, t := range trending {
		if t == coin {
			isTrending = true
			break
		}
	}

	summary := model.MarketSummary{
		BTCDominance:      global.BTCDominance,
		Sentiment:         Sentiment(global.MarketCapChange24),
		MarketCapChange24: global.MarketCapChange24,
		PriceChange7d:     change7d,
		IsTrending:        isTrending,
		TrendingCoins:     trending,
	}

	log.Printf("🌍 [CoinGecko] BTC dom %.1f%%, sentiment %s, %s 7d %.1f%%",
		summary.BTCDominance, summary.Sentiment, coin, summary.PriceChange7d)
	return summary, nil
}

var _ ContextProvider = (*CoinGeckoService)(nil)
