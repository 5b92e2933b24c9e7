package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	NodeEnv        string
	WeexAPIKey     string
	WeexSecretKey  string
	WeexPassphrase string
	WeexBaseURL    string

	CoinGeckoBaseURL string

	MongoURI string

	TelegramBotToken string
	TelegramChatID   string

	// Coin the automation loop trades. The web/CLI layer resolves the active
	// coin; everything in internal/ takes the coin as an explicit parameter.
	DefaultCoin string

	AutomationSchedule string
	ScanSchedule       string
}

var AppConfig *Config

// Load reads environment variables and initializes the global config
func Load() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	AppConfig = &Config{
		NodeEnv:            getEnv("NODE_ENV", "development"),
		WeexAPIKey:         getEnv("WEEX_API_KEY", ""),
		WeexSecretKey:      getEnv("WEEX_SECRET_KEY", ""),
		WeexPassphrase:     getEnv("WEEX_PASSPHRASE", ""),
		WeexBaseURL:        getEnv("WEEX_BASE_URL", "https://api-contract.weex.com"),
		CoinGeckoBaseURL:   getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017/regimeforge"),
		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:     getEnv("TELEGRAM_CHAT_ID", ""),
		DefaultCoin:        getEnv("DEFAULT_COIN", "BTC"),
		AutomationSchedule: getEnv("AUTOMATION_SCHEDULE", "@every 30s"),
		ScanSchedule:       getEnv("SCAN_SCHEDULE", "@every 1m"),
	}

	log.Println("✅ Configuration loaded successfully")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
