package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	CMCAPIKey   string  `env:"CMC_API_KEY" envDefault:"-"`
	Symbol      string  `env:"SYMBOL" envDefault:"BTC"`
	Interval    string  `env:"INTERVAL" envDefault:"1h"`
	CandleCount int     `env:"CANDLE_COUNT" envDefault:"100"`
	Capital     float64 `env:"CAPITAL" envDefault:"10000"`

	// Inputs from the sentiment and on-chain collaborators; both default
	// to neutral when unset.
	SentimentPositive int    `env:"SENTIMENT_POSITIVE" envDefault:"0"`
	SentimentNegative int    `env:"SENTIMENT_NEGATIVE" envDefault:"0"`
	OnChainActivity   string `env:"ONCHAIN_ACTIVITY"`
	WhaleBehavior     string `env:"WHALE_BEHAVIOR"`

	RSIPeriod        int     `env:"RSI_PERIOD" envDefault:"14"`
	MACDFastPeriod   int     `env:"MACD_FAST_PERIOD" envDefault:"12"`
	MACDSlowPeriod   int     `env:"MACD_SLOW_PERIOD" envDefault:"26"`
	MACDSignalPeriod int     `env:"MACD_SIGNAL_PERIOD" envDefault:"9"`
	BBPeriod         int     `env:"BB_PERIOD" envDefault:"20"`
	BBStdDev         float64 `env:"BB_STD_DEV" envDefault:"2.0"`
	ATRPeriod        int     `env:"ATR_PERIOD" envDefault:"14"`
	MomentumPeriod   int     `env:"MOMENTUM_PERIOD" envDefault:"10"`
	ExtremesLookback int     `env:"EXTREMES_LOOKBACK" envDefault:"20"`

	BacktestCandles int `env:"BACKTEST_CANDLES" envDefault:"500"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec int    `env:"REQUESTS_PER_SEC" envDefault:"5"`

	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
	AlertWebhookURL  string `env:"ALERT_WEBHOOK_URL"`
	AlertCooldownMin int    `env:"ALERT_COOLDOWN_MIN" envDefault:"60"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.CMCAPIKey = os.Getenv("CMC_API_KEY")
	cfg.Symbol = getEnvWithDefault("SYMBOL", "BTC")
	cfg.Interval = getEnvWithDefault("INTERVAL", "1h")
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", 100)
	cfg.Capital = getEnvFloatWithDefault("CAPITAL", 10000)

	cfg.SentimentPositive = getEnvIntWithDefault("SENTIMENT_POSITIVE", 0)
	cfg.SentimentNegative = getEnvIntWithDefault("SENTIMENT_NEGATIVE", 0)
	cfg.OnChainActivity = os.Getenv("ONCHAIN_ACTIVITY")
	cfg.WhaleBehavior = os.Getenv("WHALE_BEHAVIOR")

	cfg.RSIPeriod = getEnvIntWithDefault("RSI_PERIOD", 14)
	cfg.MACDFastPeriod = getEnvIntWithDefault("MACD_FAST_PERIOD", 12)
	cfg.MACDSlowPeriod = getEnvIntWithDefault("MACD_SLOW_PERIOD", 26)
	cfg.MACDSignalPeriod = getEnvIntWithDefault("MACD_SIGNAL_PERIOD", 9)
	cfg.BBPeriod = getEnvIntWithDefault("BB_PERIOD", 20)
	cfg.BBStdDev = getEnvFloatWithDefault("BB_STD_DEV", 2.0)
	cfg.ATRPeriod = getEnvIntWithDefault("ATR_PERIOD", 14)
	cfg.MomentumPeriod = getEnvIntWithDefault("MOMENTUM_PERIOD", 10)
	cfg.ExtremesLookback = getEnvIntWithDefault("EXTREMES_LOOKBACK", 20)

	cfg.BacktestCandles = getEnvIntWithDefault("BACKTEST_CANDLES", 500)

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)

	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.AlertWebhookURL = os.Getenv("ALERT_WEBHOOK_URL")
	cfg.AlertCooldownMin = getEnvIntWithDefault("ALERT_COOLDOWN_MIN", 60)

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
