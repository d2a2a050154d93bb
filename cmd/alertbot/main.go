package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cryptointel/internal/alerts"
	"cryptointel/internal/api/binance"
	"cryptointel/internal/api/coinmarketcap"
	"cryptointel/internal/calculate"
	"cryptointel/internal/config"
	"cryptointel/internal/database"
	"cryptointel/internal/engine"
	"cryptointel/internal/fibonacci"
	"cryptointel/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")

	alertEngine := alerts.NewEngine(time.Duration(cfg.AlertCooldownMin) * time.Minute)

	var db *database.DB
	if cfg.DBHost != "" {
		db, err = database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Database unavailable, history disabled")
		} else {
			defer db.Close()
			alertEngine.SetHistory(db)
		}
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := bot.GetUpdatesChan(updateConfig)

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		handleCommand(bot, update.Message, cfg, alertEngine, db)
	}
}

func handleCommand(bot *tgbotapi.BotAPI, message *tgbotapi.Message, cfg *config.Config, alertEngine *alerts.Engine, db *database.DB) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		reply(bot, chatID, "Bienvenido a CryptoIntel. Usa /analizar SYMBOL para una decisión de trading, /historial SYMBOL para las últimas decisiones o /alertas para ver las alertas activas.")

	case "analizar":
		symbol := strings.ToUpper(strings.TrimSpace(message.CommandArguments()))
		if symbol == "" {
			symbol = cfg.Symbol
		}
		reply(bot, chatID, fmt.Sprintf("Analizando %s...", symbol))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		decision, err := runAnalysis(ctx, cfg, symbol)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("Analysis failed")
			reply(bot, chatID, "No se pudo completar el análisis. Inténtalo de nuevo más tarde.")
			return
		}
		reply(bot, chatID, formatDecision(decision))

	case "historial":
		if db == nil {
			reply(bot, chatID, "El historial no está disponible sin base de datos.")
			return
		}
		symbol := strings.ToUpper(strings.TrimSpace(message.CommandArguments()))
		if symbol == "" {
			symbol = cfg.Symbol
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		decisions, err := db.RecentDecisions(ctx, symbol, 5)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load decision history")
			reply(bot, chatID, "No se pudo consultar el historial.")
			return
		}
		if len(decisions) == 0 {
			reply(bot, chatID, fmt.Sprintf("Sin decisiones registradas para %s.", symbol))
			return
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Últimas decisiones de %s:\n", symbol)
		for _, d := range decisions {
			fmt.Fprintf(&b, "• %s %s (%.0f%%)\n", d.GeneratedAt.Format("02/01 15:04"), d.Decision, d.Confidence)
		}
		reply(bot, chatID, b.String())

	case "alertas":
		var b strings.Builder
		rules := alertEngine.Rules()
		if len(rules) == 0 {
			b.WriteString("No hay alertas activas.\n")
		} else {
			b.WriteString("Alertas activas:\n")
			for _, r := range rules {
				fmt.Fprintf(&b, "• %s [%s] %s\n", r.Symbol, r.Priority, r.ID)
			}
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if events, err := db.AlertHistory(ctx, cfg.Symbol, 5); err == nil && len(events) > 0 {
				b.WriteString("\nÚltimas disparadas:\n")
				for _, ev := range events {
					fmt.Fprintf(&b, "• %s %s [%s] $%.2f\n", ev.TriggeredAt.Format("02/01 15:04"), ev.Symbol, ev.Priority, ev.Price)
				}
			}
		}
		reply(bot, chatID, b.String())

	default:
		reply(bot, chatID, "Comando no reconocido. Usa /analizar o /alertas.")
	}
}

// runAnalysis executes the full pipeline for one symbol on demand.
func runAnalysis(ctx context.Context, cfg *config.Config, symbol string) (models.TradingDecision, error) {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	binanceClient := binance.NewClient(binance.ClientOptions{
		RequestTimeout: timeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	candles, err := binanceClient.GetCandles(ctx, symbol, cfg.Interval, cfg.CandleCount)
	if err != nil {
		return models.TradingDecision{}, fmt.Errorf("fetching candles: %w", err)
	}

	price := candles[len(candles)-1].Close
	change24h := 0.0
	if cfg.CMCAPIKey != "" && cfg.CMCAPIKey != "-" {
		cmcClient := coinmarketcap.NewClient(coinmarketcap.ClientOptions{
			APIKey:         cfg.CMCAPIKey,
			RequestTimeout: timeout,
			RequestsPerSec: cfg.RequestsPerSec,
		})
		if quote, err := cmcClient.GetQuote(ctx, symbol); err == nil {
			price = quote.Price
			change24h = quote.PercentChange24h
		}
	}

	indicators := calculate.BuildIndicatorSet(candles, cfg)
	highs, lows := calculate.RecentExtremes(candles, cfg.ExtremesLookback)
	trend, _, _, ok := fibonacci.AnalyzePriceStructure(highs, lows)
	if !ok {
		trend = models.TrendNeutral
	}

	eng := engine.New(engine.DefaultParams())
	return eng.GenerateDecision(models.AnalysisInput{
		Snapshot: models.MarketSnapshot{
			Symbol:        symbol,
			CurrentPrice:  price,
			RecentHighs:   highs,
			RecentLows:    lows,
			ATR:           indicators.Value(models.IndATR, 0),
			Trend:         trend,
			TrendStrength: math.Min(1, math.Abs(change24h)/10),
		},
		Indicators: indicators,
		Sentiment: models.SentimentInput{
			PositiveMentions: cfg.SentimentPositive,
			NegativeMentions: cfg.SentimentNegative,
		},
		OnChain: models.OnChainInput{
			InstitutionalActivity: cfg.OnChainActivity,
			WhaleBehavior:         cfg.WhaleBehavior,
		},
		Capital: cfg.Capital,
	}), nil
}

func formatDecision(d models.TradingDecision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 %s: %s (%.2f%%)\n%s\n", d.Symbol, d.Decision, d.Confidence, d.Explanation)
	if !d.Levels.IsZero() {
		fmt.Fprintf(&b, "\nEntrada: %.8f\nStop loss: %.8f\nTake profit: %.8f\n",
			d.Levels.Entry, d.Levels.StopLoss, d.Levels.TakeProfit)
	}
	if d.Risk.PositionSize > 0 {
		fmt.Fprintf(&b, "Posición: %.8f unidades (riesgo $%.2f)\n",
			d.Risk.PositionSize, d.Risk.CapitalAtRisk)
	}
	fmt.Fprintf(&b, "\nTécnica %.2f / Sentimiento %.2f / On-chain %.2f",
		d.Breakdown.Technical, d.Breakdown.Sentiment, d.Breakdown.OnChain)
	return b.String()
}

func reply(bot *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := bot.Send(msg); err != nil {
		log.Error().Err(err).Msg("Failed to send message")
	}
}
