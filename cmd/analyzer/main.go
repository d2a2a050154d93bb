package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

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

	ctx := context.Background()
	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	// 1) Candles for indicators and price structure
	binanceClient := binance.NewClient(binance.ClientOptions{
		RequestTimeout: timeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	candles, err := binanceClient.GetCandles(ctx, cfg.Symbol, cfg.Interval, cfg.CandleCount)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch candles failed")
	}

	// 2) Market quote; optional, the candle close works without it
	price := candles[len(candles)-1].Close
	change24h := 0.0
	if cfg.CMCAPIKey != "" && cfg.CMCAPIKey != "-" {
		cmcClient := coinmarketcap.NewClient(coinmarketcap.ClientOptions{
			APIKey:         cfg.CMCAPIKey,
			RequestTimeout: timeout,
			RequestsPerSec: cfg.RequestsPerSec,
		})
		quote, err := cmcClient.GetQuote(ctx, cfg.Symbol)
		if err != nil {
			log.Warn().Err(err).Msg("quote fetch failed, using last candle close")
		} else {
			price = quote.Price
			change24h = quote.PercentChange24h
		}

		if metrics, err := cmcClient.GetGlobalMetrics(ctx); err != nil {
			log.Warn().Err(err).Msg("global metrics fetch failed")
		} else {
			log.Info().
				Float64("btc_dominance", metrics.BTCDominance).
				Float64("total_market_cap", metrics.TotalMarketCap).
				Msg("Global market context")
		}
	}

	// 3) Indicators and price structure
	indicators := calculate.BuildIndicatorSet(candles, cfg)
	highs, lows := calculate.RecentExtremes(candles, cfg.ExtremesLookback)
	trend, _, _, ok := fibonacci.AnalyzePriceStructure(highs, lows)
	if !ok {
		trend = models.TrendNeutral
	}

	snapshot := models.MarketSnapshot{
		Symbol:        cfg.Symbol,
		CurrentPrice:  price,
		RecentHighs:   highs,
		RecentLows:    lows,
		ATR:           indicators.Value(models.IndATR, 0),
		Trend:         trend,
		TrendStrength: math.Min(1, math.Abs(change24h)/10),
	}

	// 4) Decision
	eng := engine.New(engine.DefaultParams())
	decision := eng.GenerateDecision(models.AnalysisInput{
		Snapshot:   snapshot,
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
	})

	printDecision(decision)

	// 5) Optional persistence
	if cfg.DBHost != "" {
		db, err := database.New(database.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to database")
		} else {
			defer db.Close()
			if err := db.SaveDecision(ctx, decision); err != nil {
				log.Error().Err(err).Msg("Failed to save decision")
			}
		}
	}

	// 6) Alerts
	runAlerts(ctx, cfg, alerts.MarketData{
		Symbol:    cfg.Symbol,
		Price:     price,
		Change24h: change24h,
		RSI:       indicators.Value(models.IndRSI, 50),
		Decision:  decision.Decision,
	})
}

// runAlerts registers the standard rule set and evaluates it once against
// the fresh market data.
func runAlerts(ctx context.Context, cfg *config.Config, data alerts.MarketData) {
	alertEngine := alerts.NewEngine(time.Duration(cfg.AlertCooldownMin) * time.Minute)

	var channels []string
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		tg, err := alerts.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize telegram channel")
		} else {
			alertEngine.RegisterChannel("telegram", tg)
			channels = append(channels, "telegram")
		}
	}
	if cfg.AlertWebhookURL != "" {
		alertEngine.RegisterChannel("webhook", alerts.NewWebhookChannel(
			cfg.AlertWebhookURL, time.Duration(cfg.RequestTimeout)*time.Second))
		channels = append(channels, "webhook")
	}
	if len(channels) == 0 {
		return
	}

	// Standard rules: RSI extremes, large daily moves, strong signals
	alertEngine.Register(cfg.Symbol, alerts.Conditions{RSIAbove: 75}, models.PriorityMedia, channels...)
	alertEngine.Register(cfg.Symbol, alerts.Conditions{RSIBelow: 25}, models.PriorityMedia, channels...)
	alertEngine.Register(cfg.Symbol, alerts.Conditions{MinAbsChange: 5}, models.PriorityAlta, channels...)
	alertEngine.Register(cfg.Symbol, alerts.Conditions{Decision: models.DecisionComprar}, models.PriorityAlta, channels...)
	alertEngine.Register(cfg.Symbol, alerts.Conditions{Decision: models.DecisionVender}, models.PriorityAlta, channels...)

	fired := alertEngine.Evaluate(ctx, data)
	if len(fired) > 0 {
		log.Info().Int("count", len(fired)).Msg("Alerts dispatched")
	}
}

func printDecision(d models.TradingDecision) {
	fmt.Printf("\n===== DECISIÓN DE TRADING: %s =====\n", d.Symbol)
	fmt.Printf("Decisión: %s (confianza %.2f%%)\n", d.Decision, d.Confidence)
	fmt.Printf("Explicación: %s\n", d.Explanation)
	if !d.Levels.IsZero() {
		fmt.Printf("Entrada: %.8f\n", d.Levels.Entry)
		fmt.Printf("Stop loss: %.8f\n", d.Levels.StopLoss)
		fmt.Printf("Take profit: %.8f\n", d.Levels.TakeProfit)
	}
	if d.Risk.PositionSize > 0 {
		fmt.Printf("Tamaño posición: %.8f unidades\n", d.Risk.PositionSize)
		fmt.Printf("Riesgo: %.0f%% del capital ($%.2f)\n", d.Risk.RiskFraction*100, d.Risk.CapitalAtRisk)
	}
	fmt.Printf("Puntuaciones: técnica %.2f / sentimiento %.2f / on-chain %.2f\n",
		d.Breakdown.Technical, d.Breakdown.Sentiment, d.Breakdown.OnChain)
	fmt.Printf("Mercado: %s (fuerza %.2f)\n",
		d.Breakdown.MarketCondition.Trend, d.Breakdown.MarketCondition.Strength)
}
