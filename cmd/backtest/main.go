package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cryptointel/internal/api/binance"
	"cryptointel/internal/backtest"
	"cryptointel/internal/config"
	"cryptointel/internal/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := binance.NewClient(binance.ClientOptions{
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	candles, err := client.GetCandles(ctx, cfg.Symbol, cfg.Interval, cfg.BacktestCandles)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch historical candles")
	}

	// Historical replay has no sentiment or on-chain history, so the
	// full decision weight sits on the technical domain.
	params := engine.DefaultParams()
	params.TechnicalWeight = 1
	params.SentimentWeight = 0
	params.OnChainWeight = 0

	bt := backtest.NewEngine(engine.New(params), cfg)
	results, err := bt.Run(cfg.Symbol, candles)
	if err != nil {
		log.Fatal().Err(err).Msg("Backtest failed")
	}

	fmt.Printf("\n===== BACKTEST %s (%s, %d velas) =====\n", cfg.Symbol, cfg.Interval, len(candles))
	fmt.Printf("Señales:        %d (compra %d / venta %d)\n", results.TotalSignals, results.BuySignals, results.SellSignals)
	fmt.Printf("Aciertos:       %d (%.2f%%)\n", results.Wins, results.WinRate)
	fmt.Printf("Fallos:         %d\n", results.Losses)
	fmt.Printf("Profit factor:  %.2f\n", results.ProfitFactor)
	fmt.Printf("Capital:        $%.2f -> $%.2f (%.2f%%)\n", results.InitialCapital, results.FinalCapital, results.TotalReturnPct)
	fmt.Printf("Max drawdown:   %.2f%%\n", results.MaxDrawdownPct)
	fmt.Printf("Rachas:         %d victorias / %d derrotas\n", results.MaxConsecutive.Wins, results.MaxConsecutive.Losses)
}
