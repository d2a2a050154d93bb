package backtest

import (
	"math"
	"testing"

	"cryptointel/internal/config"
	"cryptointel/internal/engine"
	"cryptointel/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Symbol:           "BTC",
		CandleCount:      50,
		Capital:          10000,
		RSIPeriod:        14,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		BBPeriod:         20,
		BBStdDev:         2.0,
		ATRPeriod:        14,
		MomentumPeriod:   10,
		ExtremesLookback: 20,
	}
}

func trendingCandles(n int) []models.Candle {
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)*0.1 + math.Sin(float64(i)/3)*3
		candles[i] = models.Candle{
			Open:  price - 0.5,
			High:  price + 1,
			Low:   price - 1,
			Close: price,
		}
	}
	return candles
}

func permissiveEngine() *engine.Engine {
	params := engine.DefaultParams()
	params.TechnicalWeight = 1
	params.SentimentWeight = 0
	params.OnChainWeight = 0
	params.BuyThreshold = 0.3
	params.SellThreshold = 0.1
	return engine.New(params)
}

func TestRunHistorialInsuficiente(t *testing.T) {
	bt := NewEngine(permissiveEngine(), testConfig())
	if _, err := bt.Run("BTC", trendingCandles(30)); err == nil {
		t.Error("Run() error = nil, want insufficient history error")
	}
}

func TestRunReplay(t *testing.T) {
	cfg := testConfig()
	bt := NewEngine(permissiveEngine(), cfg)

	results, err := bt.Run("BTC", trendingCandles(300))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if results.TotalSignals == 0 {
		t.Fatal("TotalSignals = 0, want directional signals with permissive thresholds")
	}
	if results.Wins+results.Losses != results.TotalSignals {
		t.Errorf("Wins+Losses = %d, want %d", results.Wins+results.Losses, results.TotalSignals)
	}
	if results.BuySignals+results.SellSignals != results.TotalSignals {
		t.Errorf("BuySignals+SellSignals = %d, want %d", results.BuySignals+results.SellSignals, results.TotalSignals)
	}
	if results.WinRate < 0 || results.WinRate > 100 {
		t.Errorf("WinRate = %v, out of [0,100]", results.WinRate)
	}
	if results.InitialCapital != cfg.Capital {
		t.Errorf("InitialCapital = %v, want %v", results.InitialCapital, cfg.Capital)
	}
	if results.FinalCapital <= 0 {
		t.Errorf("FinalCapital = %v, want > 0", results.FinalCapital)
	}
	if results.MaxDrawdownPct < 0 || results.MaxDrawdownPct > 100 {
		t.Errorf("MaxDrawdownPct = %v, out of [0,100]", results.MaxDrawdownPct)
	}
}

func TestRewardToRisk(t *testing.T) {
	tests := []struct {
		name string
		zone models.OperationZone
		want float64
	}{
		{
			name: "Relación dos a uno",
			zone: models.OperationZone{Entry: 100, StopLoss: 98, TakeProfit: 104},
			want: 2,
		},
		{
			name: "Zona degenerada",
			zone: models.OperationZone{Entry: 100, StopLoss: 100, TakeProfit: 104},
			want: 1,
		},
		{
			name: "Relación desmesurada limitada",
			zone: models.OperationZone{Entry: 100, StopLoss: 99.99, TakeProfit: 200},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewardToRisk(tt.zone); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rewardToRisk() = %v, want %v", got, tt.want)
			}
		})
	}
}
