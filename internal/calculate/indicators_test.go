package calculate

import (
	"math"
	"testing"

	"cryptointel/internal/config"
	"cryptointel/models"
)

func generateTestCandles(n int, generator func(i int) models.Candle) []models.Candle {
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = generator(i)
	}
	return candles
}

func flatCandles(n int, price float64) []models.Candle {
	return generateTestCandles(n, func(int) models.Candle {
		return models.Candle{Open: price, High: price, Low: price, Close: price}
	})
}

func risingCandles(n int) []models.Candle {
	return generateTestCandles(n, func(i int) models.Candle {
		base := 100 + float64(i)
		return models.Candle{Open: base, High: base + 1, Low: base - 1, Close: base}
	})
}

func TestCalculateRSI(t *testing.T) {
	tests := []struct {
		name    string
		candles []models.Candle
		period  int
		want    float64
	}{
		{
			name:    "Datos insuficientes",
			candles: risingCandles(10),
			period:  14,
			want:    50,
		},
		{
			name:    "Subida sostenida",
			candles: risingCandles(30),
			period:  14,
			want:    100,
		},
		{
			name: "Bajada sostenida",
			candles: generateTestCandles(30, func(i int) models.Candle {
				return models.Candle{Close: 100 - float64(i)}
			}),
			period: 14,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRSI(tt.candles, tt.period)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateRSI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateRSIRango(t *testing.T) {
	candles := generateTestCandles(40, func(i int) models.Candle {
		return models.Candle{Close: 100 + math.Sin(float64(i))*5}
	})
	got := CalculateRSI(candles, 14)
	if got < 0 || got > 100 {
		t.Errorf("CalculateRSI() = %v, out of [0,100]", got)
	}
}

func TestCalculateEMA(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{name: "Sin precios", prices: nil, period: 10, want: 0},
		{name: "Datos insuficientes", prices: []float64{100, 101}, period: 10, want: 101},
		{name: "Serie constante", prices: []float64{50, 50, 50, 50, 50, 50}, period: 3, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateEMA(tt.prices, tt.period)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateEMA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateEMASigueLaTendencia(t *testing.T) {
	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	ema := CalculateEMA(prices, 10)
	if ema <= 100 || ema >= prices[len(prices)-1] {
		t.Errorf("CalculateEMA() = %v, expected between 100 and %v", ema, prices[len(prices)-1])
	}
}

func TestCalculateMACD(t *testing.T) {
	t.Run("Datos insuficientes", func(t *testing.T) {
		macd, signal, hist := CalculateMACD(risingCandles(10), 12, 26, 9)
		if macd != 0 || signal != 0 || hist != 0 {
			t.Errorf("CalculateMACD() = %v, %v, %v, want zeros", macd, signal, hist)
		}
	})

	t.Run("Tendencia alcista con MACD positivo", func(t *testing.T) {
		macd, _, _ := CalculateMACD(risingCandles(60), 12, 26, 9)
		if macd <= 0 {
			t.Errorf("CalculateMACD() macd = %v, want > 0 in an uptrend", macd)
		}
	})

	t.Run("Serie constante", func(t *testing.T) {
		macd, signal, hist := CalculateMACD(flatCandles(60, 100), 12, 26, 9)
		if macd != 0 || signal != 0 || hist != 0 {
			t.Errorf("CalculateMACD() = %v, %v, %v, want zeros for flat prices", macd, signal, hist)
		}
	})
}

func TestCalculateBollingerBands(t *testing.T) {
	t.Run("Serie constante sin dispersión", func(t *testing.T) {
		upper, middle, lower := CalculateBollingerBands(flatCandles(30, 100), 20, 2)
		if upper != 100 || middle != 100 || lower != 100 {
			t.Errorf("bands = %v, %v, %v, want all 100", upper, middle, lower)
		}
	})

	t.Run("Bandas ordenadas", func(t *testing.T) {
		candles := generateTestCandles(30, func(i int) models.Candle {
			return models.Candle{Close: 100 + math.Sin(float64(i))*5}
		})
		upper, middle, lower := CalculateBollingerBands(candles, 20, 2)
		if !(lower < middle && middle < upper) {
			t.Errorf("bands = %v, %v, %v, want lower < middle < upper", upper, middle, lower)
		}
	})

	t.Run("Datos insuficientes", func(t *testing.T) {
		upper, middle, lower := CalculateBollingerBands(flatCandles(3, 42), 20, 2)
		if upper != 42 || middle != 42 || lower != 42 {
			t.Errorf("bands = %v, %v, %v, want last close", upper, middle, lower)
		}
	})
}

func TestCalculateATR(t *testing.T) {
	t.Run("Datos insuficientes", func(t *testing.T) {
		if got := CalculateATR(risingCandles(5), 14); got != 0 {
			t.Errorf("CalculateATR() = %v, want 0", got)
		}
	})

	t.Run("Rango constante", func(t *testing.T) {
		candles := generateTestCandles(30, func(i int) models.Candle {
			return models.Candle{Open: 100, High: 102, Low: 98, Close: 100}
		})
		if got := CalculateATR(candles, 14); math.Abs(got-4) > 1e-9 {
			t.Errorf("CalculateATR() = %v, want 4", got)
		}
	})

	t.Run("Velas sin movimiento", func(t *testing.T) {
		if got := CalculateATR(flatCandles(30, 100), 14); got != 0 {
			t.Errorf("CalculateATR() = %v, want 0", got)
		}
	})
}

func TestCalculateMomentum(t *testing.T) {
	tests := []struct {
		name    string
		candles []models.Candle
		period  int
		want    float64
	}{
		{name: "Datos insuficientes", candles: risingCandles(5), period: 10, want: 0},
		{name: "Subida sostenida", candles: risingCandles(30), period: 10, want: 10},
		{name: "Serie constante", candles: flatCandles(30, 100), period: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateMomentum(tt.candles, tt.period); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateMomentum() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildIndicatorSet(t *testing.T) {
	cfg := &config.Config{
		RSIPeriod:        14,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		BBPeriod:         20,
		BBStdDev:         2.0,
		ATRPeriod:        14,
		MomentumPeriod:   10,
	}

	t.Run("Velas insuficientes", func(t *testing.T) {
		if got := BuildIndicatorSet(risingCandles(3), cfg); got != nil {
			t.Errorf("BuildIndicatorSet() = %v, want nil", got)
		}
	})

	t.Run("Conjunto completo", func(t *testing.T) {
		set := BuildIndicatorSet(risingCandles(60), cfg)
		if set == nil {
			t.Fatal("BuildIndicatorSet() = nil, want a full set")
		}
		for _, key := range []string{
			models.IndRSI, models.IndMACD, models.IndMACDSignal,
			models.IndMomentum, models.IndBBUpper, models.IndBBMiddle,
			models.IndBBLower, models.IndATR,
		} {
			if _, ok := set[key]; !ok {
				t.Errorf("missing indicator %q", key)
			}
		}
		if rsi := set[models.IndRSI]; rsi != 100 {
			t.Errorf("RSI = %v, want 100 in a sustained uptrend", rsi)
		}
	})
}

func TestRecentExtremes(t *testing.T) {
	t.Run("Ventana segmentada de cinco velas", func(t *testing.T) {
		highs, lows := RecentExtremes(risingCandles(60), 20)
		if len(highs) != 4 || len(lows) != 4 {
			t.Fatalf("RecentExtremes() = %d highs, %d lows, want 4 and 4", len(highs), len(lows))
		}
		// Velas 40..59: cada segmento de 5 termina en su última vela.
		wantHighs := []float64{145, 150, 155, 160}
		wantLows := []float64{139, 144, 149, 154}
		for i := range wantHighs {
			if highs[i] != wantHighs[i] {
				t.Errorf("highs[%d] = %v, want %v", i, highs[i], wantHighs[i])
			}
			if lows[i] != wantLows[i] {
				t.Errorf("lows[%d] = %v, want %v", i, lows[i], wantLows[i])
			}
		}
	})

	t.Run("Lookback mayor que la serie", func(t *testing.T) {
		highs, lows := RecentExtremes(risingCandles(7), 100)
		if len(highs) != 2 || len(lows) != 2 {
			t.Errorf("RecentExtremes() = %d highs, %d lows, want 2 and 2", len(highs), len(lows))
		}
	})

	t.Run("Entradas vacías", func(t *testing.T) {
		if highs, lows := RecentExtremes(nil, 20); highs != nil || lows != nil {
			t.Errorf("RecentExtremes() = %v, %v, want nil, nil", highs, lows)
		}
		if highs, lows := RecentExtremes(risingCandles(10), 0); highs != nil || lows != nil {
			t.Errorf("RecentExtremes() = %v, %v, want nil, nil", highs, lows)
		}
	})
}
