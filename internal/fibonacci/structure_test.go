package fibonacci

import (
	"testing"

	"cryptointel/models"
)

func TestAnalyzePriceStructure(t *testing.T) {
	tests := []struct {
		name      string
		highs     []float64
		lows      []float64
		wantTrend string
		wantHigh  float64
		wantLow   float64
		wantOK    bool
	}{
		{
			name:      "Máximos y mínimos crecientes",
			highs:     []float64{10, 11, 12, 13},
			lows:      []float64{8, 9, 10, 11},
			wantTrend: models.TrendAlcista,
			wantHigh:  13,
			wantLow:   10,
			wantOK:    true,
		},
		{
			name:      "Máximos y mínimos decrecientes",
			highs:     []float64{13, 12, 11, 10},
			lows:      []float64{11, 10, 9, 8},
			wantTrend: models.TrendBajista,
			wantHigh:  13,
			wantLow:   8,
			wantOK:    true,
		},
		{
			name:      "Estructura mixta",
			highs:     []float64{10, 12, 11, 13},
			lows:      []float64{9, 8, 7, 6},
			wantTrend: models.TrendNeutral,
			wantOK:    false,
		},
		{
			name:      "Extremos iguales",
			highs:     []float64{10, 10, 10},
			lows:      []float64{8, 8, 8},
			wantTrend: models.TrendNeutral,
			wantOK:    false,
		},
		{
			name:      "Datos insuficientes",
			highs:     []float64{10, 11},
			lows:      []float64{8, 9},
			wantTrend: models.TrendNeutral,
			wantOK:    false,
		},
		{
			name:      "Sin datos",
			wantTrend: models.TrendNeutral,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, high, low, ok := AnalyzePriceStructure(tt.highs, tt.lows)
			if trend != tt.wantTrend || ok != tt.wantOK {
				t.Fatalf("AnalyzePriceStructure() = %v, %v, want %v, %v", trend, ok, tt.wantTrend, tt.wantOK)
			}
			if !ok {
				return
			}
			if high != tt.wantHigh || low != tt.wantLow {
				t.Errorf("range = [%v, %v], want [%v, %v]", low, high, tt.wantLow, tt.wantHigh)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	bullSnapshot := models.MarketSnapshot{
		Symbol:       "BTC",
		CurrentPrice: 96,
		RecentHighs:  []float64{90, 95, 98, 100},
		RecentLows:   []float64{80, 85, 88, 90},
	}

	t.Run("Señal alcista con confluencia RSI", func(t *testing.T) {
		analysis, ok := Recommend(bullSnapshot, models.IndicatorSet{models.IndRSI: 35})
		if !ok {
			t.Fatal("Recommend() ok = false, want true")
		}
		if analysis.Trend != models.TrendAlcista {
			t.Errorf("Trend = %v, want %v", analysis.Trend, models.TrendAlcista)
		}
		if analysis.SignalQuality != models.SignalQualityAlta {
			t.Errorf("SignalQuality = %v, want %v", analysis.SignalQuality, models.SignalQualityAlta)
		}
		if analysis.Zone.IsZero() {
			t.Error("Zone is zero, want operation levels")
		}
	})

	t.Run("Señal alcista sin confluencia", func(t *testing.T) {
		analysis, ok := Recommend(bullSnapshot, models.IndicatorSet{models.IndRSI: 55})
		if !ok {
			t.Fatal("Recommend() ok = false, want true")
		}
		if analysis.SignalQuality != models.SignalQualityMedia {
			t.Errorf("SignalQuality = %v, want %v", analysis.SignalQuality, models.SignalQualityMedia)
		}
	})

	t.Run("Estructura neutral", func(t *testing.T) {
		snapshot := bullSnapshot
		snapshot.RecentLows = []float64{90, 85, 88, 84}
		if _, ok := Recommend(snapshot, nil); ok {
			t.Error("Recommend() ok = true, want false for neutral structure")
		}
	})

	t.Run("Precio inválido", func(t *testing.T) {
		snapshot := bullSnapshot
		snapshot.CurrentPrice = 0
		if _, ok := Recommend(snapshot, nil); ok {
			t.Error("Recommend() ok = true, want false for zero price")
		}
	})
}
