package engine

import (
	"math"
	"testing"

	"cryptointel/models"
)

func TestScoreTechnical(t *testing.T) {
	e := New(DefaultParams())

	tests := []struct {
		name          string
		indicators    models.IndicatorSet
		currentPrice  float64
		want          float64
		wantDefaulted bool
	}{
		{
			name: "Sobreventa con cruce MACD",
			indicators: models.IndicatorSet{
				models.IndRSI:        25,
				models.IndMACD:       1,
				models.IndMACDSignal: 0,
				models.IndMomentum:   5,
				models.IndBBUpper:    110,
				models.IndBBLower:    95,
			},
			currentPrice: 90,
			// RSI 0.5*0.3 + MACD 0.2 + momentum 0.2 + bandas 0.3
			want: 0.85,
		},
		{
			name: "Sobrecompra sin impulso",
			indicators: models.IndicatorSet{
				models.IndRSI:        80,
				models.IndMACD:       -1,
				models.IndMACDSignal: 0,
				models.IndMomentum:   -5,
				models.IndBBUpper:    110,
				models.IndBBLower:    95,
			},
			currentPrice: 115,
			// RSI max(0, 1-30/50)=0.4*0.3, resto en cero
			want: 0.12,
		},
		{
			name: "RSI estable dentro de banda",
			indicators: models.IndicatorSet{
				models.IndRSI:        50,
				models.IndMACD:       1,
				models.IndMACDSignal: 2,
				models.IndMomentum:   0,
				models.IndBBUpper:    110,
				models.IndBBLower:    95,
			},
			currentPrice: 100,
			// RSI 1.0*0.3 + bandas 0.5*0.3
			want: 0.45,
		},
		{
			name: "RSI extremo saturado a cero",
			indicators: models.IndicatorSet{
				models.IndRSI:     100,
				models.IndBBUpper: 110,
				models.IndBBLower: 95,
			},
			currentPrice: 100,
			want:         0.15,
		},
		{
			name:          "Sin indicadores",
			indicators:    nil,
			currentPrice:  100,
			want:          0.45, // RSI por defecto 50 y bandas neutrales
			wantDefaulted: true,
		},
		{
			name: "Bandas ausentes",
			indicators: models.IndicatorSet{
				models.IndRSI: 50,
			},
			currentPrice:  100,
			want:          0.45,
			wantDefaulted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ScoreTechnical(tt.indicators, tt.currentPrice)
			if !almostEqual(got.Value, tt.want) {
				t.Errorf("ScoreTechnical() = %v, want %v", got.Value, tt.want)
			}
			if got.Defaulted != tt.wantDefaulted {
				t.Errorf("Defaulted = %v, want %v", got.Defaulted, tt.wantDefaulted)
			}
		})
	}
}

func TestScoreSentiment(t *testing.T) {
	e := New(DefaultParams())

	tests := []struct {
		name               string
		positive, negative int
		want               float64
		wantDefaulted      bool
	}{
		{name: "Mayoría positiva", positive: 80, negative: 20, want: 0.8},
		{name: "Mayoría negativa", positive: 10, negative: 90, want: 0.1},
		{name: "Sin menciones", positive: 0, negative: 0, want: 0.5, wantDefaulted: true},
		{name: "Conteos inválidos", positive: 5, negative: -5, want: 0.5, wantDefaulted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ScoreSentiment(models.SentimentInput{
				PositiveMentions: tt.positive,
				NegativeMentions: tt.negative,
			})
			if !almostEqual(got.Value, tt.want) {
				t.Errorf("ScoreSentiment() = %v, want %v", got.Value, tt.want)
			}
			if got.Defaulted != tt.wantDefaulted {
				t.Errorf("Defaulted = %v, want %v", got.Defaulted, tt.wantDefaulted)
			}
		})
	}
}

func TestScoreOnChain(t *testing.T) {
	e := New(DefaultParams())

	tests := []struct {
		name            string
		activity, whale string
		want            float64
		wantDefaulted   bool
	}{
		{name: "Acumulación institucional", activity: models.ActivityAlto, whale: models.WhaleAcumulacion, want: 1.0},
		{name: "Distribución con actividad baja", activity: models.ActivityBajo, whale: models.WhaleDistribucion, want: 0.15},
		{name: "Escenario moderado", activity: models.ActivityModerado, whale: models.WhaleNeutral, want: 0.6},
		{name: "Categorías desconocidas", activity: "?", whale: "?", want: 0.5, wantDefaulted: true},
		{name: "Entrada vacía", want: 0.5, wantDefaulted: true},
		{name: "Solo ballenas conocidas", activity: "?", whale: models.WhaleAcumulacion, want: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ScoreOnChain(models.OnChainInput{
				InstitutionalActivity: tt.activity,
				WhaleBehavior:         tt.whale,
			})
			if !almostEqual(got.Value, tt.want) {
				t.Errorf("ScoreOnChain() = %v, want %v", got.Value, tt.want)
			}
			if got.Defaulted != tt.wantDefaulted {
				t.Errorf("Defaulted = %v, want %v", got.Defaulted, tt.wantDefaulted)
			}
		})
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
