package models

import (
	"time"
)

// Trend labels for market structure. The Spanish labels are the wire values
// used across the whole platform (dashboard, alerts, stored decisions).
const (
	TrendAlcista = "ALCISTA"
	TrendBajista = "BAJISTA"
	TrendNeutral = "NEUTRAL"
)

// Decision labels produced by the fusion engine.
const (
	DecisionComprar  = "COMPRAR"
	DecisionVender   = "VENDER"
	DecisionMantener = "MANTENER"
)

// Institutional activity categories reported by on-chain collaborators.
const (
	ActivityAlto     = "ALTO"
	ActivityModerado = "MODERADO"
	ActivityBajo     = "BAJO"
)

// Whale behaviour categories reported by on-chain collaborators.
const (
	WhaleAcumulacion  = "ACUMULACIÓN"
	WhaleNeutral      = "NEUTRAL"
	WhaleDistribucion = "DISTRIBUCIÓN"
)

// Signal quality grades for Fibonacci recommendations.
const (
	SignalQualityAlta  = "ALTA"
	SignalQualityMedia = "MEDIA"
)

// Candle represents a single price candle
type Candle struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume,omitempty"`
}

// MarketSnapshot is the immutable per-call view of the market that the
// decision engine works with. Produced by the data layer, never mutated.
type MarketSnapshot struct {
	Symbol        string    `json:"symbol"`
	CurrentPrice  float64   `json:"current_price"`
	RecentHighs   []float64 `json:"recent_highs"`
	RecentLows    []float64 `json:"recent_lows"`
	ATR           float64   `json:"atr,omitempty"`
	Trend         string    `json:"trend"`
	TrendStrength float64   `json:"trend_strength"`
}

// Indicator names used as IndicatorSet keys.
const (
	IndRSI        = "RSI"
	IndMACD       = "MACD"
	IndMACDSignal = "MACD_Signal"
	IndMomentum   = "Momentum"
	IndBBUpper    = "BB_Superior"
	IndBBMiddle   = "BB_Media"
	IndBBLower    = "BB_Inferior"
	IndATR        = "ATR"
)

// IndicatorSet maps indicator names to values. Keys are optional; scorers
// substitute documented defaults for anything missing.
type IndicatorSet map[string]float64

// Value returns the named indicator or the given default when absent.
func (s IndicatorSet) Value(name string, def float64) float64 {
	if s == nil {
		return def
	}
	if v, ok := s[name]; ok {
		return v
	}
	return def
}

// SentimentInput carries raw mention counts from the sentiment collaborator.
type SentimentInput struct {
	PositiveMentions int `json:"positive_mentions"`
	NegativeMentions int `json:"negative_mentions"`
}

// OnChainInput carries categorical on-chain assessments.
type OnChainInput struct {
	InstitutionalActivity string `json:"institutional_activity"`
	WhaleBehavior         string `json:"whale_behavior"`
}

// FibonacciLevels holds retracement and extension prices keyed by ratio.
// Recomputed on every call, never persisted.
type FibonacciLevels struct {
	Retracements map[float64]float64 `json:"retracements"`
	Extensions   map[float64]float64 `json:"extensions"`
}

// OperationZone is the entry/stop/target triple selected from Fibonacci
// levels or from the volatility fallback.
type OperationZone struct {
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
}

// IsZero reports whether no usable zone was produced.
func (z OperationZone) IsZero() bool {
	return z.Entry == 0 && z.StopLoss == 0 && z.TakeProfit == 0
}

// FibonacciAnalysis is the full output of the Fibonacci recommendation
// pipeline: structure trend, levels, selected zone and signal quality.
type FibonacciAnalysis struct {
	Trend         string          `json:"trend"`
	SignalQuality string          `json:"signal_quality"`
	Levels        FibonacciLevels `json:"levels"`
	Zone          OperationZone   `json:"zone"`
	ReferenceHigh float64         `json:"reference_high"`
	ReferenceLow  float64         `json:"reference_low"`
	RSIConfluence float64         `json:"rsi_confluence"`
}

// RiskPlan is the position-sizing block of a decision.
type RiskPlan struct {
	PositionSize  float64 `json:"position_size"`
	RiskFraction  float64 `json:"risk_fraction"`
	CapitalAtRisk float64 `json:"capital_at_risk"`
}

// MarketCondition summarises trend context in the decision breakdown.
type MarketCondition struct {
	Trend    string  `json:"trend"`
	Strength float64 `json:"strength"`
}

// ScoreBreakdown exposes the contributing sub-scores as percentages.
type ScoreBreakdown struct {
	Technical       float64         `json:"technical"`
	Sentiment       float64         `json:"sentiment"`
	OnChain         float64         `json:"onchain"`
	MarketCondition MarketCondition `json:"market_condition"`
}

// TradingDecision is the final output record of the fusion engine.
type TradingDecision struct {
	Symbol      string         `json:"symbol"`
	Decision    string         `json:"decision"`
	Confidence  float64        `json:"confidence"`
	Explanation string         `json:"explanation"`
	Levels      OperationZone  `json:"levels"`
	Risk        RiskPlan       `json:"risk"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// AnalysisInput bundles everything a single decision call consumes.
type AnalysisInput struct {
	Snapshot   MarketSnapshot `json:"snapshot"`
	Indicators IndicatorSet   `json:"indicators"`
	Sentiment  SentimentInput `json:"sentiment"`
	OnChain    OnChainInput   `json:"onchain"`
	Capital    float64        `json:"capital"`
}

// Alert priorities.
const (
	PriorityAlta  = "ALTA"
	PriorityMedia = "MEDIA"
	PriorityBaja  = "BAJA"
)

// AlertEvent is a fired alert, recorded to history and dispatched to the
// configured channels.
type AlertEvent struct {
	Symbol      string    `json:"symbol"`
	Priority    string    `json:"priority"`
	Message     string    `json:"message"`
	Price       float64   `json:"price"`
	TriggeredAt time.Time `json:"triggered_at"`
}
