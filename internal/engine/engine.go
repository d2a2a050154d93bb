package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cryptointel/internal/fibonacci"
	"cryptointel/models"
)

// Fixed explanation strings attached to decisions.
const (
	explanationBuy     = "Señales alcistas fuertes en análisis técnico y fundamental"
	explanationSell    = "Señales bajistas dominantes en múltiples indicadores"
	explanationHold    = "Mercado en rango, señales mixtas"
	explanationFailure = "Error en análisis, mantener posiciones actuales"
)

// Params holds every tunable constant of the fusion engine in one place so
// alternate weightings can be tested without touching the code.
type Params struct {
	// Domain weights, must sum to 1.
	TechnicalWeight float64
	SentimentWeight float64
	OnChainWeight   float64

	// Technical sub-weights, must sum to 1.
	RSIWeight       float64
	MACDWeight      float64
	MomentumWeight  float64
	BollingerWeight float64

	// Decision thresholds, strict comparisons.
	BuyThreshold  float64
	SellThreshold float64

	// Fraction of capital risked per trade.
	RiskPerTrade float64

	// ATR substitute as a fraction of price when no volatility is known.
	DefaultATRFraction float64
}

// DefaultParams returns the production parameter set.
func DefaultParams() Params {
	return Params{
		TechnicalWeight:    0.4,
		SentimentWeight:    0.3,
		OnChainWeight:      0.3,
		RSIWeight:          0.3,
		MACDWeight:         0.2,
		MomentumWeight:     0.2,
		BollingerWeight:    0.3,
		BuyThreshold:       0.7,
		SellThreshold:      0.3,
		RiskPerTrade:       0.02,
		DefaultATRFraction: 0.02,
	}
}

// Engine fuses technical, sentiment and on-chain sub-scores into a trading
// decision with price levels and a risk-bounded position size. Every method
// is a pure function of its arguments; concurrent use needs no locking.
type Engine struct {
	params Params
	logger zerolog.Logger
}

// New creates an engine with the given parameters.
func New(params Params) *Engine {
	return &Engine{
		params: params,
		logger: log.With().Str("component", "decision_engine").Logger(),
	}
}

// Fuse combines the three sub-scores into the global score and maps it to a
// decision. Confidence is the global score as a percentage.
func (e *Engine) Fuse(technical, sentiment, onchain float64) (decision string, confidence float64, explanation string) {
	global := e.globalScore(technical, sentiment, onchain)

	switch {
	case global > e.params.BuyThreshold:
		decision = models.DecisionComprar
		explanation = explanationBuy
	case global < e.params.SellThreshold:
		decision = models.DecisionVender
		explanation = explanationSell
	default:
		decision = models.DecisionMantener
		explanation = explanationHold
	}

	return decision, round2(global * 100), explanation
}

func (e *Engine) globalScore(technical, sentiment, onchain float64) float64 {
	return technical*e.params.TechnicalWeight +
		sentiment*e.params.SentimentWeight +
		onchain*e.params.OnChainWeight
}

// ComputeLevels obtains entry/stop/target prices, preferring the Fibonacci
// zone and falling back to a volatility-based method keyed on the global
// score. Returns a zero zone when not even a price is known.
func (e *Engine) ComputeLevels(snapshot models.MarketSnapshot, indicators models.IndicatorSet, globalScore float64) models.OperationZone {
	if analysis, ok := fibonacci.Recommend(snapshot, indicators); ok && !analysis.Zone.IsZero() {
		e.logger.Debug().
			Str("symbol", snapshot.Symbol).
			Str("trend", analysis.Trend).
			Str("quality", analysis.SignalQuality).
			Msg("using fibonacci operation zone")
		return analysis.Zone
	}
	return e.volatilityLevels(snapshot, indicators, globalScore)
}

func (e *Engine) volatilityLevels(snapshot models.MarketSnapshot, indicators models.IndicatorSet, globalScore float64) models.OperationZone {
	price := snapshot.CurrentPrice
	if price <= 0 {
		return models.OperationZone{}
	}

	atr := indicators.Value(models.IndATR, 0)
	if atr <= 0 {
		atr = snapshot.ATR
	}
	if atr <= 0 {
		atr = price * e.params.DefaultATRFraction
	}

	var entry, stop, target float64
	switch {
	case globalScore > e.params.BuyThreshold:
		entry = price * 0.99
		stop = entry - atr*1.5
		target = entry + atr*3
	case globalScore < e.params.SellThreshold:
		entry = price * 1.01
		stop = entry + atr*1.5
		target = entry - atr*3
	default:
		entry = price
		stop = entry - atr
		target = entry + atr
	}

	return models.OperationZone{
		Entry:      round8(entry),
		StopLoss:   round8(stop),
		TakeProfit: round8(target),
	}
}

// SizePosition computes the number of units so that the distance from entry
// to stop risks exactly the configured capital fraction. Degenerate inputs
// yield a zero size, never a division fault.
func (e *Engine) SizePosition(capital, entry, stop float64) float64 {
	if capital <= 0 || entry <= 0 || stop <= 0 {
		return 0
	}
	riskPerUnit := math.Abs(entry - stop)
	if riskPerUnit == 0 {
		return 0
	}
	riskMoney := capital * e.params.RiskPerTrade
	return round8(riskMoney / riskPerUnit)
}

// GenerateDecision orchestrates a full analysis: per-domain scoring, fusion,
// level computation and position sizing. It is total from the caller's
// perspective: any internal failure yields the safe MANTENER default rather
// than an error.
func (e *Engine) GenerateDecision(input models.AnalysisInput) (decision models.TradingDecision) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Str("symbol", input.Snapshot.Symbol).
				Interface("panic", r).
				Msg("decision generation failed, returning safe default")
			decision = e.safeDefault(input.Snapshot.Symbol)
		}
	}()

	technical := e.ScoreTechnical(input.Indicators, input.Snapshot.CurrentPrice)
	sentiment := e.ScoreSentiment(input.Sentiment)
	onchain := e.ScoreOnChain(input.OnChain)
	e.logDefaults(input.Snapshot.Symbol, technical, sentiment, onchain)

	label, confidence, explanation := e.Fuse(technical.Value, sentiment.Value, onchain.Value)
	global := e.globalScore(technical.Value, sentiment.Value, onchain.Value)

	zone := e.ComputeLevels(input.Snapshot, input.Indicators, global)
	size := e.SizePosition(input.Capital, zone.Entry, zone.StopLoss)

	risk := models.RiskPlan{RiskFraction: e.params.RiskPerTrade}
	if size > 0 {
		risk.PositionSize = size
		risk.CapitalAtRisk = round2(input.Capital * e.params.RiskPerTrade)
	}

	trend := input.Snapshot.Trend
	if trend == "" {
		trend = models.TrendNeutral
	}
	strength := input.Snapshot.TrendStrength
	if strength == 0 {
		strength = 0.5
	}

	return models.TradingDecision{
		Symbol:      input.Snapshot.Symbol,
		Decision:    label,
		Confidence:  confidence,
		Explanation: explanation,
		Levels:      zone,
		Risk:        risk,
		Breakdown: models.ScoreBreakdown{
			Technical: round2(technical.Value * 100),
			Sentiment: round2(sentiment.Value * 100),
			OnChain:   round2(onchain.Value * 100),
			MarketCondition: models.MarketCondition{
				Trend:    trend,
				Strength: round2(strength * 100),
			},
		},
		GeneratedAt: time.Now().UTC(),
	}
}

func (e *Engine) logDefaults(symbol string, scores ...SubScore) {
	for _, s := range scores {
		if s.Defaulted {
			e.logger.Warn().
				Str("symbol", symbol).
				Float64("score", s.Value).
				Msg(s.Reason)
		}
	}
}

func (e *Engine) safeDefault(symbol string) models.TradingDecision {
	return models.TradingDecision{
		Symbol:      symbol,
		Decision:    models.DecisionMantener,
		Confidence:  50,
		Explanation: explanationFailure,
		Breakdown: models.ScoreBreakdown{
			MarketCondition: models.MarketCondition{Trend: models.TrendNeutral},
		},
		GeneratedAt: time.Now().UTC(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
