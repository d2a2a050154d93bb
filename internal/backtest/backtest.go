package backtest

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cryptointel/internal/calculate"
	"cryptointel/internal/config"
	"cryptointel/internal/engine"
	"cryptointel/internal/fibonacci"
	"cryptointel/models"
)

// Results summarises a historical replay of the decision engine.
type Results struct {
	TotalSignals   int     `json:"total_signals"`
	BuySignals     int     `json:"buy_signals"`
	SellSignals    int     `json:"sell_signals"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	MaxConsecutive struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
	} `json:"max_consecutive"`
}

// Engine replays historical candles through the decision engine and scores
// the directional signals against what the market actually did.
type Engine struct {
	decisions      *engine.Engine
	cfg            *config.Config
	initialCapital float64
	horizon        int
	logger         zerolog.Logger
}

// NewEngine creates a backtest engine around a decision engine.
func NewEngine(decisions *engine.Engine, cfg *config.Config) *Engine {
	return &Engine{
		decisions:      decisions,
		cfg:            cfg,
		initialCapital: cfg.Capital,
		horizon:        1,
		logger:         log.With().Str("component", "backtest").Logger(),
	}
}

// SetInitialCapital overrides the starting balance.
func (e *Engine) SetInitialCapital(capital float64) {
	e.initialCapital = capital
}

// SetHorizon sets how many candles ahead a signal is validated against.
func (e *Engine) SetHorizon(candles int) {
	if candles > 0 {
		e.horizon = candles
	}
}

// Run replays the candle history. Each step sees only the trailing window,
// generates a decision and validates COMPRAR/VENDER signals against the
// close after the horizon. Wins compound the balance by the risked fraction
// times the reward-to-risk of the operation zone; losses cost the risked
// fraction.
func (e *Engine) Run(symbol string, candles []models.Candle) (*Results, error) {
	window := e.cfg.CandleCount
	if len(candles) < window+e.horizon {
		return nil, fmt.Errorf("insufficient history: got %d candles, need at least %d", len(candles), window+e.horizon)
	}

	results := &Results{InitialCapital: e.initialCapital}
	balance := e.initialCapital
	highWater := balance
	maxDrawdown := 0.0

	var totalProfit, totalLoss float64
	consecutiveWins, consecutiveLosses := 0, 0

	for i := window; i < len(candles)-e.horizon; i += e.horizon {
		testWindow := candles[i-window : i]
		price := testWindow[len(testWindow)-1].Close

		indicators := calculate.BuildIndicatorSet(testWindow, e.cfg)
		highs, lows := calculate.RecentExtremes(testWindow, e.cfg.ExtremesLookback)
		trend, _, _, ok := fibonacci.AnalyzePriceStructure(highs, lows)
		if !ok {
			trend = models.TrendNeutral
		}

		decision := e.decisions.GenerateDecision(models.AnalysisInput{
			Snapshot: models.MarketSnapshot{
				Symbol:       symbol,
				CurrentPrice: price,
				RecentHighs:  highs,
				RecentLows:   lows,
				Trend:        trend,
			},
			Indicators: indicators,
			Capital:    balance,
		})

		if decision.Decision == models.DecisionMantener {
			continue
		}

		futurePrice := candles[i+e.horizon-1].Close
		priceChange := futurePrice - price

		won := (decision.Decision == models.DecisionComprar && priceChange > 0) ||
			(decision.Decision == models.DecisionVender && priceChange < 0)

		results.TotalSignals++
		if decision.Decision == models.DecisionComprar {
			results.BuySignals++
		} else {
			results.SellSignals++
		}

		riskMoney := balance * decision.Risk.RiskFraction
		if won {
			results.Wins++
			consecutiveWins++
			consecutiveLosses = 0
			gain := riskMoney * rewardToRisk(decision.Levels)
			balance += gain
			totalProfit += gain
		} else {
			results.Losses++
			consecutiveLosses++
			consecutiveWins = 0
			balance -= riskMoney
			totalLoss += riskMoney
		}

		if consecutiveWins > results.MaxConsecutive.Wins {
			results.MaxConsecutive.Wins = consecutiveWins
		}
		if consecutiveLosses > results.MaxConsecutive.Losses {
			results.MaxConsecutive.Losses = consecutiveLosses
		}

		if balance > highWater {
			highWater = balance
		}
		if drawdown := (highWater - balance) / highWater; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	results.FinalCapital = round2(balance)
	results.MaxDrawdownPct = round2(maxDrawdown * 100)
	if e.initialCapital > 0 {
		results.TotalReturnPct = round2((balance - e.initialCapital) / e.initialCapital * 100)
	}
	if results.TotalSignals > 0 {
		results.WinRate = round2(float64(results.Wins) / float64(results.TotalSignals) * 100)
	}
	if totalLoss > 0 {
		results.ProfitFactor = round2(totalProfit / totalLoss)
	}

	e.logger.Info().
		Int("signals", results.TotalSignals).
		Float64("win_rate", results.WinRate).
		Float64("return_pct", results.TotalReturnPct).
		Msg("Backtest finished")

	return results, nil
}

// rewardToRisk is the take-profit distance over the stop distance, capped so
// a degenerate zone cannot blow up the equity curve.
func rewardToRisk(zone models.OperationZone) float64 {
	risk := math.Abs(zone.Entry - zone.StopLoss)
	if risk == 0 {
		return 1
	}
	rr := math.Abs(zone.TakeProfit-zone.Entry) / risk
	if rr > 10 {
		rr = 10
	}
	if rr <= 0 {
		return 1
	}
	return rr
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
