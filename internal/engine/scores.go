package engine

import (
	"math"

	"cryptointel/models"
)

// SubScore is the result of one domain scorer. Defaulted marks that the
// neutral default was substituted for missing or unusable input, with the
// reason kept for diagnostics. The fusion proceeds either way.
type SubScore struct {
	Value     float64
	Defaulted bool
	Reason    string
}

// Neutral is the sub-score substituted when a domain cannot be scored.
func Neutral(reason string) SubScore {
	return SubScore{Value: 0.5, Defaulted: true, Reason: reason}
}

// ScoreTechnical scores the technical picture in [0,1] from the indicator
// set: RSI stability, MACD crossover, momentum sign and Bollinger position,
// weighted per the engine parameters. Missing indicators fall back to
// documented defaults instead of failing the score.
func (e *Engine) ScoreTechnical(indicators models.IndicatorSet, currentPrice float64) SubScore {
	p := e.params

	rsi := indicators.Value(models.IndRSI, 50)
	rsiScore := 1.0
	if rsi < 40 || rsi > 60 {
		rsiScore = math.Max(0, 1-math.Abs(rsi-50)/50)
	}

	macd := indicators.Value(models.IndMACD, 0)
	macdSignal := indicators.Value(models.IndMACDSignal, 0)
	macdScore := 0.0
	if macd > macdSignal {
		macdScore = 1.0
	}

	momentumScore := 0.0
	if indicators.Value(models.IndMomentum, 0) > 0 {
		momentumScore = 1.0
	}

	bbUpper := indicators.Value(models.IndBBUpper, 0)
	bbLower := indicators.Value(models.IndBBLower, 0)
	bbScore := 0.5
	bbUsable := currentPrice > 0 && bbUpper != 0 && bbLower != 0
	if bbUsable {
		switch {
		case currentPrice < bbLower:
			bbScore = 1.0 // oversold
		case currentPrice > bbUpper:
			bbScore = 0.0 // overbought
		}
	}

	value := rsiScore*p.RSIWeight +
		macdScore*p.MACDWeight +
		momentumScore*p.MomentumWeight +
		bbScore*p.BollingerWeight

	score := SubScore{Value: value}
	if len(indicators) == 0 {
		score.Defaulted = true
		score.Reason = "no indicators supplied, scored from defaults"
	} else if !bbUsable {
		score.Defaulted = true
		score.Reason = "bollinger bands unavailable, band position scored neutral"
	}
	return score
}

// ScoreSentiment converts mention counts into a [0,1] ratio, neutral when
// there is no mention data at all.
func (e *Engine) ScoreSentiment(input models.SentimentInput) SubScore {
	positive := input.PositiveMentions
	negative := input.NegativeMentions
	if positive+negative <= 0 {
		return Neutral("no mention data")
	}
	return SubScore{Value: float64(positive) / float64(positive+negative)}
}

var activityScores = map[string]float64{
	models.ActivityAlto:     1.0,
	models.ActivityModerado: 0.7,
	models.ActivityBajo:     0.3,
}

var whaleScores = map[string]float64{
	models.WhaleAcumulacion:  1.0,
	models.WhaleNeutral:      0.5,
	models.WhaleDistribucion: 0.0,
}

// ScoreOnChain averages the institutional-activity and whale-behaviour
// categorical mappings. Unknown categories score 0.5 each.
func (e *Engine) ScoreOnChain(input models.OnChainInput) SubScore {
	activity, activityKnown := activityScores[input.InstitutionalActivity]
	if !activityKnown {
		activity = 0.5
	}
	whale, whaleKnown := whaleScores[input.WhaleBehavior]
	if !whaleKnown {
		whale = 0.5
	}

	score := SubScore{Value: (activity + whale) / 2}
	if !activityKnown && !whaleKnown {
		score.Defaulted = true
		score.Reason = "unknown on-chain categories, scored neutral"
	}
	return score
}
