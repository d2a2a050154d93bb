package calculate

import (
	"math"

	"cryptointel/internal/config"
	"cryptointel/models"
)

// CalculateRSI computes the RSI with Wilder smoothing.
func CalculateRSI(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 50.0 // Default value if not enough data
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			avgGain = (avgGain*float64(period-1) + change) / float64(period)
			avgLoss = (avgLoss * float64(period-1)) / float64(period)
		} else {
			avgGain = (avgGain * float64(period-1)) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - change) / float64(period)
		}
	}

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// CalculateEMA computes an exponential moving average over prices.
func CalculateEMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1] // Return last price if not enough data
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}

	return ema
}

// CalculateMACD returns the MACD line, signal line and histogram.
func CalculateMACD(candles []models.Candle, fastPeriod, slowPeriod, signalPeriod int) (float64, float64, float64) {
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	// Cannot calculate MACD with insufficient data
	if len(closes) < slowPeriod+signalPeriod {
		return 0, 0, 0
	}

	macdLine := CalculateEMA(closes, fastPeriod) - CalculateEMA(closes, slowPeriod)

	// Signal line is the EMA of the MACD history
	macdHistory := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		window := closes[:i+1]
		macdHistory = append(macdHistory, CalculateEMA(window, fastPeriod)-CalculateEMA(window, slowPeriod))
	}

	signalLine := 0.0
	if len(macdHistory) >= signalPeriod {
		signalLine = CalculateEMA(macdHistory, signalPeriod)
	}

	return macdLine, signalLine, macdLine - signalLine
}

// CalculateBollingerBands returns the upper, middle and lower bands.
func CalculateBollingerBands(candles []models.Candle, period int, stdDev float64) (float64, float64, float64) {
	if len(candles) == 0 {
		return 0, 0, 0
	}
	if len(candles) < period {
		last := candles[len(candles)-1].Close
		return last, last, last // Return last close if not enough data
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	middle := sum / float64(period)

	var variance float64
	for i := len(candles) - period; i < len(candles); i++ {
		variance += math.Pow(candles[i].Close-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	return middle + sd*stdDev, middle, middle - sd*stdDev
}

// CalculateATR computes the average true range.
func CalculateATR(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}

	var trueRanges []float64
	for i := 1; i < len(candles); i++ {
		// True Range is the greatest of high-low, |high-prevClose|
		// and |low-prevClose|.
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)

		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	periodToUse := period
	if len(trueRanges) < period {
		periodToUse = len(trueRanges)
	}

	var sum float64
	for i := len(trueRanges) - periodToUse; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}

	return sum / float64(periodToUse)
}

// CalculateMomentum is the close change over the last n periods.
func CalculateMomentum(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}
	return candles[len(candles)-1].Close - candles[len(candles)-1-period].Close
}

// BuildIndicatorSet computes the full indicator set the decision engine
// consumes. Returns nil when there are too few candles to say anything.
func BuildIndicatorSet(candles []models.Candle, cfg *config.Config) models.IndicatorSet {
	if len(candles) < 5 {
		return nil
	}

	rsi := CalculateRSI(candles, cfg.RSIPeriod)
	macd, macdSignal, _ := CalculateMACD(candles, cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod)
	bbUpper, bbMiddle, bbLower := CalculateBollingerBands(candles, cfg.BBPeriod, cfg.BBStdDev)
	atr := CalculateATR(candles, cfg.ATRPeriod)
	momentum := CalculateMomentum(candles, cfg.MomentumPeriod)

	return models.IndicatorSet{
		models.IndRSI:        rsi,
		models.IndMACD:       macd,
		models.IndMACDSignal: macdSignal,
		models.IndMomentum:   momentum,
		models.IndBBUpper:    bbUpper,
		models.IndBBMiddle:   bbMiddle,
		models.IndBBLower:    bbLower,
		models.IndATR:        atr,
	}
}

// RecentExtremes collects swing highs and lows over the lookback window,
// feeding the price-structure analysis. The window is split into segments
// of five candles and the extreme of each segment is taken.
func RecentExtremes(candles []models.Candle, lookback int) (highs, lows []float64) {
	if lookback <= 0 || len(candles) == 0 {
		return nil, nil
	}
	if lookback > len(candles) {
		lookback = len(candles)
	}

	window := candles[len(candles)-lookback:]
	const segment = 5
	for start := 0; start < len(window); start += segment {
		end := start + segment
		if end > len(window) {
			end = len(window)
		}
		high := window[start].High
		low := window[start].Low
		for _, c := range window[start+1 : end] {
			if c.High > high {
				high = c.High
			}
			if c.Low < low {
				low = c.Low
			}
		}
		highs = append(highs, high)
		lows = append(lows, low)
	}

	return highs, lows
}
