package fibonacci

import (
	"cryptointel/models"
)

// AnalyzePriceStructure derives the trend and the reference range from
// recent swing highs and lows. The last two extremes are compared against
// the earlier ones: higher highs with higher lows is bullish, lower highs
// with lower lows is bearish, anything else is neutral. Needs at least
// three of each so the earlier window is non-empty.
func AnalyzePriceStructure(highs, lows []float64) (trend string, high, low float64, ok bool) {
	if len(highs) < 3 || len(lows) < 3 {
		return models.TrendNeutral, 0, 0, false
	}

	lastMax := maxOf(highs[len(highs)-2:])
	priorMax := maxOf(highs[:len(highs)-2])
	lastMin := minOf(lows[len(lows)-2:])
	priorMin := minOf(lows[:len(lows)-2])

	switch {
	case lastMax > priorMax && lastMin > priorMin:
		return models.TrendAlcista, lastMax, lastMin, true
	case lastMax < priorMax && lastMin < priorMin:
		return models.TrendBajista, priorMax, lastMin, true
	default:
		return models.TrendNeutral, 0, 0, false
	}
}

// Recommend runs the full Fibonacci pipeline for a snapshot: price
// structure, level computation and zone selection. It also grades the
// signal quality by RSI confluence with the structural trend. A false
// return means no zone is available (neutral structure or missing data)
// and the caller should use its fallback method.
func Recommend(snapshot models.MarketSnapshot, indicators models.IndicatorSet) (models.FibonacciAnalysis, bool) {
	price := snapshot.CurrentPrice
	if price <= 0 {
		return models.FibonacciAnalysis{}, false
	}

	trend, high, low, ok := AnalyzePriceStructure(snapshot.RecentHighs, snapshot.RecentLows)
	if !ok {
		return models.FibonacciAnalysis{}, false
	}

	levels := CalculateLevels(high, low, trend)
	zone, ok := SelectOperationZone(levels, price, trend)
	if !ok {
		return models.FibonacciAnalysis{}, false
	}

	rsi := indicators.Value(models.IndRSI, 50)
	quality := models.SignalQualityMedia
	if (trend == models.TrendAlcista && rsi < 40) || (trend == models.TrendBajista && rsi > 60) {
		quality = models.SignalQualityAlta
	}

	return models.FibonacciAnalysis{
		Trend:         trend,
		SignalQuality: quality,
		Levels:        levels,
		Zone:          zone,
		ReferenceHigh: high,
		ReferenceLow:  low,
		RSIConfluence: rsi,
	}, true
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
