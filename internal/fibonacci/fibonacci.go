package fibonacci

import (
	"math"

	"cryptointel/models"
)

// Classic retracement ratios. Ratio 0 maps to the trend-favorable extreme
// and ratio 1 to the opposite extreme, regardless of direction.
var retracementRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

// Extension ratios, projected beyond the range in the trend direction.
var extensionRatios = []float64{1.272, 1.618, 2.618, 3.618}

// Ratios considered as pullback entry candidates, in tie-break order.
var entryRatios = []float64{0.382, 0.5, 0.618}

// round8 rounds to 8 fractional digits to accommodate fractional-unit assets.
func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

// CalculateLevels computes retracement and extension prices for a price
// range and trend. Degenerates to flat levels when high == low.
func CalculateLevels(high, low float64, trend string) models.FibonacciLevels {
	priceRange := high - low

	retracements := make(map[float64]float64, len(retracementRatios))
	for _, ratio := range retracementRatios {
		var price float64
		if trend == models.TrendAlcista {
			price = high - priceRange*ratio
		} else {
			price = low + priceRange*ratio
		}
		retracements[ratio] = round8(price)
	}

	extensions := make(map[float64]float64, len(extensionRatios))
	for _, ratio := range extensionRatios {
		var price float64
		if trend == models.TrendAlcista {
			price = high + priceRange*(ratio-1)
		} else {
			price = low - priceRange*(ratio-1)
		}
		extensions[ratio] = round8(price)
	}

	return models.FibonacciLevels{
		Retracements: retracements,
		Extensions:   extensions,
	}
}

// SelectOperationZone picks entry, stop-loss and take-profit prices from the
// computed levels relative to the current price. Entry candidates are the
// 0.382/0.5/0.618 retracements still to be retraced for a pullback entry;
// the one closest to the current price wins, lower ratio first on ties.
// When the price has already traded through every candidate, the zone falls
// back to the 0.786 retracement with a more conservative 1.272 target.
func SelectOperationZone(levels models.FibonacciLevels, currentPrice float64, trend string) (models.OperationZone, bool) {
	if trend != models.TrendAlcista && trend != models.TrendBajista {
		return models.OperationZone{}, false
	}

	ret := levels.Retracements
	ext := levels.Extensions
	bullish := trend == models.TrendAlcista

	entryRatio := -1.0
	entryPrice := 0.0
	bestDistance := math.MaxFloat64
	for _, ratio := range entryRatios {
		price, ok := ret[ratio]
		if !ok {
			continue
		}
		if bullish && price >= currentPrice {
			continue
		}
		if !bullish && price <= currentPrice {
			continue
		}
		if d := math.Abs(price - currentPrice); d < bestDistance {
			bestDistance = d
			entryRatio = ratio
			entryPrice = price
		}
	}

	var zone models.OperationZone
	if entryRatio < 0 {
		// Price already beyond every candidate: enter at the last
		// retracement with the stop at the range extreme.
		zone.Entry = ret[0.786]
		if bullish {
			zone.StopLoss = ret[1]
		} else {
			zone.StopLoss = ret[0]
		}
		zone.TakeProfit = ext[1.272]
		return zone, true
	}

	zone.Entry = entryPrice
	if bullish {
		stop := math.MaxFloat64
		found := false
		for ratio, price := range ret {
			if ratio > entryRatio && price < stop {
				stop = price
				found = true
			}
		}
		if !found {
			stop = ret[1]
		}
		zone.StopLoss = stop
	} else {
		stop := -math.MaxFloat64
		found := false
		for ratio, price := range ret {
			if ratio < entryRatio && price > stop {
				stop = price
				found = true
			}
		}
		if !found {
			stop = ret[0]
		}
		zone.StopLoss = stop
	}
	zone.TakeProfit = ext[1.618]

	return zone, true
}
