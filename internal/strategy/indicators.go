package strategy

import (
	"github.com/yourorg/simulation-service/internal/model"
)

// Indicator helpers. Each is recomputed from the visible bar prefix on
// every call so no state can leak information from future bars. All of
// them treat an insufficient lookback as "no value" rather than an error.

// sma computes the simple moving average of closes over the period ending
// at endIndex inclusive. Returns 0 when the window does not fit.
func sma(bars []model.PriceBar, period, endIndex int) float64 {
	if period <= 0 || endIndex < period-1 || endIndex >= len(bars) {
		return 0
	}

	sum := 0.0
	for i := endIndex - period + 1; i <= endIndex; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}

// rsi computes the Relative Strength Index over the period ending at
// endIndex inclusive. Returns the neutral value 50 during warm-up. A zero
// average loss saturates the index at 100 instead of dividing by zero.
func rsi(bars []model.PriceBar, period, endIndex int) float64 {
	if period <= 0 || endIndex < period || endIndex >= len(bars) {
		return 50
	}

	var gainSum, lossSum float64
	for i := endIndex - period + 1; i <= endIndex; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}

	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// highestHigh returns the maximum high over bars[from:to] (to exclusive)
func highestHigh(bars []model.PriceBar, from, to int) float64 {
	highest := bars[from].High
	for i := from + 1; i < to; i++ {
		if bars[i].High > highest {
			highest = bars[i].High
		}
	}
	return highest
}

// lowestLow returns the minimum low over bars[from:to] (to exclusive)
func lowestLow(bars []model.PriceBar, from, to int) float64 {
	lowest := bars[from].Low
	for i := from + 1; i < to; i++ {
		if bars[i].Low < lowest {
			lowest = bars[i].Low
		}
	}
	return lowest
}
