package engine

import (
	"math"

	"github.com/yourorg/simulation-service/internal/model"
)

// Performance holds the aggregate statistics derived from a completed
// trade ledger. Every ratio has a documented zero-value fallback instead
// of a silent division by zero.
type Performance struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64

	TotalReturn        float64
	TotalReturnPercent float64

	SharpeRatio  float64
	ProfitFactor float64
	AverageWin   float64
	AverageLoss  float64
	LargestWin   float64
	LargestLoss  float64
}

// Analyze computes the performance statistics in a single pass over the
// trade ledger. Losses are reported as positive magnitudes. A break-even
// trade counts as a loss.
func Analyze(trades []model.Trade, initialBalance, finalBalance float64) Performance {
	perf := Performance{
		TotalTrades: len(trades),
		TotalReturn: finalBalance - initialBalance,
	}
	if initialBalance > 0 {
		perf.TotalReturnPercent = perf.TotalReturn / initialBalance * 100
	}

	var winSum, lossSum float64
	for _, t := range trades {
		if t.IsWin() {
			perf.WinningTrades++
			winSum += t.ProfitLoss
			if t.ProfitLoss > perf.LargestWin {
				perf.LargestWin = t.ProfitLoss
			}
		} else {
			perf.LosingTrades++
			loss := -t.ProfitLoss
			lossSum += loss
			if loss > perf.LargestLoss {
				perf.LargestLoss = loss
			}
		}
	}

	if perf.TotalTrades > 0 {
		perf.WinRate = float64(perf.WinningTrades) / float64(perf.TotalTrades) * 100
	}
	if perf.WinningTrades > 0 {
		perf.AverageWin = winSum / float64(perf.WinningTrades)
	}
	if perf.LosingTrades > 0 {
		perf.AverageLoss = lossSum / float64(perf.LosingTrades)
	}
	if lossSum > 0 {
		perf.ProfitFactor = winSum / lossSum
	}

	perf.SharpeRatio = sharpeRatio(trades)

	return perf
}

// sharpeRatio computes mean over population standard deviation of the
// per-trade percent returns. Fewer than two trades, or a zero deviation,
// yields 0.
func sharpeRatio(trades []model.Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	mean := 0.0
	for _, t := range trades {
		mean += t.ReturnPercent
	}
	mean /= float64(len(trades))

	variance := 0.0
	for _, t := range trades {
		d := t.ReturnPercent - mean
		variance += d * d
	}
	variance /= float64(len(trades))

	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}

	return mean / stddev
}
