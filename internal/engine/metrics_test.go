package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/simulation-service/internal/model"
)

func tradeWithPnL(pnl, returnPercent float64) model.Trade {
	return model.Trade{
		Symbol:        "EURUSD",
		Direction:     model.PositionLong,
		ProfitLoss:    pnl,
		ReturnPercent: returnPercent,
	}
}

func TestAnalyzeEmptyLedger(t *testing.T) {
	perf := Analyze(nil, 10000, 10000)

	assert.Equal(t, 0, perf.TotalTrades)
	assert.Equal(t, 0.0, perf.WinRate)
	assert.Equal(t, 0.0, perf.SharpeRatio)
	assert.Equal(t, 0.0, perf.ProfitFactor)
	assert.Equal(t, 0.0, perf.AverageWin)
	assert.Equal(t, 0.0, perf.AverageLoss)
	assert.Equal(t, 0.0, perf.TotalReturn)
}

func TestAnalyzeMixedLedger(t *testing.T) {
	trades := []model.Trade{
		tradeWithPnL(100, 10),
		tradeWithPnL(300, 30),
		tradeWithPnL(-50, -5),
		tradeWithPnL(-150, -15),
	}

	perf := Analyze(trades, 10000, 10200)

	assert.Equal(t, 4, perf.TotalTrades)
	assert.Equal(t, 2, perf.WinningTrades)
	assert.Equal(t, 2, perf.LosingTrades)
	assert.InDelta(t, 50.0, perf.WinRate, 1e-9)

	assert.InDelta(t, 200.0, perf.AverageWin, 1e-9)
	assert.InDelta(t, 100.0, perf.AverageLoss, 1e-9)
	assert.InDelta(t, 300.0, perf.LargestWin, 1e-9)
	assert.InDelta(t, 150.0, perf.LargestLoss, 1e-9)
	assert.InDelta(t, 2.0, perf.ProfitFactor, 1e-9)

	assert.InDelta(t, 200.0, perf.TotalReturn, 1e-9)
	assert.InDelta(t, 2.0, perf.TotalReturnPercent, 1e-9)

	// mean return 5, population stddev sqrt(287.5)
	assert.InDelta(t, 0.2948839, perf.SharpeRatio, 1e-6)
}

func TestAnalyzeBreakEvenCountsAsLoss(t *testing.T) {
	trades := []model.Trade{
		tradeWithPnL(100, 10),
		tradeWithPnL(0, 0),
	}

	perf := Analyze(trades, 10000, 10100)

	assert.Equal(t, 1, perf.WinningTrades)
	assert.Equal(t, 1, perf.LosingTrades)
	assert.InDelta(t, 50.0, perf.WinRate, 1e-9)
	assert.Equal(t, 0.0, perf.AverageLoss)
	assert.Equal(t, 0.0, perf.LargestLoss)

	// Zero total loss means the profit factor is undefined, reported as 0.
	assert.Equal(t, 0.0, perf.ProfitFactor)
}

func TestAnalyzeAllWinnersProfitFactorZero(t *testing.T) {
	trades := []model.Trade{
		tradeWithPnL(100, 10),
		tradeWithPnL(200, 20),
	}

	perf := Analyze(trades, 10000, 10300)

	assert.InDelta(t, 100.0, perf.WinRate, 1e-9)
	assert.Equal(t, 0.0, perf.ProfitFactor)
}

func TestSharpeRatioFallbacks(t *testing.T) {
	// Fewer than two trades.
	assert.Equal(t, 0.0, sharpeRatio([]model.Trade{tradeWithPnL(100, 10)}))

	// Identical returns give a zero deviation.
	trades := []model.Trade{
		tradeWithPnL(100, 10),
		tradeWithPnL(100, 10),
		tradeWithPnL(100, 10),
	}
	assert.Equal(t, 0.0, sharpeRatio(trades))
}

func TestSharpeRatioPopulationDeviation(t *testing.T) {
	trades := []model.Trade{
		tradeWithPnL(100, 10),
		tradeWithPnL(-20, -2),
	}

	// mean 4, population stddev 6 -> 4/6
	assert.InDelta(t, 4.0/6.0, sharpeRatio(trades), 1e-9)
}

func TestWinRateIdentity(t *testing.T) {
	for _, tc := range []struct {
		wins, losses int
	}{
		{0, 5}, {5, 0}, {3, 7}, {1, 1},
	} {
		trades := make([]model.Trade, 0, tc.wins+tc.losses)
		for i := 0; i < tc.wins; i++ {
			trades = append(trades, tradeWithPnL(10, 1))
		}
		for i := 0; i < tc.losses; i++ {
			trades = append(trades, tradeWithPnL(-10, -1))
		}

		perf := Analyze(trades, 10000, 10000)
		expected := float64(tc.wins) / float64(tc.wins+tc.losses) * 100
		assert.InDelta(t, expected, perf.WinRate, 1e-9)
		assert.GreaterOrEqual(t, perf.WinRate, 0.0)
		assert.LessOrEqual(t, perf.WinRate, 100.0)
	}
}
