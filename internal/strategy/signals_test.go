package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageCrossSignals(t *testing.T) {
	strat, err := NewMovingAverageCross(map[string]float64{"fast_period": 2, "slow_period": 3})
	require.NoError(t, err)

	t.Run("fast crossing above slow enters long", func(t *testing.T) {
		bars := barsFromCloses([]float64{10, 9, 8, 7, 30})
		assert.True(t, strat.ShouldEnterLong(bars, 4))
		assert.False(t, strat.ShouldEnterShort(bars, 4))
	})

	t.Run("fast crossing below slow enters short", func(t *testing.T) {
		bars := barsFromCloses([]float64{5, 6, 7, 8, 1})
		assert.True(t, strat.ShouldEnterShort(bars, 4))
		assert.False(t, strat.ShouldEnterLong(bars, 4))
	})

	t.Run("no cross means no signal", func(t *testing.T) {
		bars := barsFromCloses([]float64{10, 11, 12, 13, 14})
		assert.False(t, strat.ShouldEnterLong(bars, 4))
		assert.False(t, strat.ShouldEnterShort(bars, 4))
	})
}

func TestRSISignals(t *testing.T) {
	strat, err := NewRSI(map[string]float64{"period": 2, "oversold": 30, "overbought": 70})
	require.NoError(t, err)

	t.Run("leaving the oversold zone enters long", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 90, 80, 85})
		assert.True(t, strat.ShouldEnterLong(bars, 3))
	})

	t.Run("reaching the overbought zone signals exit", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 110, 120, 130})
		assert.True(t, strat.ShouldEnterShort(bars, 3))
		assert.False(t, strat.ShouldEnterLong(bars, 3))
	})

	t.Run("evaluates at the first full period", func(t *testing.T) {
		high, err := NewRSI(map[string]float64{"period": 2, "oversold": 60, "overbought": 90})
		require.NoError(t, err)

		// At index == period the previous RSI is the neutral warm-up 50;
		// with a threshold above 50, rising out of it signals long.
		bars := barsFromCloses([]float64{100, 101, 103})
		assert.False(t, high.ShouldEnterLong(bars, 1))
		assert.True(t, high.ShouldEnterLong(bars, 2))
	})
}

func TestRSIIndicator(t *testing.T) {
	t.Run("saturates at 100 when there are no losses", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 110, 120, 130})
		assert.Equal(t, 100.0, rsi(bars, 2, 3))
	})

	t.Run("neutral during warm-up", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 110})
		assert.Equal(t, 50.0, rsi(bars, 14, 1))
	})

	t.Run("zero when there are no gains", func(t *testing.T) {
		bars := barsFromCloses([]float64{130, 120, 110, 100})
		assert.Equal(t, 0.0, rsi(bars, 2, 3))
	})
}

func TestSMAIndicator(t *testing.T) {
	bars := barsFromCloses([]float64{1, 2, 3, 4, 5})

	assert.InDelta(t, 4.0, sma(bars, 3, 4), 1e-9)
	assert.InDelta(t, 3.0, sma(bars, 5, 4), 1e-9)
	assert.Equal(t, 0.0, sma(bars, 3, 1), "window larger than prefix")
}

func TestBreakoutSignals(t *testing.T) {
	strat, err := NewBreakout(map[string]float64{"lookback_period": 3, "min_breakout_percent": 1})
	require.NoError(t, err)

	t.Run("close above resistance threshold enters long", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 100, 100, 102})
		assert.True(t, strat.ShouldEnterLong(bars, 3))
		assert.False(t, strat.ShouldEnterShort(bars, 3))
	})

	t.Run("close below support threshold enters short", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 100, 100, 98})
		assert.True(t, strat.ShouldEnterShort(bars, 3))
		assert.False(t, strat.ShouldEnterLong(bars, 3))
	})

	t.Run("break inside the margin is no signal", func(t *testing.T) {
		bars := barsFromCloses([]float64{100, 100, 100, 100.5})
		assert.False(t, strat.ShouldEnterLong(bars, 3))
		assert.False(t, strat.ShouldEnterShort(bars, 3))
	})
}
