package strategy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/simulation-service/internal/model"
)

// barsFromCloses builds an hourly series where every OHLC field tracks the
// close, which keeps indicator inputs easy to reason about
func barsFromCloses(closes []float64) []model.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

// randomWalkBars builds a seeded random series for property tests
func randomWalkBars(n int, seed int64) []model.PriceBar {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + rng.NormFloat64()*0.01
		closes[i] = price
	}
	return barsFromCloses(closes)
}

func TestRegistryCreateUnknownStrategy(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Create("martingale", nil)
	require.Error(t, err)

	var configErr *model.ConfigurationError
	assert.ErrorAs(t, err, &configErr)
}

func TestRegistryListsBuiltins(t *testing.T) {
	registry := NewRegistry()

	list := registry.List()
	require.Len(t, list, 3)
	assert.Equal(t, "breakout", list[0].ID)
	assert.Equal(t, "ma_cross", list[1].ID)
	assert.Equal(t, "rsi", list[2].ID)

	for _, desc := range list {
		assert.NotEmpty(t, desc.Name)
		assert.NotEmpty(t, desc.Parameters)
	}
}

func TestRegistryCreateAppliesDefaults(t *testing.T) {
	registry := NewRegistry()

	strat, err := registry.Create("ma_cross", nil)
	require.NoError(t, err)

	assert.Equal(t, float64(10), strat.Params()["fast_period"])
	assert.Equal(t, float64(20), strat.Params()["slow_period"])
}

func TestDefaultPositionSize(t *testing.T) {
	registry := NewRegistry()

	strat, err := registry.Create("rsi", nil)
	require.NoError(t, err)

	assert.InDelta(t, 200.0, strat.PositionSize(10000, 2), 1e-9)
	assert.InDelta(t, 10000.0, strat.PositionSize(10000, 100), 1e-9)
}

func TestInvalidParameters(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name   string
		id     string
		params map[string]float64
	}{
		{"ma_cross fast >= slow", "ma_cross", map[string]float64{"fast_period": 20, "slow_period": 10}},
		{"ma_cross negative period", "ma_cross", map[string]float64{"fast_period": -5}},
		{"ma_cross fractional period", "ma_cross", map[string]float64{"fast_period": 2.5}},
		{"rsi inverted thresholds", "rsi", map[string]float64{"oversold": 70, "overbought": 30}},
		{"rsi threshold out of range", "rsi", map[string]float64{"overbought": 120}},
		{"breakout negative margin", "breakout", map[string]float64{"min_breakout_percent": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Create(tt.id, tt.params)
			require.Error(t, err)

			var configErr *model.ConfigurationError
			assert.ErrorAs(t, err, &configErr)
		})
	}
}

// Decisions at index i must not change when bars strictly after i are
// mutated: strategies may only see the prefix up to the evaluated index.
func TestNoLookAhead(t *testing.T) {
	registry := NewRegistry()
	bars := randomWalkBars(120, 7)

	for _, id := range []string{"ma_cross", "rsi", "breakout"} {
		t.Run(id, func(t *testing.T) {
			strat, err := registry.Create(id, nil)
			require.NoError(t, err)

			for i := 25; i < 80; i++ {
				wantLong := strat.ShouldEnterLong(bars, i)
				wantShort := strat.ShouldEnterShort(bars, i)

				mutated := make([]model.PriceBar, len(bars))
				copy(mutated, bars)
				rng := rand.New(rand.NewSource(int64(i)))
				for j := i + 1; j < len(mutated); j++ {
					price := 1 + rng.Float64()*10000
					mutated[j].Open = price
					mutated[j].High = price * 2
					mutated[j].Low = price / 2
					mutated[j].Close = price
				}

				assert.Equal(t, wantLong, strat.ShouldEnterLong(mutated, i), "long decision changed at index %d", i)
				assert.Equal(t, wantShort, strat.ShouldEnterShort(mutated, i), "short decision changed at index %d", i)
			}
		})
	}
}

// A lookback longer than the available history is no signal, not an error
func TestWarmupYieldsNoSignal(t *testing.T) {
	registry := NewRegistry()
	bars := barsFromCloses([]float64{100, 101, 102, 103, 104})

	for _, id := range []string{"ma_cross", "rsi", "breakout"} {
		strat, err := registry.Create(id, nil)
		require.NoError(t, err)

		for i := range bars {
			assert.False(t, strat.ShouldEnterLong(bars, i), "%s long signal during warm-up at %d", id, i)
			assert.False(t, strat.ShouldEnterShort(bars, i), "%s short signal during warm-up at %d", id, i)
		}
	}
}
