package provider

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/yourorg/simulation-service/internal/model"
)

// defaultVolatility is the per-bar standard deviation of log returns
const defaultVolatility = 0.002

// basePrices anchor the random walk at a plausible level per instrument
var basePrices = map[string]float64{
	"EURUSD": 1.0850,
	"GBPUSD": 1.2650,
	"USDJPY": 149.50,
	"XAUUSD": 2000.00,
	"BTCUSD": 45000.00,
}

// Synthetic generates reproducible price series from a seeded log random
// walk. Every call builds its own rand.Rand from the configured seed, so
// identical inputs always produce identical bars.
type Synthetic struct {
	Seed       int64
	Volatility float64
}

// NewSynthetic creates a generator with the given seed and the default
// per-bar volatility
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{Seed: seed, Volatility: defaultVolatility}
}

// GetHistory implements the History contract by generating bars covering
// the requested range at the timeframe's interval
func (g *Synthetic) GetHistory(ctx context.Context, symbol string, timeframe model.Timeframe, start, end time.Time) ([]model.PriceBar, error) {
	if !end.After(start) {
		return nil, model.NewDataError("empty date range for %s", symbol)
	}

	interval := timeframe.Duration()
	count := int(end.Sub(start) / interval)
	if count == 0 {
		return nil, model.NewDataError("date range shorter than one %s bar", timeframe)
	}

	return g.generate(symbol, start, interval, count), nil
}

// Generate produces the given number of days of bars ending now, matching
// the provider's best-effort history contract for test fixtures
func (g *Synthetic) Generate(symbol string, timeframe model.Timeframe, days int) []model.PriceBar {
	interval := timeframe.Duration()
	count := int(time.Duration(days) * 24 * time.Hour / interval)
	start := time.Now().UTC().Truncate(interval).Add(-time.Duration(count) * interval)

	return g.generate(symbol, start, interval, count)
}

func (g *Synthetic) generate(symbol string, start time.Time, interval time.Duration, count int) []model.PriceBar {
	rng := rand.New(rand.NewSource(g.Seed))

	volatility := g.Volatility
	if volatility <= 0 {
		volatility = defaultVolatility
	}

	price := basePrices[symbol]
	if price == 0 {
		price = 1.0
	}

	bars := make([]model.PriceBar, 0, count)
	ts := start

	for i := 0; i < count; i++ {
		drift := (rng.Float64()*2 - 1) * volatility / 20
		logReturn := drift + rng.NormFloat64()*volatility
		next := price * math.Exp(logReturn)

		open := price
		close := next

		// High and low bracket open/close with noise bounded by a
		// multiple of the close-to-close move, skewed toward the
		// direction of the move.
		span := math.Abs(close-open) * (1.5 + rng.Float64()*1.5)
		var high, low float64
		if close >= open {
			high = close + rng.Float64()*span*0.3
			low = open - rng.Float64()*span*0.2
		} else {
			high = open + rng.Float64()*span*0.2
			low = close - rng.Float64()*span*0.3
		}
		if low < 0 {
			low = 0
		}

		bars = append(bars, model.PriceBar{
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000 + rng.Float64()*9000,
		})

		price = close
		ts = ts.Add(interval)
	}

	return bars
}
