package strategy

import (
	"github.com/yourorg/simulation-service/internal/model"
)

var maCrossDescriptor = Descriptor{
	ID:          "ma_cross",
	Name:        "Moving Average Cross",
	Description: "Enters when the fast moving average crosses the slow one",
	Parameters: []ParamSpec{
		{Name: "fast_period", Type: "number", Default: 10, Description: "Fast SMA period"},
		{Name: "slow_period", Type: "number", Default: 20, Description: "Slow SMA period"},
	},
}

// MovingAverageCross signals on crossovers of a fast and a slow simple
// moving average of closing prices
type MovingAverageCross struct {
	baseStrategy
	fastPeriod int
	slowPeriod int
}

// NewMovingAverageCross builds an MA cross strategy from its parameter map
func NewMovingAverageCross(params map[string]float64) (Strategy, error) {
	fast, err := intParam(params, "fast_period", 10)
	if err != nil {
		return nil, err
	}
	slow, err := intParam(params, "slow_period", 20)
	if err != nil {
		return nil, err
	}
	if fast >= slow {
		return nil, model.NewConfigurationError("fast_period (%d) must be smaller than slow_period (%d)", fast, slow)
	}

	return &MovingAverageCross{fastPeriod: fast, slowPeriod: slow}, nil
}

// Name returns the strategy name
func (s *MovingAverageCross) Name() string { return maCrossDescriptor.Name }

// Params returns the effective configuration
func (s *MovingAverageCross) Params() map[string]float64 {
	return map[string]float64{
		"fast_period": float64(s.fastPeriod),
		"slow_period": float64(s.slowPeriod),
	}
}

// ShouldEnterLong signals when the fast average crosses above the slow one
func (s *MovingAverageCross) ShouldEnterLong(bars []model.PriceBar, index int) bool {
	if index < s.slowPeriod {
		return false
	}

	fastCurr := sma(bars, s.fastPeriod, index)
	slowCurr := sma(bars, s.slowPeriod, index)
	fastPrev := sma(bars, s.fastPeriod, index-1)
	slowPrev := sma(bars, s.slowPeriod, index-1)

	return fastCurr > slowCurr && fastPrev <= slowPrev
}

// ShouldEnterShort signals when the fast average crosses below the slow one
func (s *MovingAverageCross) ShouldEnterShort(bars []model.PriceBar, index int) bool {
	if index < s.slowPeriod {
		return false
	}

	fastCurr := sma(bars, s.fastPeriod, index)
	slowCurr := sma(bars, s.slowPeriod, index)
	fastPrev := sma(bars, s.fastPeriod, index-1)
	slowPrev := sma(bars, s.slowPeriod, index-1)

	return fastCurr < slowCurr && fastPrev >= slowPrev
}
