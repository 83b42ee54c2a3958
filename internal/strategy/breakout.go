package strategy

import (
	"github.com/yourorg/simulation-service/internal/model"
)

var breakoutDescriptor = Descriptor{
	ID:          "breakout",
	Name:        "Breakout",
	Description: "Detects closes beyond the recent high/low range",
	Parameters: []ParamSpec{
		{Name: "lookback_period", Type: "number", Default: 20, Description: "Bars to scan for the range"},
		{Name: "min_breakout_percent", Type: "number", Default: 0.5, Description: "Minimum break beyond the range (%)"},
	},
}

// Breakout signals when the close breaks beyond the highest high or
// lowest low of the preceding lookback window by a minimum margin
type Breakout struct {
	baseStrategy
	lookback   int
	minPercent float64
}

// NewBreakout builds a breakout strategy from its parameter map
func NewBreakout(params map[string]float64) (Strategy, error) {
	lookback, err := intParam(params, "lookback_period", 20)
	if err != nil {
		return nil, err
	}
	minPercent := floatParam(params, "min_breakout_percent", 0.5)
	if minPercent < 0 {
		return nil, model.NewConfigurationError("min_breakout_percent must not be negative, got %v", minPercent)
	}

	return &Breakout{lookback: lookback, minPercent: minPercent}, nil
}

// Name returns the strategy name
func (s *Breakout) Name() string { return breakoutDescriptor.Name }

// Params returns the effective configuration
func (s *Breakout) Params() map[string]float64 {
	return map[string]float64{
		"lookback_period":      float64(s.lookback),
		"min_breakout_percent": s.minPercent,
	}
}

// ShouldEnterLong signals when the close breaks above the lookback resistance
func (s *Breakout) ShouldEnterLong(bars []model.PriceBar, index int) bool {
	if index < s.lookback {
		return false
	}

	resistance := highestHigh(bars, index-s.lookback, index)
	threshold := resistance * (1 + s.minPercent/100)

	return bars[index].Close > threshold
}

// ShouldEnterShort signals when the close breaks below the lookback support
func (s *Breakout) ShouldEnterShort(bars []model.PriceBar, index int) bool {
	if index < s.lookback {
		return false
	}

	support := lowestLow(bars, index-s.lookback, index)
	threshold := support * (1 - s.minPercent/100)

	return bars[index].Close < threshold
}
