package strategy

import (
	"github.com/yourorg/simulation-service/internal/model"
)

var rsiDescriptor = Descriptor{
	ID:          "rsi",
	Name:        "RSI",
	Description: "Enters on exits from the oversold zone, closes in the overbought zone",
	Parameters: []ParamSpec{
		{Name: "period", Type: "number", Default: 14, Description: "RSI period"},
		{Name: "oversold", Type: "number", Default: 30, Description: "Oversold threshold"},
		{Name: "overbought", Type: "number", Default: 70, Description: "Overbought threshold"},
	},
}

// RSI signals on the Relative Strength Index leaving its oversold zone or
// entering its overbought zone
type RSI struct {
	baseStrategy
	period     int
	oversold   float64
	overbought float64
}

// NewRSI builds an RSI strategy from its parameter map
func NewRSI(params map[string]float64) (Strategy, error) {
	period, err := intParam(params, "period", 14)
	if err != nil {
		return nil, err
	}
	oversold := floatParam(params, "oversold", 30)
	overbought := floatParam(params, "overbought", 70)

	if oversold <= 0 || overbought >= 100 || oversold >= overbought {
		return nil, model.NewConfigurationError(
			"thresholds must satisfy 0 < oversold < overbought < 100, got %v and %v", oversold, overbought)
	}

	return &RSI{period: period, oversold: oversold, overbought: overbought}, nil
}

// Name returns the strategy name
func (s *RSI) Name() string { return rsiDescriptor.Name }

// Params returns the effective configuration
func (s *RSI) Params() map[string]float64 {
	return map[string]float64{
		"period":     float64(s.period),
		"oversold":   s.oversold,
		"overbought": s.overbought,
	}
}

// ShouldEnterLong signals when the RSI rises back out of the oversold zone.
// At index == period the previous value is the neutral warm-up 50, which
// only passes the oversold check for thresholds of 50 and above.
func (s *RSI) ShouldEnterLong(bars []model.PriceBar, index int) bool {
	if index < s.period {
		return false
	}

	curr := rsi(bars, s.period, index)
	prev := rsi(bars, s.period, index-1)

	return prev <= s.oversold && curr > s.oversold
}

// ShouldEnterShort signals when the RSI reaches the overbought zone
func (s *RSI) ShouldEnterShort(bars []model.PriceBar, index int) bool {
	if index < s.period {
		return false
	}

	return rsi(bars, s.period, index) >= s.overbought
}
