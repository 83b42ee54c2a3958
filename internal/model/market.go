package model

import (
	"time"
)

// Timeframe represents a supported candle interval
type Timeframe string

// Supported timeframes
const (
	TimeframeM1  Timeframe = "1m"
	TimeframeM5  Timeframe = "5m"
	TimeframeM15 Timeframe = "15m"
	TimeframeM30 Timeframe = "30m"
	TimeframeH1  Timeframe = "1h"
	TimeframeH4  Timeframe = "4h"
	TimeframeD1  Timeframe = "1d"
)

var timeframeDurations = map[Timeframe]time.Duration{
	TimeframeM1:  time.Minute,
	TimeframeM5:  5 * time.Minute,
	TimeframeM15: 15 * time.Minute,
	TimeframeM30: 30 * time.Minute,
	TimeframeH1:  time.Hour,
	TimeframeH4:  4 * time.Hour,
	TimeframeD1:  24 * time.Hour,
}

// ParseTimeframe validates a timeframe string
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframeDurations[tf]; !ok {
		return "", NewConfigurationError("unsupported timeframe: %s", s)
	}
	return tf, nil
}

// IsValid reports whether the timeframe is one of the supported intervals
func (tf Timeframe) IsValid() bool {
	_, ok := timeframeDurations[tf]
	return ok
}

// Duration returns the length of one bar of this timeframe
func (tf Timeframe) Duration() time.Duration {
	return timeframeDurations[tf]
}

// PriceBar represents a single OHLCV candle. Bars are immutable once
// produced and strictly ordered by timestamp within a series.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp" db:"bar_time"`
	Open      float64   `json:"open" db:"open"`
	High      float64   `json:"high" db:"high"`
	Low       float64   `json:"low" db:"low"`
	Close     float64   `json:"close" db:"close"`
	Volume    float64   `json:"volume" db:"volume"`
}

// MarketDataQuery represents a query for historical bars
type MarketDataQuery struct {
	Symbol    string     `json:"symbol" form:"symbol" binding:"required"`
	Timeframe string     `json:"timeframe" form:"timeframe" binding:"required"`
	StartDate *time.Time `json:"start_date" form:"start_date"`
	EndDate   *time.Time `json:"end_date" form:"end_date"`
	Limit     *int       `json:"limit" form:"limit"`
}

// DateRange represents the available range of data for a symbol/timeframe
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SeedDataRequest is the input for seeding synthetic bars into the market
// data store
type SeedDataRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	Timeframe string `json:"timeframe" binding:"required,timeframe"`
	Days      int    `json:"days" binding:"required,gt=0,lte=3650"`
	Seed      *int64 `json:"seed,omitempty"`
}
