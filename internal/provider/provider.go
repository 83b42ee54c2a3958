// Package provider defines the price series contract consumed by the
// backtest engine and its synthetic implementation.
package provider

import (
	"context"
	"time"

	"github.com/yourorg/simulation-service/internal/model"
)

// History supplies an ordered sequence of price bars for a symbol,
// timeframe and date range. Implementations must return bars strictly
// ordered by timestamp with no duplicates, covering the requested range
// best-effort, and fail with a DataError when data is unavailable.
type History interface {
	GetHistory(ctx context.Context, symbol string, timeframe model.Timeframe, start, end time.Time) ([]model.PriceBar, error)
}
