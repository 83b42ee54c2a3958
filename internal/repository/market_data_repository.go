package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
)

// MarketDataRepository reads historical price bars from the market data
// store. It satisfies the provider.History contract consumed by the
// backtest service.
type MarketDataRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *sqlx.DB, logger *zap.Logger) *MarketDataRepository {
	return &MarketDataRepository{
		db:     db,
		logger: logger,
	}
}

// GetHistory retrieves the bars for a symbol and timeframe inside the
// date range, ordered by time
func (r *MarketDataRepository) GetHistory(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	start time.Time,
	end time.Time,
) ([]model.PriceBar, error) {
	query := `
		SELECT bar_time, open, high, low, close, volume
		FROM market_data
		WHERE symbol = $1 AND timeframe = $2
		  AND bar_time >= $3 AND bar_time < $4
		ORDER BY bar_time
	`

	var bars []model.PriceBar
	err := r.db.SelectContext(ctx, &bars, query, symbol, string(timeframe), start, end)
	if err != nil {
		r.logger.Error("Failed to get market data",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", string(timeframe)))
		return nil, model.NewDataError("market data query failed for %s/%s: %v", symbol, timeframe, err)
	}

	if len(bars) == 0 {
		return nil, model.NewDataError("no market data for %s/%s between %s and %s",
			symbol, timeframe, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return bars, nil
}

// InsertBars inserts a batch of bars inside one transaction
func (r *MarketDataRepository) InsertBars(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	bars []model.PriceBar,
) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO market_data (symbol, timeframe, bar_time, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timeframe, bar_time) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, string(timeframe),
			bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			r.logger.Error("Failed to insert bar",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.Time("barTime", bar.Timestamp))
			return err
		}
	}

	return tx.Commit()
}

// DeleteBars removes all bars for the given symbols and timeframe and
// returns the number of rows removed
func (r *MarketDataRepository) DeleteBars(
	ctx context.Context,
	symbols []string,
	timeframe model.Timeframe,
) (int64, error) {
	query := `DELETE FROM market_data WHERE symbol = ANY($1) AND timeframe = $2`

	res, err := r.db.ExecContext(ctx, query, pq.Array(symbols), string(timeframe))
	if err != nil {
		r.logger.Error("Failed to delete market data",
			zap.Error(err),
			zap.Strings("symbols", symbols),
			zap.String("timeframe", string(timeframe)))
		return 0, err
	}

	removed, _ := res.RowsAffected()
	return removed, nil
}

// HasData checks whether any bars exist for a symbol and timeframe
func (r *MarketDataRepository) HasData(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM market_data
			WHERE symbol = $1 AND timeframe = $2
			LIMIT 1
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, symbol, string(timeframe))
	if err != nil {
		r.logger.Error("Failed to check if market data exists",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", string(timeframe)))
		return false, err
	}

	return exists, nil
}

// GetDataRange returns the date range of available data for a symbol and
// timeframe
func (r *MarketDataRepository) GetDataRange(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
) (*model.DateRange, error) {
	query := `
		SELECT
			MIN(bar_time) as start_date,
			MAX(bar_time) as end_date
		FROM market_data
		WHERE symbol = $1 AND timeframe = $2
	`

	var result struct {
		StartDate *time.Time `db:"start_date"`
		EndDate   *time.Time `db:"end_date"`
	}

	err := r.db.GetContext(ctx, &result, query, symbol, string(timeframe))
	if err != nil {
		r.logger.Error("Failed to get data range",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", string(timeframe)))
		return nil, err
	}

	if result.StartDate == nil || result.EndDate == nil {
		return nil, model.NewDataError("no market data for %s/%s", symbol, timeframe)
	}

	return &model.DateRange{Start: *result.StartDate, End: *result.EndDate}, nil
}
