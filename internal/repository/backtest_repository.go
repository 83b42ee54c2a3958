package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
)

// BacktestRepository persists backtest runs and their results
type BacktestRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBacktestRepository creates a new backtest repository
func NewBacktestRepository(db *sqlx.DB, logger *zap.Logger) *BacktestRepository {
	return &BacktestRepository{
		db:     db,
		logger: logger,
	}
}

// CreateRun inserts a new run in running status
func (r *BacktestRepository) CreateRun(
	ctx context.Context,
	id string,
	userID int,
	request *model.BacktestRequest,
) error {
	query := `
		INSERT INTO backtests (
			id, user_id, strategy_id, symbol, timeframe,
			start_date, end_date, initial_balance, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		id,
		userID,
		request.StrategyID,
		request.Symbol,
		request.Timeframe,
		request.StartDate,
		request.EndDate,
		request.InitialBalance,
		model.BacktestStatusRunning,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create backtest run", zap.Error(err), zap.String("id", id))
		return err
	}

	return nil
}

// CompleteRun stores the serialized results and marks the run completed
func (r *BacktestRepository) CompleteRun(
	ctx context.Context,
	id string,
	results model.ResultsDocument,
) error {
	query := `
		UPDATE backtests
		SET status = $1, results = $2, completed_at = $3
		WHERE id = $4
	`

	res, err := r.db.ExecContext(ctx, query, model.BacktestStatusCompleted, results, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to complete backtest run", zap.Error(err), zap.String("id", id))
		return err
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.NewNotFoundError("backtest", id)
	}

	return nil
}

// FailRun records an error message and marks the run failed. No partial
// results are ever stored for a failed run.
func (r *BacktestRepository) FailRun(
	ctx context.Context,
	id string,
	errorMessage string,
) error {
	query := `
		UPDATE backtests
		SET status = $1, error_message = $2, completed_at = $3
		WHERE id = $4
	`

	_, err := r.db.ExecContext(ctx, query, model.BacktestStatusFailed, errorMessage, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to mark backtest run as failed", zap.Error(err), zap.String("id", id))
		return err
	}

	return nil
}

// GetRun retrieves a run by ID
func (r *BacktestRepository) GetRun(ctx context.Context, id string) (*model.BacktestRecord, error) {
	query := `
		SELECT id, user_id, strategy_id, symbol, timeframe, start_date, end_date,
		       initial_balance, status, results, error_message, created_at, completed_at
		FROM backtests
		WHERE id = $1
	`

	var record model.BacktestRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.NewNotFoundError("backtest", id)
		}
		r.logger.Error("Failed to get backtest run", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &record, nil
}

// ListRuns lists a user's runs newest first with pagination
func (r *BacktestRepository) ListRuns(
	ctx context.Context,
	userID int,
	limit int,
	offset int,
) ([]model.BacktestRecord, int, error) {
	countQuery := `SELECT COUNT(*) FROM backtests WHERE user_id = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		r.logger.Error("Failed to count backtest runs", zap.Error(err), zap.Int("userID", userID))
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, strategy_id, symbol, timeframe, start_date, end_date,
		       initial_balance, status, error_message, created_at, completed_at
		FROM backtests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	records := []model.BacktestRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID, limit, offset); err != nil {
		r.logger.Error("Failed to list backtest runs", zap.Error(err), zap.Int("userID", userID))
		return nil, 0, err
	}

	return records, total, nil
}

// DeleteRun deletes a run owned by the user
func (r *BacktestRepository) DeleteRun(ctx context.Context, id string, userID int) error {
	query := `DELETE FROM backtests WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete backtest run", zap.Error(err), zap.String("id", id))
		return err
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.NewNotFoundError("backtest", id)
	}

	return nil
}
