package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/engine"
	"github.com/yourorg/simulation-service/internal/event"
	"github.com/yourorg/simulation-service/internal/model"
	"github.com/yourorg/simulation-service/internal/provider"
	"github.com/yourorg/simulation-service/internal/strategy"
)

// Data sources for backtest bars
const (
	DataSourceHistorical = "historical"
	DataSourceSynthetic  = "synthetic"
)

// BacktestStore persists backtest runs. Implemented by
// repository.BacktestRepository.
type BacktestStore interface {
	CreateRun(ctx context.Context, id string, userID int, request *model.BacktestRequest) error
	CompleteRun(ctx context.Context, id string, results model.ResultsDocument) error
	FailRun(ctx context.Context, id string, errorMessage string) error
	GetRun(ctx context.Context, id string) (*model.BacktestRecord, error)
	ListRuns(ctx context.Context, userID int, limit, offset int) ([]model.BacktestRecord, int, error)
	DeleteRun(ctx context.Context, id string, userID int) error
}

// BacktestService validates backtest configurations, assembles the data
// and strategy, drives the engine and persists the outcome. A run either
// produces a complete result or a recorded failure, never both.
type BacktestService struct {
	registry    *strategy.Registry
	history     provider.History
	store       BacktestStore
	engine      *engine.Engine
	producer    *event.Producer
	eventsTopic string
	logger      *zap.Logger
}

// NewBacktestService creates a backtest service. The store and producer
// may be nil; runs then execute without persistence or events.
func NewBacktestService(
	registry *strategy.Registry,
	history provider.History,
	store BacktestStore,
	producer *event.Producer,
	eventsTopic string,
	logger *zap.Logger,
) *BacktestService {
	return &BacktestService{
		registry:    registry,
		history:     history,
		store:       store,
		engine:      engine.New(logger),
		producer:    producer,
		eventsTopic: eventsTopic,
		logger:      logger,
	}
}

// RunBacktest executes a backtest synchronously and returns its result.
// Configuration and data problems surface before the simulation loop
// starts; no partial result is ever returned.
func (s *BacktestService) RunBacktest(
	ctx context.Context,
	userID int,
	request *model.BacktestRequest,
) (*model.BacktestResult, error) {
	timeframe, strat, err := s.validateRequest(request)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if s.store != nil {
		if err := s.store.CreateRun(ctx, runID, userID, request); err != nil {
			return nil, err
		}
	}

	result, err := s.execute(ctx, request, timeframe, strat)
	if err != nil {
		s.failRun(ctx, runID, userID, request, err)
		return nil, err
	}

	if s.store != nil {
		doc, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			s.failRun(ctx, runID, userID, request, marshalErr)
			return nil, marshalErr
		}
		if err := s.store.CompleteRun(ctx, runID, doc); err != nil {
			s.logger.Error("Failed to persist backtest results",
				zap.Error(err),
				zap.String("backtestID", runID))
		}
	}

	if s.producer != nil {
		if err := s.producer.PublishBacktestCompleted(ctx, s.eventsTopic, runID, userID, result); err != nil {
			s.logger.Warn("Failed to publish backtest completion event",
				zap.Error(err),
				zap.String("backtestID", runID))
		}
	}

	s.logger.Info("Backtest completed",
		zap.String("backtestID", runID),
		zap.String("strategy", request.StrategyID),
		zap.String("symbol", request.Symbol),
		zap.Int("totalTrades", result.TotalTrades),
		zap.Float64("finalBalance", result.FinalBalance))

	return result, nil
}

// validateRequest checks the configuration and instantiates the strategy
func (s *BacktestService) validateRequest(request *model.BacktestRequest) (model.Timeframe, strategy.Strategy, error) {
	timeframe, err := model.ParseTimeframe(request.Timeframe)
	if err != nil {
		return "", nil, err
	}

	if !request.EndDate.After(request.StartDate) {
		return "", nil, model.NewConfigurationError("end_date must be after start_date")
	}
	if request.InitialBalance <= 0 {
		return "", nil, model.NewConfigurationError("initial_balance must be positive, got %v", request.InitialBalance)
	}
	if request.RiskPerTradePercent <= 0 || request.RiskPerTradePercent > 100 {
		return "", nil, model.NewConfigurationError("risk_per_trade_percent must be in (0, 100], got %v", request.RiskPerTradePercent)
	}

	source := request.DataSource
	if source != "" && source != DataSourceHistorical && source != DataSourceSynthetic {
		return "", nil, model.NewConfigurationError("unknown data source: %s", source)
	}

	strat, err := s.registry.Create(request.StrategyID, request.StrategyParams)
	if err != nil {
		return "", nil, err
	}

	return timeframe, strat, nil
}

// execute fetches the bars and runs the simulation
func (s *BacktestService) execute(
	ctx context.Context,
	request *model.BacktestRequest,
	timeframe model.Timeframe,
	strat strategy.Strategy,
) (*model.BacktestResult, error) {
	bars, err := s.loadBars(ctx, request, timeframe)
	if err != nil {
		return nil, err
	}

	run, err := s.engine.Run(bars, strat, request.Symbol, request.InitialBalance, request.RiskPerTradePercent)
	if err != nil {
		return nil, err
	}

	perf := engine.Analyze(run.Trades, request.InitialBalance, run.FinalBalance)

	return &model.BacktestResult{
		StrategyID:         request.StrategyID,
		StrategyName:       strat.Name(),
		StrategyParams:     strat.Params(),
		Symbol:             request.Symbol,
		Timeframe:          timeframe,
		StartDate:          request.StartDate,
		EndDate:            request.EndDate,
		TotalTrades:        perf.TotalTrades,
		WinningTrades:      perf.WinningTrades,
		LosingTrades:       perf.LosingTrades,
		WinRate:            perf.WinRate,
		InitialBalance:     request.InitialBalance,
		FinalBalance:       run.FinalBalance,
		TotalReturn:        perf.TotalReturn,
		TotalReturnPercent: perf.TotalReturnPercent,
		MaxDrawdown:        run.MaxDrawdown,
		MaxDrawdownPercent: run.MaxDrawdownPercent,
		SharpeRatio:        perf.SharpeRatio,
		ProfitFactor:       perf.ProfitFactor,
		AverageWin:         perf.AverageWin,
		AverageLoss:        perf.AverageLoss,
		LargestWin:         perf.LargestWin,
		LargestLoss:        perf.LargestLoss,
		EquityCurve:        run.EquityCurve,
		Trades:             run.Trades,
		OpenPosition:       run.OpenPosition,
	}, nil
}

// loadBars materializes the bar sequence from the configured data source
func (s *BacktestService) loadBars(
	ctx context.Context,
	request *model.BacktestRequest,
	timeframe model.Timeframe,
) ([]model.PriceBar, error) {
	if request.DataSource == DataSourceSynthetic {
		seed := time.Now().UnixNano()
		if request.Seed != nil {
			seed = *request.Seed
		}
		generator := provider.NewSynthetic(seed)
		return generator.GetHistory(ctx, request.Symbol, timeframe, request.StartDate, request.EndDate)
	}

	if s.history == nil {
		return nil, model.NewDataError("no historical data source configured")
	}

	return s.history.GetHistory(ctx, request.Symbol, timeframe, request.StartDate, request.EndDate)
}

// failRun records the failure and publishes the corresponding event
func (s *BacktestService) failRun(
	ctx context.Context,
	runID string,
	userID int,
	request *model.BacktestRequest,
	cause error,
) {
	s.logger.Warn("Backtest failed",
		zap.String("backtestID", runID),
		zap.String("strategy", request.StrategyID),
		zap.Error(cause))

	if s.store != nil {
		if err := s.store.FailRun(ctx, runID, cause.Error()); err != nil {
			s.logger.Error("Failed to mark backtest as failed",
				zap.Error(err),
				zap.String("backtestID", runID))
		}
	}

	if s.producer != nil {
		if err := s.producer.PublishBacktestFailed(ctx, s.eventsTopic, runID, userID, request, cause); err != nil {
			s.logger.Warn("Failed to publish backtest failure event",
				zap.Error(err),
				zap.String("backtestID", runID))
		}
	}
}

// GetBacktest retrieves a persisted run, scoped to its owner
func (s *BacktestService) GetBacktest(ctx context.Context, id string, userID int) (*model.BacktestRecord, error) {
	record, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.UserID != userID {
		return nil, model.NewNotFoundError("backtest", id)
	}

	return record, nil
}

// ListBacktests lists a user's runs with pagination
func (s *BacktestService) ListBacktests(ctx context.Context, userID, page, limit int) ([]model.BacktestRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	offset := (page - 1) * limit
	return s.store.ListRuns(ctx, userID, limit, offset)
}

// DeleteBacktest deletes a run owned by the user
func (s *BacktestService) DeleteBacktest(ctx context.Context, id string, userID int) error {
	return s.store.DeleteRun(ctx, id, userID)
}

// Strategies returns the catalogue of registered strategies
func (s *BacktestService) Strategies() []strategy.Descriptor {
	return s.registry.List()
}
