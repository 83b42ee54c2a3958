package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"
)

// Backtest statuses
const (
	BacktestStatusRunning   = "running"
	BacktestStatusCompleted = "completed"
	BacktestStatusFailed    = "failed"
)

// BacktestRequest represents the input parameters for a backtest run
type BacktestRequest struct {
	Symbol              string             `json:"symbol" binding:"required"`
	StrategyID          string             `json:"strategy_id" binding:"required"`
	StrategyParams      map[string]float64 `json:"strategy_params,omitempty"`
	Timeframe           string             `json:"timeframe" binding:"required,timeframe"`
	StartDate           time.Time          `json:"start_date" binding:"required"`
	EndDate             time.Time          `json:"end_date" binding:"required"`
	InitialBalance      float64            `json:"initial_balance" binding:"required,gt=0"`
	RiskPerTradePercent float64            `json:"risk_per_trade_percent" binding:"required,gt=0,lte=100"`

	// DataSource selects where bars come from: "historical" (default) reads
	// the market data store, "synthetic" generates a seeded random walk.
	DataSource string `json:"data_source,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

// EquityPoint is one sample of the equity curve: balance plus the
// unrealized P/L of any open position at that bar
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// BacktestResult aggregates everything a completed run produced. It is
// created once per run and never mutated afterwards.
type BacktestResult struct {
	StrategyID     string             `json:"strategy_id"`
	StrategyName   string             `json:"strategy_name"`
	StrategyParams map[string]float64 `json:"strategy_params,omitempty"`
	Symbol         string             `json:"symbol"`
	Timeframe      Timeframe          `json:"timeframe"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	InitialBalance     float64 `json:"initial_balance"`
	FinalBalance       float64 `json:"final_balance"`
	TotalReturn        float64 `json:"total_return"`
	TotalReturnPercent float64 `json:"total_return_percent"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	ProfitFactor float64 `json:"profit_factor"`
	AverageWin   float64 `json:"average_win"`
	AverageLoss  float64 `json:"average_loss"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`

	EquityCurve []EquityPoint `json:"equity_curve"`
	Trades      []Trade       `json:"trades"`

	// OpenPosition reports a position still open at the end of the date
	// range. It is never force-closed; its unrealized P/L is marked to the
	// last bar and excluded from the realized trade statistics.
	OpenPosition *Position `json:"open_position,omitempty"`
}

// Round2 rounds a value to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarshalJSON serializes the result with every numeric field rounded to two
// decimal places. Internal computation keeps full precision; rounding
// happens only at this boundary.
func (r BacktestResult) MarshalJSON() ([]byte, error) {
	type alias BacktestResult

	rounded := alias(r)
	rounded.WinRate = Round2(r.WinRate)
	rounded.InitialBalance = Round2(r.InitialBalance)
	rounded.FinalBalance = Round2(r.FinalBalance)
	rounded.TotalReturn = Round2(r.TotalReturn)
	rounded.TotalReturnPercent = Round2(r.TotalReturnPercent)
	rounded.MaxDrawdown = Round2(r.MaxDrawdown)
	rounded.MaxDrawdownPercent = Round2(r.MaxDrawdownPercent)
	rounded.SharpeRatio = Round2(r.SharpeRatio)
	rounded.ProfitFactor = Round2(r.ProfitFactor)
	rounded.AverageWin = Round2(r.AverageWin)
	rounded.AverageLoss = Round2(r.AverageLoss)
	rounded.LargestWin = Round2(r.LargestWin)
	rounded.LargestLoss = Round2(r.LargestLoss)

	rounded.EquityCurve = make([]EquityPoint, len(r.EquityCurve))
	for i, p := range r.EquityCurve {
		rounded.EquityCurve[i] = EquityPoint{Time: p.Time, Value: Round2(p.Value)}
	}

	rounded.Trades = make([]Trade, len(r.Trades))
	for i, t := range r.Trades {
		t.EntryPrice = Round2(t.EntryPrice)
		t.ExitPrice = Round2(t.ExitPrice)
		t.Quantity = Round2(t.Quantity)
		t.ProfitLoss = Round2(t.ProfitLoss)
		t.ReturnPercent = Round2(t.ReturnPercent)
		rounded.Trades[i] = t
	}

	if r.OpenPosition != nil {
		p := *r.OpenPosition
		p.EntryPrice = Round2(p.EntryPrice)
		p.CurrentPrice = Round2(p.CurrentPrice)
		p.Quantity = Round2(p.Quantity)
		p.UnrealizedPnL = Round2(p.UnrealizedPnL)
		rounded.OpenPosition = &p
	}

	return json.Marshal(rounded)
}

// BacktestRecord is the persisted row for a backtest run
type BacktestRecord struct {
	ID             string          `json:"id" db:"id"`
	UserID         int             `json:"user_id" db:"user_id"`
	StrategyID     string          `json:"strategy_id" db:"strategy_id"`
	Symbol         string          `json:"symbol" db:"symbol"`
	Timeframe      string          `json:"timeframe" db:"timeframe"`
	StartDate      time.Time       `json:"start_date" db:"start_date"`
	EndDate        time.Time       `json:"end_date" db:"end_date"`
	InitialBalance float64         `json:"initial_balance" db:"initial_balance"`
	Status         string          `json:"status" db:"status"`
	Results        ResultsDocument `json:"results,omitempty" db:"results"`
	ErrorMessage   *string         `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// ResultsDocument stores a serialized BacktestResult as a JSONB column
type ResultsDocument []byte

// Value implements driver.Valuer for ResultsDocument
func (d ResultsDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return []byte(d), nil
}

// Scan implements sql.Scanner for ResultsDocument
func (d *ResultsDocument) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	*d = append((*d)[0:0], b...)
	return nil
}
