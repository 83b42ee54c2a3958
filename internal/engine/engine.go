// Package engine implements the bar-by-bar backtest simulation loop and
// the performance statistics derived from its output.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
	"github.com/yourorg/simulation-service/internal/strategy"
)

// Close reasons recorded on trades produced by the simulation loop
const (
	closeReasonSellSignal = "sell signal"
	closeReasonBuySignal  = "buy signal"
)

// RunResult is the raw output of one simulation pass: the trade ledger,
// the equity curve and the drawdown tracked alongside it
type RunResult struct {
	Trades             []model.Trade
	EquityCurve        []model.EquityPoint
	FinalBalance       float64
	MaxDrawdown        float64
	MaxDrawdownPercent float64

	// OpenPosition holds a position still open when the data ran out.
	// It is reported as-is, marked to the last close, never force-closed.
	OpenPosition *model.Position
}

// Engine drives the simulation loop. A run is fully synchronous and
// deterministic: one bounded pass over pre-materialized bars with no I/O.
type Engine struct {
	logger *zap.Logger
}

// New creates an execution engine
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Run replays the bars against the strategy, owning the FLAT -> LONG/SHORT
// -> FLAT position lifecycle. Entries and exits fill at the signal bar's
// close. The balance compounds: each position is sized off the balance at
// entry time. One equity point is appended per bar processed.
func (e *Engine) Run(
	bars []model.PriceBar,
	strat strategy.Strategy,
	symbol string,
	initialBalance float64,
	riskPercent float64,
) (*RunResult, error) {
	if len(bars) == 0 {
		return nil, model.NewDataError("no bars to simulate for %s", symbol)
	}

	balance := initialBalance
	trades := make([]model.Trade, 0)
	equityCurve := make([]model.EquityPoint, 0, len(bars))

	var position *model.Position

	peak := initialBalance
	maxDrawdown := 0.0
	maxDrawdownPercent := 0.0

	for i, bar := range bars {
		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return nil, model.NewDataError("bars out of order at index %d (%s)", i, bar.Timestamp)
		}

		if position == nil {
			enterLong := strat.ShouldEnterLong(bars, i)
			enterShort := strat.ShouldEnterShort(bars, i)

			// Simultaneous long and short signals are ambiguous; the
			// engine takes no action and leaves resolution to the
			// strategy.
			if enterLong != enterShort {
				direction := model.PositionLong
				if enterShort {
					direction = model.PositionShort
				}
				position = e.openPosition(strat, symbol, direction, bar, balance, riskPercent, i)
			}
		} else {
			var reason string
			switch {
			case position.Direction == model.PositionLong && strat.ShouldEnterShort(bars, i):
				reason = closeReasonSellSignal
			case position.Direction == model.PositionShort && strat.ShouldEnterLong(bars, i):
				reason = closeReasonBuySignal
			}

			if reason != "" {
				trade := model.CloseTrade(position, bar.Close, bar.Timestamp, reason)
				balance += trade.ProfitLoss
				trades = append(trades, trade)
				position = nil
			}
		}

		equity := balance
		if position != nil {
			position.MarkToPrice(bar.Close)
			equity += position.UnrealizedPnL
		}
		equityCurve = append(equityCurve, model.EquityPoint{Time: bar.Timestamp, Value: equity})

		if equity > peak {
			peak = equity
		} else if drawdown := peak - equity; drawdown > maxDrawdown {
			maxDrawdown = drawdown
			maxDrawdownPercent = drawdown / peak * 100
		}
	}

	if e.logger != nil {
		e.logger.Debug("Simulation pass finished",
			zap.String("symbol", symbol),
			zap.Int("bars", len(bars)),
			zap.Int("trades", len(trades)),
			zap.Bool("openPosition", position != nil))
	}

	return &RunResult{
		Trades:             trades,
		EquityCurve:        equityCurve,
		FinalBalance:       balance,
		MaxDrawdown:        maxDrawdown,
		MaxDrawdownPercent: maxDrawdownPercent,
		OpenPosition:       position,
	}, nil
}

// openPosition sizes and opens a position at the signal bar's close.
// Position IDs derive from the entry bar so that identical runs produce
// identical results.
func (e *Engine) openPosition(
	strat strategy.Strategy,
	symbol string,
	direction model.PositionType,
	bar model.PriceBar,
	balance float64,
	riskPercent float64,
	index int,
) *model.Position {
	value := strat.PositionSize(balance, riskPercent)
	quantity := value / bar.Close

	position := &model.Position{
		ID:         fmt.Sprintf("bt-%s-%d", symbol, index),
		Symbol:     symbol,
		Direction:  direction,
		Quantity:   quantity,
		EntryPrice: bar.Close,
		OpenedAt:   bar.Timestamp,
	}
	position.MarkToPrice(bar.Close)

	return position
}
