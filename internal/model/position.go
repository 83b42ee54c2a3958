package model

import (
	"math"
	"time"
)

// PositionType represents the direction of an open position
type PositionType string

// Position directions
const (
	PositionLong  PositionType = "LONG"
	PositionShort PositionType = "SHORT"
)

// PositionTypeForSide maps an order side to the position direction it opens
func PositionTypeForSide(side Side) PositionType {
	if side == SideSell {
		return PositionShort
	}
	return PositionLong
}

// Position represents an open position. A position is owned exclusively by
// the engine or account that opened it and is converted to a Trade on close.
type Position struct {
	ID            string       `json:"position_id"`
	Symbol        string       `json:"symbol"`
	Direction     PositionType `json:"direction"`
	Quantity      float64      `json:"quantity"`
	EntryPrice    float64      `json:"entry_price"`
	CurrentPrice  float64      `json:"current_price"`
	UnrealizedPnL float64      `json:"unrealized_pnl"`
	StopLoss      *float64     `json:"stop_loss,omitempty"`
	TakeProfit    *float64     `json:"take_profit,omitempty"`
	OpenedAt      time.Time    `json:"opened_at"`
}

// MarkToPrice updates the position's current price and unrealized P/L.
// Longs gain when price rises, shorts gain when it falls.
func (p *Position) MarkToPrice(price float64) {
	p.CurrentPrice = price
	if p.Direction == PositionLong {
		p.UnrealizedPnL = (price - p.EntryPrice) * p.Quantity
	} else {
		p.UnrealizedPnL = (p.EntryPrice - price) * p.Quantity
	}
}

// EntryValue returns the notional value of the position at entry
func (p *Position) EntryValue() float64 {
	return p.EntryPrice * p.Quantity
}

// Trade represents an immutable closed-position record
type Trade struct {
	ID            string       `json:"trade_id"`
	Symbol        string       `json:"symbol"`
	Direction     PositionType `json:"direction"`
	EntryPrice    float64      `json:"entry_price"`
	ExitPrice     float64      `json:"exit_price"`
	EntryTime     time.Time    `json:"entry_time"`
	ExitTime      time.Time    `json:"exit_time"`
	Quantity      float64      `json:"quantity"`
	ProfitLoss    float64      `json:"pnl"`
	ReturnPercent float64      `json:"return_percent"`
	CloseReason   string       `json:"close_reason"`
}

// IsWin reports whether the trade closed with a positive P/L
func (t Trade) IsWin() bool {
	return t.ProfitLoss > 0
}

// CloseTrade converts a position into a Trade closed at the given price.
// The realized P/L sign follows the direction rule: (exit-entry)*qty for
// longs, (entry-exit)*qty for shorts.
func CloseTrade(p *Position, exitPrice float64, exitTime time.Time, reason string) Trade {
	var pnl float64
	if p.Direction == PositionLong {
		pnl = (exitPrice - p.EntryPrice) * p.Quantity
	} else {
		pnl = (p.EntryPrice - exitPrice) * p.Quantity
	}

	returnPercent := 0.0
	if value := p.EntryValue(); value != 0 {
		returnPercent = pnl / math.Abs(value) * 100
	}

	return Trade{
		ID:            p.ID,
		Symbol:        p.Symbol,
		Direction:     p.Direction,
		EntryPrice:    p.EntryPrice,
		ExitPrice:     exitPrice,
		EntryTime:     p.OpenedAt,
		ExitTime:      exitTime,
		Quantity:      p.Quantity,
		ProfitLoss:    pnl,
		ReturnPercent: returnPercent,
		CloseReason:   reason,
	}
}
