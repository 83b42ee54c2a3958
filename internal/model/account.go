package model

import (
	"sync"
	"time"
)

// PaperAccount holds the state of one paper-trading session. It is
// long-lived and may be hit by concurrent requests, so every
// read-modify-write of its maps must happen under the embedded lock.
type PaperAccount struct {
	sync.RWMutex `json:"-"`

	ID           string               `json:"account_id"`
	Balance      float64              `json:"balance"`
	Equity       float64              `json:"equity"`
	MarginUsed   float64              `json:"margin_used"`
	FreeMargin   float64              `json:"free_margin"`
	Positions    map[string]*Position `json:"positions"`
	Orders       map[string]*Order    `json:"orders"`
	TradeHistory []Trade              `json:"trade_history"`
	CreatedAt    time.Time            `json:"created_at"`
	LastUpdate   time.Time            `json:"last_update"`
}

// NewPaperAccount creates an account funded with the given balance
func NewPaperAccount(id string, initialBalance float64, now time.Time) *PaperAccount {
	return &PaperAccount{
		ID:           id,
		Balance:      initialBalance,
		Equity:       initialBalance,
		MarginUsed:   0,
		FreeMargin:   initialBalance,
		Positions:    make(map[string]*Position),
		Orders:       make(map[string]*Order),
		TradeHistory: make([]Trade, 0),
		CreatedAt:    now,
		LastUpdate:   now,
	}
}

// PositionForSymbol returns the open position on the given symbol, if any.
// Caller must hold the account lock. At most one position per symbol is
// open at a time.
func (a *PaperAccount) PositionForSymbol(symbol string) *Position {
	for _, p := range a.Positions {
		if p.Symbol == symbol {
			return p
		}
	}
	return nil
}

// AccountSnapshot is the read-only view of an account returned to callers
type AccountSnapshot struct {
	AccountID     string      `json:"account_id"`
	Balance       float64     `json:"balance"`
	Equity        float64     `json:"equity"`
	MarginUsed    float64     `json:"margin_used"`
	FreeMargin    float64     `json:"free_margin"`
	UnrealizedPnL float64     `json:"unrealized_pnl"`
	Positions     []*Position `json:"positions"`
	OpenOrders    []*Order    `json:"open_orders"`
	TradeCount    int         `json:"trade_count"`
	LastUpdate    time.Time   `json:"last_update"`
}

// CreateAccountRequest is the input for opening a paper-trading account
type CreateAccountRequest struct {
	InitialBalance float64 `json:"initial_balance" binding:"omitempty,gt=0"`
}
