package model

import (
	"time"
)

// OrderType represents how an order should be executed
type OrderType string

// Supported order types. Only market orders fill immediately; limit and
// stop orders are accepted and kept pending (no order-book matching).
const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// IsValid reports whether the order type is supported
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit:
		return true
	}
	return false
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

// Order statuses. PENDING is the only non-terminal state.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled || s == OrderStatusRejected
}

// Side represents the direction of an order
type Side string

// Order sides
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// IsValid reports whether the side is BUY or SELL
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// Order represents a simulated order on a paper-trading account
type Order struct {
	ID          string      `json:"order_id"`
	Symbol      string      `json:"symbol"`
	Type        OrderType   `json:"order_type"`
	Side        Side        `json:"direction"`
	Quantity    float64     `json:"quantity"`
	Price       *float64    `json:"price,omitempty"`
	StopLoss    *float64    `json:"stop_loss,omitempty"`
	TakeProfit  *float64    `json:"take_profit,omitempty"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	FilledAt    *time.Time  `json:"filled_at,omitempty"`
	FilledPrice *float64    `json:"filled_price,omitempty"`
}

// Fill marks the order as filled at the given price and time. Orders in a
// terminal status never regress, so filling one is an error.
func (o *Order) Fill(price float64, at time.Time) error {
	if o.Status.IsTerminal() {
		return NewInvalidOrderError("order %s is already %s", o.ID, o.Status)
	}
	o.Status = OrderStatusFilled
	o.FilledAt = &at
	o.FilledPrice = &price
	return nil
}

// Cancel marks a pending order as cancelled
func (o *Order) Cancel() error {
	if o.Status.IsTerminal() {
		return NewInvalidOrderError("order %s is already %s", o.ID, o.Status)
	}
	o.Status = OrderStatusCancelled
	return nil
}

// OrderRequest represents the input for placing a paper-trading order
type OrderRequest struct {
	Symbol     string   `json:"symbol" binding:"required"`
	OrderType  string   `json:"order_type" binding:"required"`
	Direction  string   `json:"direction" binding:"required"`
	Quantity   float64  `json:"quantity" binding:"required"`
	Price      *float64 `json:"price,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
}

// OrderResult is the response returned after placing an order
type OrderResult struct {
	OrderID     string      `json:"order_id"`
	Status      OrderStatus `json:"status"`
	FilledPrice *float64    `json:"filled_price,omitempty"`
	PositionID  string      `json:"position_id,omitempty"`
}
