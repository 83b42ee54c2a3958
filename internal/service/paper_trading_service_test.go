package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
	"github.com/yourorg/simulation-service/internal/repository"
)

// mockQuoter serves fixed prices and rejects unknown symbols
type mockQuoter struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (q *mockQuoter) GetCurrentPrice(_ context.Context, symbol string) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	price, ok := q.prices[symbol]
	if !ok {
		return 0, model.NewInvalidOrderError("unknown symbol: %s", symbol)
	}
	return price, nil
}

func (q *mockQuoter) setPrice(symbol string, price float64) {
	q.mu.Lock()
	q.prices[symbol] = price
	q.mu.Unlock()
}

func newPaperFixture() (*PaperTradingService, *mockQuoter) {
	quoter := &mockQuoter{prices: map[string]float64{
		"EURUSD": 1.1000,
		"GBPUSD": 1.2650,
	}}
	svc := NewPaperTradingService(repository.NewAccountRepository(), quoter, 10000, zap.NewNop())
	return svc, quoter
}

func marketOrder(symbol, direction string, quantity float64) *model.OrderRequest {
	return &model.OrderRequest{
		Symbol:    symbol,
		OrderType: "market",
		Direction: direction,
		Quantity:  quantity,
	}
}

func TestCreateAccountDefaults(t *testing.T) {
	svc, _ := newPaperFixture()

	account := svc.CreateAccount(0)
	assert.Equal(t, 10000.0, account.Balance)
	assert.Equal(t, 10000.0, account.Equity)
	assert.Equal(t, 10000.0, account.FreeMargin)

	funded := svc.CreateAccount(50000)
	assert.Equal(t, 50000.0, funded.Balance)
	assert.NotEqual(t, account.ID, funded.ID)
}

func TestPlaceMarketOrderFillsAtQuote(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	result, err := svc.PlaceOrder(context.Background(), account.ID, marketOrder("EURUSD", "BUY", 1.0))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusFilled, result.Status)
	require.NotNil(t, result.FilledPrice)
	assert.InDelta(t, 1.1000, *result.FilledPrice, 1e-9)
	require.NotEmpty(t, result.PositionID)

	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, snapshot.Positions, 1)

	position := snapshot.Positions[0]
	assert.Equal(t, model.PositionLong, position.Direction)
	assert.InDelta(t, 1.1000, position.EntryPrice, 1e-9)
	assert.InDelta(t, 0.0, position.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 1.1, snapshot.MarginUsed, 1e-9)
	assert.InDelta(t, snapshot.Equity-snapshot.MarginUsed, snapshot.FreeMargin, 1e-9)
}

func TestPlaceOrderRejectionsAreAtomic(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	tests := []struct {
		name    string
		request *model.OrderRequest
	}{
		{"zero quantity", marketOrder("EURUSD", "BUY", 0)},
		{"negative quantity", marketOrder("EURUSD", "BUY", -1)},
		{"bad order type", &model.OrderRequest{Symbol: "EURUSD", OrderType: "iceberg", Direction: "BUY", Quantity: 1}},
		{"bad direction", &model.OrderRequest{Symbol: "EURUSD", OrderType: "market", Direction: "HOLD", Quantity: 1}},
		{"limit without price", &model.OrderRequest{Symbol: "EURUSD", OrderType: "limit", Direction: "BUY", Quantity: 1}},
		{"unknown symbol", marketOrder("DOGEUSD", "BUY", 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), account.ID, tc.request)
			require.Error(t, err)

			var invalid *model.InvalidOrderError
			assert.ErrorAs(t, err, &invalid)
		})
	}

	// No rejected attempt left any trace on the account.
	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Positions)
	assert.Empty(t, snapshot.OpenOrders)
	assert.Equal(t, 10000.0, snapshot.Balance)
	assert.Equal(t, 0.0, snapshot.MarginUsed)
}

func TestPendingOrderUnknownSymbolRejected(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	// Limit and stop orders never fill at placement, but the symbol is
	// still validated before the order is accepted.
	price := 1.0
	for _, orderType := range []string{"limit", "stop", "stop_limit"} {
		t.Run(orderType, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), account.ID, &model.OrderRequest{
				Symbol:    "NOSUCHSYM",
				OrderType: orderType,
				Direction: "BUY",
				Quantity:  1,
				Price:     &price,
			})
			require.Error(t, err)

			var invalid *model.InvalidOrderError
			assert.ErrorAs(t, err, &invalid)
		})
	}

	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.OpenOrders)
	assert.Empty(t, snapshot.Positions)
	assert.Equal(t, 10000.0, snapshot.Balance)
}

func TestPlaceOrderUnknownAccount(t *testing.T) {
	svc, _ := newPaperFixture()

	_, err := svc.PlaceOrder(context.Background(), "missing", marketOrder("EURUSD", "BUY", 1))
	var notFound *model.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSecondPositionOnSymbolRejected(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	_, err := svc.PlaceOrder(context.Background(), account.ID, marketOrder("EURUSD", "BUY", 1))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), account.ID, marketOrder("EURUSD", "SELL", 1))
	require.Error(t, err)
	var invalid *model.InvalidOrderError
	assert.ErrorAs(t, err, &invalid)

	// A different symbol is unaffected.
	_, err = svc.PlaceOrder(context.Background(), account.ID, marketOrder("GBPUSD", "SELL", 1))
	require.NoError(t, err)
}

func TestLimitOrderStaysPending(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	price := 1.0500
	result, err := svc.PlaceOrder(context.Background(), account.ID, &model.OrderRequest{
		Symbol:    "EURUSD",
		OrderType: "limit",
		Direction: "BUY",
		Quantity:  2,
		Price:     &price,
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, result.Status)
	assert.Nil(t, result.FilledPrice)
	assert.Empty(t, result.PositionID)

	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Positions)
	require.Len(t, snapshot.OpenOrders, 1)
	assert.Equal(t, model.OrderStatusPending, snapshot.OpenOrders[0].Status)
}

func TestCancelOrder(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	price := 1.0500
	result, err := svc.PlaceOrder(context.Background(), account.ID, &model.OrderRequest{
		Symbol:    "EURUSD",
		OrderType: "stop",
		Direction: "SELL",
		Quantity:  1,
		Price:     &price,
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(account.ID, result.OrderID))

	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.OpenOrders)

	// Cancelling twice, or cancelling an unknown order, fails cleanly.
	var invalid *model.InvalidOrderError
	assert.ErrorAs(t, svc.CancelOrder(account.ID, result.OrderID), &invalid)

	var notFound *model.NotFoundError
	assert.ErrorAs(t, svc.CancelOrder(account.ID, "missing"), &notFound)
}

func TestCancelFilledOrderRejected(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	result, err := svc.PlaceOrder(context.Background(), account.ID, marketOrder("EURUSD", "BUY", 1))
	require.NoError(t, err)

	var invalid *model.InvalidOrderError
	assert.ErrorAs(t, svc.CancelOrder(account.ID, result.OrderID), &invalid)
}

func TestClosePositionRealizesProfit(t *testing.T) {
	svc, quoter := newPaperFixture()
	account := svc.CreateAccount(10000)

	result, err := svc.PlaceOrder(context.Background(), account.ID, marketOrder("EURUSD", "BUY", 1000))
	require.NoError(t, err)

	quoter.setPrice("EURUSD", 1.1500)

	trade, err := svc.ClosePosition(context.Background(), account.ID, result.PositionID)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, trade.ProfitLoss, 1e-9)
	assert.Equal(t, "manual close", trade.CloseReason)
	assert.InDelta(t, 1.1000, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 1.1500, trade.ExitPrice, 1e-9)

	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10050.0, snapshot.Balance, 1e-9)
	assert.InDelta(t, 10050.0, snapshot.Equity, 1e-9)
	assert.Equal(t, 0.0, snapshot.MarginUsed)
	assert.Empty(t, snapshot.Positions)
	assert.Equal(t, 1, snapshot.TradeCount)

	_, err = svc.ClosePosition(context.Background(), account.ID, result.PositionID)
	var notFound *model.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSnapshotRecomputesUnrealizedPnL(t *testing.T) {
	svc, quoter := newPaperFixture()
	account := svc.CreateAccount(10000)

	_, err := svc.PlaceOrder(context.Background(), account.ID, marketOrder("EURUSD", "SELL", 1000))
	require.NoError(t, err)

	quoter.setPrice("EURUSD", 1.0800)

	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)

	// Short from 1.1000 quoted at 1.0800: +0.02 * 1000.
	require.Len(t, snapshot.Positions, 1)
	assert.InDelta(t, 20.0, snapshot.Positions[0].UnrealizedPnL, 1e-9)
	assert.InDelta(t, 20.0, snapshot.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 10020.0, snapshot.Equity, 1e-9)
	assert.Equal(t, 10000.0, snapshot.Balance)
}

func TestConcurrentOrdersOnDistinctSymbols(t *testing.T) {
	svc, quoter := newPaperFixture()
	account := svc.CreateAccount(100000)

	symbols := make([]string, 8)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%d", i)
		quoter.setPrice(symbols[i], 100)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(symbols))
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), account.ID, marketOrder(symbol, "BUY", 1))
		}(i, symbol)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "order on %s", symbols[i])
	}

	snapshot, err := svc.GetSnapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Positions, len(symbols))
	assert.InDelta(t, 800.0, snapshot.MarginUsed, 1e-9)
}

func TestRemoveAccount(t *testing.T) {
	svc, _ := newPaperFixture()
	account := svc.CreateAccount(10000)

	require.NoError(t, svc.RemoveAccount(account.ID))

	var notFound *model.NotFoundError
	assert.ErrorAs(t, svc.RemoveAccount(account.ID), &notFound)

	_, err := svc.GetSnapshot(context.Background(), account.ID)
	assert.ErrorAs(t, err, &notFound)
}
