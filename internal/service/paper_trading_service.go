package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/client"
	"github.com/yourorg/simulation-service/internal/model"
	"github.com/yourorg/simulation-service/internal/repository"
)

const closeReasonManual = "manual close"

// PaperTradingService manages paper-trading accounts and their order and
// position lifecycle. Market orders fill immediately at the quoted price;
// limit and stop orders are accepted and stay pending, since order-book
// matching against future ticks is out of scope. Validation failures
// leave account state untouched.
type PaperTradingService struct {
	accounts       *repository.AccountRepository
	quoter         client.Quoter
	defaultBalance float64
	logger         *zap.Logger
}

// NewPaperTradingService creates a paper trading service
func NewPaperTradingService(
	accounts *repository.AccountRepository,
	quoter client.Quoter,
	defaultBalance float64,
	logger *zap.Logger,
) *PaperTradingService {
	if defaultBalance <= 0 {
		defaultBalance = 10000
	}

	return &PaperTradingService{
		accounts:       accounts,
		quoter:         quoter,
		defaultBalance: defaultBalance,
		logger:         logger,
	}
}

// CreateAccount opens a new paper-trading account
func (s *PaperTradingService) CreateAccount(initialBalance float64) *model.PaperAccount {
	if initialBalance <= 0 {
		initialBalance = s.defaultBalance
	}

	account := s.accounts.Create(initialBalance)
	s.logger.Info("Paper account created",
		zap.String("accountID", account.ID),
		zap.Float64("initialBalance", initialBalance))

	return account
}

// RemoveAccount deletes an account
func (s *PaperTradingService) RemoveAccount(id string) error {
	return s.accounts.Remove(id)
}

// AccountCount returns the number of live paper-trading accounts
func (s *PaperTradingService) AccountCount() int {
	return s.accounts.Count()
}

// PlaceOrder validates and places an order on the account. Everything is
// checked before any state changes: a rejected order is an atomic no-op.
func (s *PaperTradingService) PlaceOrder(
	ctx context.Context,
	accountID string,
	request *model.OrderRequest,
) (*model.OrderResult, error) {
	orderType := model.OrderType(request.OrderType)
	side := model.Side(request.Direction)

	if request.Quantity <= 0 {
		return nil, model.NewInvalidOrderError("quantity must be positive, got %v", request.Quantity)
	}
	if !orderType.IsValid() {
		return nil, model.NewInvalidOrderError("unsupported order type: %s", request.OrderType)
	}
	if !side.IsValid() {
		return nil, model.NewInvalidOrderError("direction must be BUY or SELL, got %s", request.Direction)
	}
	if orderType != model.OrderTypeMarket && request.Price == nil {
		return nil, model.NewInvalidOrderError("%s orders require a price", orderType)
	}

	account, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	// The quote fetch is the one external call; it happens before the
	// account lock is taken. Every order type goes through it so an
	// unknown symbol is rejected before any account state changes.
	fillPrice, err := s.quoter.GetCurrentPrice(ctx, request.Symbol)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:         uuid.NewString(),
		Symbol:     request.Symbol,
		Type:       orderType,
		Side:       side,
		Quantity:   request.Quantity,
		Price:      request.Price,
		StopLoss:   request.StopLoss,
		TakeProfit: request.TakeProfit,
		Status:     model.OrderStatusPending,
		CreatedAt:  now,
	}

	account.Lock()
	defer account.Unlock()

	result := &model.OrderResult{OrderID: order.ID, Status: order.Status}

	if orderType == model.OrderTypeMarket {
		if existing := account.PositionForSymbol(request.Symbol); existing != nil {
			return nil, model.NewInvalidOrderError("position %s already open on %s", existing.ID, request.Symbol)
		}

		if err := order.Fill(fillPrice, now); err != nil {
			return nil, err
		}

		position := &model.Position{
			ID:         uuid.NewString(),
			Symbol:     request.Symbol,
			Direction:  model.PositionTypeForSide(side),
			Quantity:   request.Quantity,
			EntryPrice: fillPrice,
			StopLoss:   request.StopLoss,
			TakeProfit: request.TakeProfit,
			OpenedAt:   now,
		}
		position.MarkToPrice(fillPrice)

		account.Positions[position.ID] = position
		account.MarginUsed += position.EntryValue()
		account.FreeMargin = account.Equity - account.MarginUsed

		result.Status = order.Status
		result.FilledPrice = order.FilledPrice
		result.PositionID = position.ID
	}

	account.Orders[order.ID] = order
	account.LastUpdate = now

	s.logger.Info("Paper order placed",
		zap.String("accountID", accountID),
		zap.String("orderID", order.ID),
		zap.String("symbol", request.Symbol),
		zap.String("status", string(order.Status)))

	return result, nil
}

// CancelOrder cancels a pending order
func (s *PaperTradingService) CancelOrder(accountID, orderID string) error {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return err
	}

	account.Lock()
	defer account.Unlock()

	order, ok := account.Orders[orderID]
	if !ok {
		return model.NewNotFoundError("order", orderID)
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	account.LastUpdate = time.Now().UTC()
	return nil
}

// ClosePosition closes an open position at the current quote, realizing
// its P/L into the balance and appending the trade to the history
func (s *PaperTradingService) ClosePosition(
	ctx context.Context,
	accountID string,
	positionID string,
) (*model.Trade, error) {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	account.RLock()
	position, ok := account.Positions[positionID]
	var symbol string
	if ok {
		symbol = position.Symbol
	}
	account.RUnlock()

	if !ok {
		return nil, model.NewNotFoundError("position", positionID)
	}

	price, err := s.quoter.GetCurrentPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account.Lock()
	defer account.Unlock()

	// Re-check under the write lock; a concurrent close may have won.
	position, ok = account.Positions[positionID]
	if !ok {
		return nil, model.NewNotFoundError("position", positionID)
	}

	trade := model.CloseTrade(position, price, now, closeReasonManual)

	account.Balance += trade.ProfitLoss
	account.MarginUsed -= position.EntryValue()
	if account.MarginUsed < 0 {
		account.MarginUsed = 0
	}
	delete(account.Positions, positionID)
	account.TradeHistory = append(account.TradeHistory, trade)

	unrealized := 0.0
	for _, p := range account.Positions {
		unrealized += p.UnrealizedPnL
	}
	account.Equity = account.Balance + unrealized
	account.FreeMargin = account.Equity - account.MarginUsed
	account.LastUpdate = now

	s.logger.Info("Paper position closed",
		zap.String("accountID", accountID),
		zap.String("positionID", positionID),
		zap.Float64("pnl", trade.ProfitLoss))

	return &trade, nil
}

// GetSnapshot returns the account state with every open position's
// unrealized P/L recomputed from the latest quotes
func (s *PaperTradingService) GetSnapshot(ctx context.Context, accountID string) (*model.AccountSnapshot, error) {
	account, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	// Collect symbols under the read lock, quote them outside of it.
	account.RLock()
	symbols := make([]string, 0, len(account.Positions))
	seen := make(map[string]bool, len(account.Positions))
	for _, p := range account.Positions {
		if !seen[p.Symbol] {
			seen[p.Symbol] = true
			symbols = append(symbols, p.Symbol)
		}
	}
	account.RUnlock()

	quotes := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		price, err := s.quoter.GetCurrentPrice(ctx, symbol)
		if err != nil {
			// The position keeps its last mark; the quoter already
			// applied its own fallback policy.
			s.logger.Warn("Quote unavailable for snapshot",
				zap.String("accountID", accountID),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		quotes[symbol] = price
	}

	account.Lock()
	defer account.Unlock()

	unrealized := 0.0
	positions := make([]*model.Position, 0, len(account.Positions))
	for _, p := range account.Positions {
		if price, ok := quotes[p.Symbol]; ok {
			p.MarkToPrice(price)
		}
		unrealized += p.UnrealizedPnL
		copied := *p
		positions = append(positions, &copied)
	}

	account.Equity = account.Balance + unrealized
	account.FreeMargin = account.Equity - account.MarginUsed
	account.LastUpdate = time.Now().UTC()

	openOrders := make([]*model.Order, 0)
	for _, o := range account.Orders {
		if o.Status == model.OrderStatusPending {
			copied := *o
			openOrders = append(openOrders, &copied)
		}
	}

	return &model.AccountSnapshot{
		AccountID:     account.ID,
		Balance:       account.Balance,
		Equity:        account.Equity,
		MarginUsed:    account.MarginUsed,
		FreeMargin:    account.FreeMargin,
		UnrealizedPnL: unrealized,
		Positions:     positions,
		OpenOrders:    openOrders,
		TradeCount:    len(account.TradeHistory),
		LastUpdate:    account.LastUpdate,
	}, nil
}
