// Package client holds HTTP clients for external collaborators of the
// simulation service.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
)

// Quoter supplies the current price for a symbol. Paper-trading fills are
// the only consumers; implementations decide the fallback policy when the
// upstream feed is unavailable.
type Quoter interface {
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// QuoteClient fetches current prices from the price feed service. Failed
// fetches retry with exponential backoff inside a bounded window; when
// retries are exhausted the last cached price for the symbol is served so
// paper trading degrades instead of breaking.
type QuoteClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu     sync.RWMutex
	cached map[string]float64
}

// NewQuoteClient creates a new price feed client
func NewQuoteClient(baseURL string, timeout time.Duration, logger *zap.Logger) *QuoteClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &QuoteClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		cached: make(map[string]float64),
	}
}

// GetCurrentPrice returns the latest quote for a symbol. An unknown symbol
// is an InvalidOrderError; an unreachable feed falls back to the cached
// price when one exists.
func (c *QuoteClient) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	var price float64

	operation := func() error {
		p, err := c.fetch(ctx, symbol)
		if err != nil {
			return err
		}
		price = p
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		// Permanent errors (unknown symbol) are not retried and never
		// served from cache.
		var invalid *model.InvalidOrderError
		if errors.As(err, &invalid) {
			return 0, err
		}

		c.mu.RLock()
		cached, ok := c.cached[symbol]
		c.mu.RUnlock()
		if ok {
			c.logger.Warn("Price feed unavailable, serving cached quote",
				zap.String("symbol", symbol),
				zap.Float64("price", cached),
				zap.Error(err))
			return cached, nil
		}

		return 0, model.NewDataError("price feed unavailable for %s: %v", symbol, err)
	}

	c.mu.Lock()
	c.cached[symbol] = price
	c.mu.Unlock()

	return price, nil
}

// fetch performs one quote request
func (c *QuoteClient) fetch(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/api/v1/quotes/%s", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Quote request failed", zap.String("symbol", symbol), zap.Error(err))
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, backoff.Permanent(model.NewInvalidOrderError("unknown symbol: %s", symbol))
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price feed returned status code %d", resp.StatusCode)
	}

	var response struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, err
	}

	if response.Price <= 0 {
		return 0, fmt.Errorf("price feed returned non-positive price %v for %s", response.Price, symbol)
	}

	return response.Price, nil
}
