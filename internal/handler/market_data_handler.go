package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
	"github.com/yourorg/simulation-service/internal/provider"
)

// MarketDataStore is the slice of the market data repository the internal
// maintenance endpoints need. Implemented by
// repository.MarketDataRepository.
type MarketDataStore interface {
	InsertBars(ctx context.Context, symbol string, timeframe model.Timeframe, bars []model.PriceBar) error
	DeleteBars(ctx context.Context, symbols []string, timeframe model.Timeframe) (int64, error)
	HasData(ctx context.Context, symbol string, timeframe model.Timeframe) (bool, error)
	GetDataRange(ctx context.Context, symbol string, timeframe model.Timeframe) (*model.DateRange, error)
}

// MarketDataHandler handles the internal market data maintenance requests:
// availability checks, seeding synthetic fixtures and purging them again
type MarketDataHandler struct {
	store  MarketDataStore
	logger *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(store MarketDataStore, logger *zap.Logger) *MarketDataHandler {
	return &MarketDataHandler{
		store:  store,
		logger: logger,
	}
}

// GetAvailability handles checking what data exists for a symbol/timeframe
func (h *MarketDataHandler) GetAvailability(c *gin.Context) {
	var query model.MarketDataQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeframe, err := model.ParseTimeframe(query.Timeframe)
	if err != nil {
		respondError(c, err)
		return
	}

	available, err := h.store.HasData(c.Request.Context(), query.Symbol, timeframe)
	if err != nil {
		respondError(c, err)
		return
	}

	if !available {
		c.JSON(http.StatusOK, gin.H{
			"symbol":    query.Symbol,
			"timeframe": string(timeframe),
			"available": false,
		})
		return
	}

	dataRange, err := h.store.GetDataRange(c.Request.Context(), query.Symbol, timeframe)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":    query.Symbol,
		"timeframe": string(timeframe),
		"available": true,
		"range":     dataRange,
	})
}

// SeedData handles generating and storing synthetic bars for a symbol
func (h *MarketDataHandler) SeedData(c *gin.Context) {
	var request model.SeedDataRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeframe, err := model.ParseTimeframe(request.Timeframe)
	if err != nil {
		respondError(c, err)
		return
	}

	seed := time.Now().UnixNano()
	if request.Seed != nil {
		seed = *request.Seed
	}

	bars := provider.NewSynthetic(seed).Generate(request.Symbol, timeframe, request.Days)
	if err := h.store.InsertBars(c.Request.Context(), request.Symbol, timeframe, bars); err != nil {
		h.logger.Error("Failed to seed market data",
			zap.Error(err),
			zap.String("symbol", request.Symbol),
			zap.String("timeframe", string(timeframe)))
		respondError(c, err)
		return
	}

	h.logger.Info("Market data seeded",
		zap.String("symbol", request.Symbol),
		zap.String("timeframe", string(timeframe)),
		zap.Int("bars", len(bars)),
		zap.Int64("seed", seed))

	c.JSON(http.StatusCreated, gin.H{
		"symbol":    request.Symbol,
		"timeframe": string(timeframe),
		"bars":      len(bars),
		"seed":      seed,
	})
}

// DeleteData handles purging bars for a set of symbols
func (h *MarketDataHandler) DeleteData(c *gin.Context) {
	timeframe, err := model.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		respondError(c, err)
		return
	}

	symbols := make([]string, 0)
	for _, s := range strings.Split(c.Query("symbols"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols parameter is required"})
		return
	}

	removed, err := h.store.DeleteBars(c.Request.Context(), symbols, timeframe)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
