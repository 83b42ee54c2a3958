package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
	"github.com/yourorg/simulation-service/internal/service"
)

// BacktestHandler handles backtest HTTP requests
type BacktestHandler struct {
	backtestService *service.BacktestService
	logger          *zap.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(backtestService *service.BacktestService, logger *zap.Logger) *BacktestHandler {
	return &BacktestHandler{
		backtestService: backtestService,
		logger:          logger,
	}
}

// RunBacktest handles running a backtest and returns its full result
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var request model.BacktestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.backtestService.RunBacktest(c.Request.Context(), userID, &request)
	if err != nil {
		h.logger.Warn("Backtest request failed",
			zap.Error(err),
			zap.Int("userID", userID),
			zap.String("strategyID", request.StrategyID))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBacktest handles retrieving a persisted backtest by ID
func (h *BacktestHandler) GetBacktest(c *gin.Context) {
	id := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	record, err := h.backtestService.GetBacktest(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListBacktests handles listing the user's backtests
func (h *BacktestHandler) ListBacktests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	records, total, err := h.backtestService.ListBacktests(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.logger.Error("Failed to list backtests",
			zap.Error(err),
			zap.Int("userID", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve backtests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backtests": records,
		"meta": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DeleteBacktest handles deleting a backtest owned by the user
func (h *BacktestHandler) DeleteBacktest(c *gin.Context) {
	id := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.backtestService.DeleteBacktest(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Backtest deleted"})
}

// ListStrategies handles the strategy catalogue request
func (h *BacktestHandler) ListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": h.backtestService.Strategies()})
}
