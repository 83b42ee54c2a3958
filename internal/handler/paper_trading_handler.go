package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/model"
	"github.com/yourorg/simulation-service/internal/service"
)

// PaperTradingHandler handles paper-trading HTTP requests
type PaperTradingHandler struct {
	paperService *service.PaperTradingService
	logger       *zap.Logger
}

// NewPaperTradingHandler creates a new paper trading handler
func NewPaperTradingHandler(paperService *service.PaperTradingService, logger *zap.Logger) *PaperTradingHandler {
	return &PaperTradingHandler{
		paperService: paperService,
		logger:       logger,
	}
}

// CreateAccount handles opening a new paper-trading account
func (h *PaperTradingHandler) CreateAccount(c *gin.Context) {
	var request model.CreateAccountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account := h.paperService.CreateAccount(request.InitialBalance)

	c.JSON(http.StatusCreated, gin.H{
		"account_id":      account.ID,
		"initial_balance": account.Balance,
	})
}

// GetAccount handles the account snapshot request
func (h *PaperTradingHandler) GetAccount(c *gin.Context) {
	snapshot, err := h.paperService.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// RemoveAccount handles deleting a paper-trading account
func (h *PaperTradingHandler) RemoveAccount(c *gin.Context) {
	if err := h.paperService.RemoveAccount(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account removed"})
}

// PlaceOrder handles placing an order on a paper-trading account
func (h *PaperTradingHandler) PlaceOrder(c *gin.Context) {
	accountID := c.Param("id")

	var request model.OrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.paperService.PlaceOrder(c.Request.Context(), accountID, &request)
	if err != nil {
		h.logger.Warn("Order rejected",
			zap.Error(err),
			zap.String("accountID", accountID),
			zap.String("symbol", request.Symbol))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelOrder handles cancelling a pending order
func (h *PaperTradingHandler) CancelOrder(c *gin.Context) {
	if err := h.paperService.CancelOrder(c.Param("id"), c.Param("orderID")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

// Stats reports service counters for internal monitoring
func (h *PaperTradingHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"paper_accounts": h.paperService.AccountCount(),
	})
}

// ClosePosition handles closing an open position at the current quote
func (h *PaperTradingHandler) ClosePosition(c *gin.Context) {
	trade, err := h.paperService.ClosePosition(c.Request.Context(), c.Param("id"), c.Param("positionID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trade)
}
