// Package http 交易服务的 HTTP 处理器
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/analyticalplatform/internal/trading/application"
	"github.com/wyfcoding/analyticalplatform/internal/trading/domain"
	walletdomain "github.com/wyfcoding/analyticalplatform/internal/wallet/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.TradingService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.TradingService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users/:user_id")
	{
		users.POST("/trades", h.ExecuteTrade)
		users.GET("/portfolio", h.GetPortfolio)
		users.GET("/transactions", h.GetTransactions)
	}
}

// TradeRequest 下单请求
type TradeRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Side     string `json:"side" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

// ExecuteTrade 执行一笔市价交易
func (h *Handler) ExecuteTrade(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trade, err := h.service.Execute(c.Request.Context(), userID, req.Symbol, domain.Side(req.Side), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": trade})
}

// GetPortfolio 查询投资组合估值
func (h *Handler) GetPortfolio(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	portfolio, err := h.service.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": portfolio})
}

// GetTransactions 查询成交历史
func (h *Handler) GetTransactions(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	txs, err := h.service.GetTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": txs})
}

func parseUserID(c *gin.Context) (uint64, bool) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return userID, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidSide), errors.Is(err, domain.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, walletdomain.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, walletdomain.ErrInsufficientFunds), errors.Is(err, domain.ErrInsufficientHoldings):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, walletdomain.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPriceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "Trade request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
