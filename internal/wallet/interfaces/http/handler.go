// Package http 钱包服务的 HTTP 处理器
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/analyticalplatform/internal/wallet/application"
	"github.com/wyfcoding/analyticalplatform/internal/wallet/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.WalletService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.WalletService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wallets := rg.Group("/users/:user_id/wallet")
	{
		wallets.POST("", h.Create)
		wallets.GET("", h.Get)
		wallets.POST("/deposit", h.Deposit)
		wallets.POST("/withdraw", h.Withdraw)
	}
}

// CreateRequest 创建钱包请求
type CreateRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AmountRequest 入金/出金请求
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Create 为用户创建钱包
func (h *Handler) Create(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := h.service.Create(c.Request.Context(), userID, req.InitialBalance)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": wallet})
}

// Get 查询用户钱包
func (h *Handler) Get(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	wallet, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": wallet})
}

// Deposit 入金
func (h *Handler) Deposit(c *gin.Context) {
	h.mutate(c, h.service.Deposit)
}

// Withdraw 出金
func (h *Handler) Withdraw(c *gin.Context) {
	h.mutate(c, h.service.Withdraw)
}

func (h *Handler) mutate(c *gin.Context, fn func(ctx context.Context, userID uint64, amount decimal.Decimal) (*domain.Wallet, error)) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := fn(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": wallet})
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
	case errors.Is(err, domain.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWalletExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "Wallet request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
