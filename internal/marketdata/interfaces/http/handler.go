// Package http 行情服务的 HTTP 处理器
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/analyticalplatform/internal/marketdata/application"
	"github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
	"github.com/wyfcoding/analyticalplatform/pkg/ratelimit"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.StockService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.StockService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	stocks := rg.Group("/stocks")
	{
		stocks.GET("", h.ListStocks)
		stocks.GET("/top", h.TopPerformers)
		stocks.GET("/worst", h.WorstPerformers)
		stocks.GET("/search", h.Search)
		stocks.GET("/:symbol", h.GetStock)
		stocks.GET("/:symbol/price", h.GetPrice)
		stocks.POST("/:symbol/refresh", h.RefreshStock)
	}
}

// GetStock 查询单个标的行情
func (h *Handler) GetStock(c *gin.Context) {
	symbol := c.Param("symbol")

	stock, err := h.service.GetStock(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	if stock == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock not found: " + symbol})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stock})
}

// GetPrice 解析标的当前价格（允许陈旧回退）
func (h *Handler) GetPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	price, fresh, err := h.service.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"symbol": symbol,
			"price":  price,
			"fresh":  fresh,
		},
	})
}

// ListStocks 查询全部行情
func (h *Handler) ListStocks(c *gin.Context) {
	stocks, err := h.service.ListStocks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stocks})
}

// TopPerformers 涨幅榜
func (h *Handler) TopPerformers(c *gin.Context) {
	h.performers(c, h.service.TopPerformers)
}

// WorstPerformers 跌幅榜
func (h *Handler) WorstPerformers(c *gin.Context) {
	h.performers(c, h.service.WorstPerformers)
}

func (h *Handler) performers(c *gin.Context, fn func(ctx context.Context, limit int) ([]*domain.Stock, error)) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	stocks, err := fn(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stocks})
}

// Search 按关键字搜索标的
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	matches, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": matches})
}

// RefreshStock 强制刷新行情
func (h *Handler) RefreshStock(c *gin.Context) {
	symbol := c.Param("symbol")

	stock, err := h.service.RefreshStock(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stock})
}

func respondError(c *gin.Context, err error) {
	var limitErr *ratelimit.LimitError
	switch {
	case errors.As(err, &limitErr):
		c.Header("Retry-After", strconv.FormatInt(int64(limitErr.RetryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       err.Error(),
			"retry_after": limitErr.RetryAfter.String(),
		})
	case errors.Is(err, domain.ErrNoPriceAvailable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProvider):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "Market data request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
