// Package http 自选股清单的 HTTP 处理器
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/analyticalplatform/internal/watchlist/application"
	"github.com/wyfcoding/analyticalplatform/internal/watchlist/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.WatchlistService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.WatchlistService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	lists := rg.Group("/users/:user_id/watchlists")
	{
		lists.POST("", h.Create)
		lists.GET("", h.List)
		lists.GET("/:list_id", h.Get)
		lists.DELETE("/:list_id", h.Delete)
		lists.POST("/:list_id/symbols", h.AddSymbol)
		lists.DELETE("/:list_id/symbols/:symbol", h.RemoveSymbol)
	}
}

// CreateRequest 创建清单请求
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// SymbolRequest 追加标的请求
type SymbolRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// Create 创建清单
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

	list, err := h.service.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": list})
}

// List 查询用户全部清单
func (h *Handler) List(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	lists, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lists})
}

// Get 查询单个清单
func (h *Handler) Get(c *gin.Context) {
	userID, listID, ok := parseIDs(c)
	if !ok {
		return
	}

	list, err := h.service.Get(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Delete 删除清单
func (h *Handler) Delete(c *gin.Context) {
	userID, listID, ok := parseIDs(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, listID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddSymbol 向清单追加标的
func (h *Handler) AddSymbol(c *gin.Context) {
	userID, listID, ok := parseIDs(c)
	if !ok {
		return
	}

	var req SymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.service.AddSymbol(c.Request.Context(), userID, listID, req.Symbol)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

// RemoveSymbol 从清单移除标的
func (h *Handler) RemoveSymbol(c *gin.Context) {
	userID, listID, ok := parseIDs(c)
	if !ok {
		return
	}

	list, err := h.service.RemoveSymbol(c.Request.Context(), userID, listID, c.Param("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

func parseUserID(c *gin.Context) (uint64, bool) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return userID, true
}

func parseIDs(c *gin.Context) (uint64, uint, bool) {
	userID, ok := parseUserID(c)
	if !ok {
		return 0, 0, false
	}
	listID, err := strconv.ParseUint(c.Param("list_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid list_id"})
		return 0, 0, false
	}
	return userID, uint(listID), true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrWatchlistNotFound), errors.Is(err, domain.ErrSymbolNotInList):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWatchlistExists), errors.Is(err, domain.ErrSymbolAlreadyAdded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "Watchlist request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
