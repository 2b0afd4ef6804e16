// Package http 价格预警的 HTTP 处理器
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/analyticalplatform/internal/alert/application"
	"github.com/wyfcoding/analyticalplatform/internal/alert/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.AlertService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.AlertService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	alerts := rg.Group("/users/:user_id/alerts")
	{
		alerts.POST("", h.Create)
		alerts.GET("", h.List)
		alerts.DELETE("/:alert_id", h.Delete)
	}
}

// CreateRequest 创建预警请求
type CreateRequest struct {
	Symbol      string          `json:"symbol" binding:"required"`
	Condition   string          `json:"condition" binding:"required"`
	TargetPrice decimal.Decimal `json:"target_price" binding:"required"`
}

// Create 创建预警
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

	alert, err := h.service.Create(c.Request.Context(), userID, req.Symbol, domain.Condition(req.Condition), req.TargetPrice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": alert})
}

// List 查询用户全部预警
func (h *Handler) List(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	alerts, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

// Delete 删除预警
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	alertID, err := strconv.ParseUint(c.Param("alert_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert_id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, uint(alertID)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
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
	case errors.Is(err, domain.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCondition), errors.Is(err, domain.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(c.Request.Context(), "Alert request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
