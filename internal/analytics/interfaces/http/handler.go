// Package http 交易统计的 HTTP 处理器
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/analyticalplatform/internal/analytics/application"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.AnalyticsService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.AnalyticsService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:user_id/analytics/summary", h.Summarize)
}

// Summarize 查询用户交易汇总，可选 from/to（RFC 3339）限定区间
func (h *Handler) Summarize(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
	}

	summary, err := h.service.Summarize(c.Request.Context(), userID, from, to)
	if err != nil {
		logger.Error(c.Request.Context(), "Analytics request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
