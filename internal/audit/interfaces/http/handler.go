// Package http 审计服务的 HTTP 处理器
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/analyticalplatform/internal/audit/application"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.AuditService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.AuditService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	audit := rg.Group("/audit")
	{
		audit.GET("/logs", h.RecentLogs)
		audit.GET("/logs/:actor", h.LogsByActor)
	}
}

// RecentLogs 最近的审计记录
func (h *Handler) RecentLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.service.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}

// LogsByActor 某个操作者的审计记录
func (h *Handler) LogsByActor(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.service.LogsByActor(c.Request.Context(), c.Param("actor"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
