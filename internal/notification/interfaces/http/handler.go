// Package http 通知服务的 HTTP 处理器
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/analyticalplatform/internal/notification/application"
)

// Handler HTTP 处理器
type Handler struct {
	service *application.NotificationService
}

// NewHandler 创建 HTTP 处理器实例
func NewHandler(service *application.NotificationService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/users/:user_id/notifications")
	{
		notifications.GET("", h.History)
		notifications.POST("/:notification_id/read", h.MarkRead)
	}
}

// History 查询用户通知
func (h *Handler) History(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// MarkRead 标记通知已读
func (h *Handler) MarkRead(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, c.Param("notification_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": "ok"})
}
