// Package application 通知服务的用例层
package application

import (
	"context"
	"time"

	"github.com/wyfcoding/analyticalplatform/internal/notification/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/idgen"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Notifier 通知接口，业务服务依赖此接口而非具体实现
type Notifier interface {
	// Notify 尽力而为地通知用户，绝不向调用方返回错误
	Notify(ctx context.Context, userID uint64, typ domain.NotificationType, subject, content string)
}

// NotificationService 通知应用服务
// 先落库再投递；落库或投递失败只记日志，不影响触发它的业务操作
type NotificationService struct {
	repo   domain.NotificationRepository
	sender domain.Sender
	idgen  *idgen.Generator
}

// NewNotificationService 创建通知应用服务
func NewNotificationService(repo domain.NotificationRepository, sender domain.Sender, gen *idgen.Generator) *NotificationService {
	return &NotificationService{
		repo:   repo,
		sender: sender,
		idgen:  gen,
	}
}

// Notify 创建并投递一条通知
func (s *NotificationService) Notify(ctx context.Context, userID uint64, typ domain.NotificationType, subject, content string) {
	now := time.Now()
	notification := &domain.Notification{
		NotificationID: s.idgen.NextString(),
		UserID:         userID,
		Type:           typ,
		Subject:        subject,
		Content:        content,
		SentAt:         &now,
	}

	if err := s.repo.Save(ctx, notification); err != nil {
		logger.Error(ctx, "Failed to persist notification",
			"user_id", userID,
			"type", typ,
			"error", err,
		)
		return
	}

	if s.sender != nil {
		if err := s.sender.Send(ctx, notification); err != nil {
			logger.Warn(ctx, "Failed to deliver notification",
				"notification_id", notification.NotificationID,
				"error", err,
			)
		}
	}
}

// History 查询用户最近的通知
func (s *NotificationService) History(ctx context.Context, userID uint64, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.FindByUser(ctx, userID, limit)
}

// MarkRead 标记通知已读
func (s *NotificationService) MarkRead(ctx context.Context, userID uint64, notificationID string) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}
