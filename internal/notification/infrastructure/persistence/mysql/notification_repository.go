// Package mysql 通知仓储的 MySQL 实现
package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/analyticalplatform/internal/notification/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// NotificationRepository 通知仓储 MySQL 实现
type NotificationRepository struct {
	db *db.DB
}

// NewNotificationRepository 创建仓储实例
func NewNotificationRepository(database *db.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

// Save 保存通知
func (r *NotificationRepository) Save(ctx context.Context, notification *domain.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// FindByUser 查询用户最近的通知
func (r *NotificationRepository) FindByUser(ctx context.Context, userID uint64, limit int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

// MarkRead 标记通知已读
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uint64, notificationID string) error {
	err := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	return nil
}
