// Package domain 通知服务的领域模型
package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// NotificationType 通知类型
type NotificationType string

const (
	// NotificationTypePriceAlert 价格预警触发
	NotificationTypePriceAlert NotificationType = "PRICE_ALERT"
	// NotificationTypeTrade 成交确认
	NotificationTypeTrade NotificationType = "TRADE"
	// NotificationTypeWallet 钱包资金变动
	NotificationTypeWallet NotificationType = "WALLET"
)

// Notification 通知实体
type Notification struct {
	gorm.Model
	// 通知业务 ID
	NotificationID string `gorm:"column:notification_id;type:varchar(32);uniqueIndex;not null" json:"notification_id"`
	// 用户 ID
	UserID uint64 `gorm:"column:user_id;index;not null" json:"user_id"`
	// 通知类型
	Type NotificationType `gorm:"column:type;type:varchar(20);not null" json:"type"`
	// 通知主题
	Subject string `gorm:"column:subject;type:varchar(100)" json:"subject"`
	// 通知内容
	Content string `gorm:"column:content;type:text" json:"content"`
	// 是否已读
	Read bool `gorm:"column:is_read;not null;default:false" json:"read"`
	// 投递时间
	SentAt *time.Time `gorm:"column:sent_at;type:datetime" json:"sent_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	Save(ctx context.Context, notification *Notification) error
	FindByUser(ctx context.Context, userID uint64, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID uint64, notificationID string) error
}

// Sender 通知投递接口，由具体传输实现（Kafka 等）
type Sender interface {
	Send(ctx context.Context, notification *Notification) error
}
