// Package domain 审计日志的领域模型与仓储接口
package domain

import (
	"context"

	"gorm.io/gorm"
)

// AuditLog 审计记录，追加写，不可变更
type AuditLog struct {
	gorm.Model
	// 操作者（用户 ID 的字符串形式或系统任务名）
	Actor string `gorm:"column:actor;type:varchar(64);index;not null" json:"actor"`
	// 动作，例如 BUY、SELL、DEPOSIT、ALERT_TRIGGERED
	Action string `gorm:"column:action;type:varchar(32);not null" json:"action"`
	// 实体类型
	EntityType string `gorm:"column:entity_type;type:varchar(32);not null" json:"entity_type"`
	// 实体 ID
	EntityID string `gorm:"column:entity_id;type:varchar(64);index" json:"entity_id"`
	// 详情
	Details string `gorm:"column:details;type:text" json:"details"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }

// AuditRepository 审计仓储接口
type AuditRepository interface {
	Save(ctx context.Context, log *AuditLog) error
	FindByActor(ctx context.Context, actor string, limit int) ([]*AuditLog, error)
	FindRecent(ctx context.Context, limit int) ([]*AuditLog, error)
}
