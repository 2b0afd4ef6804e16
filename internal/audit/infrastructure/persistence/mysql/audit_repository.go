// Package mysql 审计仓储的 MySQL 实现
package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/analyticalplatform/internal/audit/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// AuditRepository 审计仓储 MySQL 实现
type AuditRepository struct {
	db *db.DB
}

// NewAuditRepository 创建仓储实例
func NewAuditRepository(database *db.DB) *AuditRepository {
	return &AuditRepository{db: database}
}

// Save 追加一条审计记录
func (r *AuditRepository) Save(ctx context.Context, log *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to save audit log: %w", err)
	}
	return nil
}

// FindByActor 查询某个操作者最近的审计记录
func (r *AuditRepository) FindByActor(ctx context.Context, actor string, limit int) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	err := r.db.WithContext(ctx).
		Where("actor = ?", actor).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs for %s: %w", actor, err)
	}
	return logs, nil
}

// FindRecent 查询最近的审计记录
func (r *AuditRepository) FindRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent audit logs: %w", err)
	}
	return logs, nil
}
