// Package mysql 价格预警仓储的 MySQL 实现
package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/analyticalplatform/internal/alert/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// AlertRepository 价格预警仓储 MySQL 实现
type AlertRepository struct {
	db *db.DB
}

// NewAlertRepository 创建仓储实例
func NewAlertRepository(database *db.DB) *AlertRepository {
	return &AlertRepository{db: database}
}

// Create 创建预警
func (r *AlertRepository) Create(ctx context.Context, alert *domain.PriceAlert) error {
	if err := r.db.Conn(ctx).Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert for user %d: %w", alert.UserID, err)
	}
	return nil
}

// Delete 删除属于该用户的预警
func (r *AlertRepository) Delete(ctx context.Context, userID uint64, alertID uint) error {
	res := r.db.Conn(ctx).Where("id = ? AND user_id = ?", alertID, userID).Delete(&domain.PriceAlert{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete alert %d: %w", alertID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// FindByUser 查询用户全部预警
func (r *AlertRepository) FindByUser(ctx context.Context, userID uint64) ([]*domain.PriceAlert, error) {
	var alerts []*domain.PriceAlert
	err := r.db.Conn(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts for user %d: %w", userID, err)
	}
	return alerts, nil
}

// FindActive 查询全部未触发的预警
func (r *AlertRepository) FindActive(ctx context.Context) ([]*domain.PriceAlert, error) {
	var alerts []*domain.PriceAlert
	err := r.db.Conn(ctx).Where("triggered = ?", false).Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	return alerts, nil
}

// MarkTriggered 条件更新，并发扫描下只有一方成功
func (r *AlertRepository) MarkTriggered(ctx context.Context, alert *domain.PriceAlert) (bool, error) {
	res := r.db.Conn(ctx).Model(&domain.PriceAlert{}).
		Where("id = ? AND triggered = ?", alert.ID, false).
		Updates(map[string]interface{}{
			"triggered":    true,
			"triggered_at": alert.TriggeredAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark alert %d triggered: %w", alert.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
