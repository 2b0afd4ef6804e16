// Package mysql 交易仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/analyticalplatform/internal/trading/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// HoldingRepository 持仓仓储 MySQL 实现
type HoldingRepository struct {
	db *db.DB
}

// NewHoldingRepository 创建仓储实例
func NewHoldingRepository(database *db.DB) *HoldingRepository {
	return &HoldingRepository{db: database}
}

// Save 创建或更新持仓
func (r *HoldingRepository) Save(ctx context.Context, holding *domain.Holding) error {
	if err := r.db.Conn(ctx).Save(holding).Error; err != nil {
		return fmt.Errorf("failed to save holding %d/%s: %w", holding.UserID, holding.Symbol, err)
	}
	return nil
}

// FindByUserAndSymbol 查询单个持仓
func (r *HoldingRepository) FindByUserAndSymbol(ctx context.Context, userID uint64, symbol string) (*domain.Holding, error) {
	var holding domain.Holding
	err := r.db.Conn(ctx).Where("user_id = ? AND symbol = ?", userID, symbol).First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find holding %d/%s: %w", userID, symbol, err)
	}
	return &holding, nil
}

// FindByUser 查询用户全部持仓
func (r *HoldingRepository) FindByUser(ctx context.Context, userID uint64) ([]*domain.Holding, error) {
	var holdings []*domain.Holding
	err := r.db.Conn(ctx).Where("user_id = ?", userID).Order("symbol ASC").Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings for user %d: %w", userID, err)
	}
	return holdings, nil
}

// Delete 删除持仓
func (r *HoldingRepository) Delete(ctx context.Context, holding *domain.Holding) error {
	if err := r.db.Conn(ctx).Delete(holding).Error; err != nil {
		return fmt.Errorf("failed to delete holding %d/%s: %w", holding.UserID, holding.Symbol, err)
	}
	return nil
}
