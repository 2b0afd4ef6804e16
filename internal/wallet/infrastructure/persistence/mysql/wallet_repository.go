// Package mysql 钱包仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/analyticalplatform/internal/wallet/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// WalletRepository 钱包仓储 MySQL 实现
type WalletRepository struct {
	db *db.DB
}

// NewWalletRepository 创建仓储实例
func NewWalletRepository(database *db.DB) *WalletRepository {
	return &WalletRepository{db: database}
}

// Create 创建钱包
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	err := r.db.Conn(ctx).Create(wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrWalletExists
		}
		return fmt.Errorf("failed to create wallet for user %d: %w", wallet.UserID, err)
	}
	return nil
}

// FindByUserID 按用户查询钱包
func (r *WalletRepository) FindByUserID(ctx context.Context, userID uint64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := r.db.Conn(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// Update 带版本比对的写入
// WHERE 条件携带读取时的版本号，更新行数为 0 即视为并发冲突
func (r *WalletRepository) Update(ctx context.Context, wallet *domain.Wallet) error {
	res := r.db.Conn(ctx).Model(&domain.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]interface{}{
			"balance": wallet.Balance,
			"version": wallet.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update wallet %d: %w", wallet.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}

	wallet.Version++
	return nil
}
