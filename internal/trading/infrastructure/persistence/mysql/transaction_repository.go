package mysql

import (
	"context"
	"fmt"

	"github.com/wyfcoding/analyticalplatform/internal/trading/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// TransactionRepository 成交流水仓储 MySQL 实现
type TransactionRepository struct {
	db *db.DB
}

// NewTransactionRepository 创建仓储实例
func NewTransactionRepository(database *db.DB) *TransactionRepository {
	return &TransactionRepository{db: database}
}

// Create 写入一条成交流水
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if err := r.db.Conn(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction %s: %w", tx.TxID, err)
	}
	return nil
}

// FindByUser 按时间倒序查询用户成交记录
func (r *TransactionRepository) FindByUser(ctx context.Context, userID uint64, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var txs []*domain.Transaction
	err := r.db.Conn(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %d: %w", userID, err)
	}
	return txs, nil
}

// FindAllByUser 查询用户全部成交记录
func (r *TransactionRepository) FindAllByUser(ctx context.Context, userID uint64) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	err := r.db.Conn(ctx).Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list all transactions for user %d: %w", userID, err)
	}
	return txs, nil
}
