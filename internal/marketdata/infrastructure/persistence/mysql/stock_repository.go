// Package mysql 行情仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// StockRepository 行情仓储 MySQL 实现
type StockRepository struct {
	db *db.DB
}

// NewStockRepository 创建仓储实例
func NewStockRepository(database *db.DB) *StockRepository {
	return &StockRepository{db: database}
}

// Save 按 symbol 新增或覆盖行情
func (r *StockRepository) Save(ctx context.Context, stock *domain.Stock) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_name", "current_price", "previous_close",
			"percent_change", "volume", "last_updated", "updated_at",
		}),
	}).Create(stock).Error
	if err != nil {
		return fmt.Errorf("failed to save stock %s: %w", stock.Symbol, err)
	}
	return nil
}

// FindBySymbol 按标的查询，未找到返回 (nil, nil)
func (r *StockRepository) FindBySymbol(ctx context.Context, symbol string) (*domain.Stock, error) {
	var stock domain.Stock
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find stock %s: %w", symbol, err)
	}
	return &stock, nil
}

// FindAll 返回全部行情
func (r *StockRepository) FindAll(ctx context.Context) ([]*domain.Stock, error) {
	var stocks []*domain.Stock
	if err := r.db.WithContext(ctx).Order("symbol ASC").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	return stocks, nil
}

// TopPerformers 按涨跌幅降序返回前 limit 个
func (r *StockRepository) TopPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return r.findByChange(ctx, "percent_change DESC", limit)
}

// WorstPerformers 按涨跌幅升序返回前 limit 个
func (r *StockRepository) WorstPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return r.findByChange(ctx, "percent_change ASC", limit)
}

func (r *StockRepository) findByChange(ctx context.Context, order string, limit int) ([]*domain.Stock, error) {
	var stocks []*domain.Stock
	err := r.db.WithContext(ctx).
		Where("last_updated IS NOT NULL").
		Order(order).
		Limit(limit).
		Find(&stocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list performers: %w", err)
	}
	return stocks, nil
}
