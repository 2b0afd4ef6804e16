// Package redis 行情仓储的 Redis 只读加速层
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/cache"
)

// StockRepository 行情仓储 Redis 实现
// 只承担 Save/FindBySymbol 的加速，列表查询不走缓存
type StockRepository struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewStockRepository 创建仓储实例
func NewStockRepository(c *cache.RedisCache, ttl time.Duration) *StockRepository {
	return &StockRepository{cache: c, ttl: ttl}
}

func stockKey(symbol string) string {
	return fmt.Sprintf("stock:quote:%s", symbol)
}

// Save 写入缓存
func (r *StockRepository) Save(ctx context.Context, stock *domain.Stock) error {
	return r.cache.Set(ctx, stockKey(stock.Symbol), stock, r.ttl)
}

// FindBySymbol 查询缓存，未命中返回 (nil, nil)
func (r *StockRepository) FindBySymbol(ctx context.Context, symbol string) (*domain.Stock, error) {
	var stock domain.Stock
	if err := r.cache.Get(ctx, stockKey(symbol), &stock); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

// FindAll 缓存层不支持列表查询
func (r *StockRepository) FindAll(ctx context.Context) ([]*domain.Stock, error) {
	return nil, nil
}

// TopPerformers 缓存层不支持列表查询
func (r *StockRepository) TopPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return nil, nil
}

// WorstPerformers 缓存层不支持列表查询
func (r *StockRepository) WorstPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return nil, nil
}
