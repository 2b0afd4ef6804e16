package persistence

import (
	"context"

	"github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
)

type compositeStockRepository struct {
	mysql domain.StockRepository
	redis domain.StockRepository
}

// NewCompositeStockRepository 组合仓储：Redis 读加速，MySQL 作为主库
// 新鲜度仍由行情自身的 last_updated 判断，缓存被淘汰时可从主库回退到陈旧行情
func NewCompositeStockRepository(mysql, redis domain.StockRepository) domain.StockRepository {
	return &compositeStockRepository{
		mysql: mysql,
		redis: redis,
	}
}

func (r *compositeStockRepository) Save(ctx context.Context, stock *domain.Stock) error {
	if err := r.mysql.Save(ctx, stock); err != nil {
		return err
	}
	// 缓存写入失败不影响主库
	_ = r.redis.Save(ctx, stock)
	return nil
}

func (r *compositeStockRepository) FindBySymbol(ctx context.Context, symbol string) (*domain.Stock, error) {
	stock, err := r.redis.FindBySymbol(ctx, symbol)
	if err == nil && stock != nil {
		return stock, nil
	}

	stock, err = r.mysql.FindBySymbol(ctx, symbol)
	if err != nil || stock == nil {
		return stock, err
	}

	_ = r.redis.Save(ctx, stock)
	return stock, nil
}

func (r *compositeStockRepository) FindAll(ctx context.Context) ([]*domain.Stock, error) {
	return r.mysql.FindAll(ctx)
}

func (r *compositeStockRepository) TopPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return r.mysql.TopPerformers(ctx, limit)
}

func (r *compositeStockRepository) WorstPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return r.mysql.WorstPerformers(ctx, limit)
}
