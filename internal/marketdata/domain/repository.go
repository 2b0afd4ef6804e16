package domain

import "context"

// StockRepository 行情仓储接口
type StockRepository interface {
	// Save 按 symbol 新增或覆盖行情
	Save(ctx context.Context, stock *Stock) error
	// FindBySymbol 按标的查询，未找到返回 (nil, nil)
	FindBySymbol(ctx context.Context, symbol string) (*Stock, error)
	// FindAll 返回全部行情
	FindAll(ctx context.Context) ([]*Stock, error)
	// TopPerformers 按涨跌幅降序返回前 limit 个
	TopPerformers(ctx context.Context, limit int) ([]*Stock, error)
	// WorstPerformers 按涨跌幅升序返回前 limit 个
	WorstPerformers(ctx context.Context, limit int) ([]*Stock, error)
}
