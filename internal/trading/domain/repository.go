package domain

import "context"

// HoldingRepository 持仓仓储接口
type HoldingRepository interface {
	// Save 创建或更新持仓
	Save(ctx context.Context, holding *Holding) error
	// FindByUserAndSymbol 查询单个持仓，未找到返回 (nil, nil)
	FindByUserAndSymbol(ctx context.Context, userID uint64, symbol string) (*Holding, error)
	// FindByUser 查询用户全部持仓
	FindByUser(ctx context.Context, userID uint64) ([]*Holding, error)
	// Delete 删除持仓，数量归零时调用
	Delete(ctx context.Context, holding *Holding) error
}

// TransactionRepository 成交流水仓储接口
type TransactionRepository interface {
	// Create 写入一条成交流水
	Create(ctx context.Context, tx *Transaction) error
	// FindByUser 按时间倒序查询用户成交记录
	FindByUser(ctx context.Context, userID uint64, limit int) ([]*Transaction, error)
	// FindAllByUser 查询用户全部成交记录，供统计汇总使用
	FindAllByUser(ctx context.Context, userID uint64) ([]*Transaction, error)
}

// TxManager 事务管理接口，fn 内的仓储操作共享同一数据库事务
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
