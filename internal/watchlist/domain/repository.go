package domain

import "context"

// WatchlistRepository 自选股清单仓储接口
type WatchlistRepository interface {
	// Create 创建清单，同名冲突返回 ErrWatchlistExists
	Create(ctx context.Context, list *Watchlist) error
	// Delete 删除属于该用户的清单及其全部标的
	Delete(ctx context.Context, userID uint64, listID uint) error
	// FindByID 查询属于该用户的清单（含标的），未找到返回 (nil, nil)
	FindByID(ctx context.Context, userID uint64, listID uint) (*Watchlist, error)
	// FindByUser 查询用户全部清单（含标的）
	FindByUser(ctx context.Context, userID uint64) ([]*Watchlist, error)
	// AddItem 向清单追加标的
	AddItem(ctx context.Context, item *WatchlistItem) error
	// RemoveItem 从清单移除标的，未找到返回 ErrSymbolNotInList
	RemoveItem(ctx context.Context, listID uint, symbol string) error
}
