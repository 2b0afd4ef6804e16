// Package domain 自选股清单的领域模型与仓储接口
package domain

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrWatchlistNotFound 清单不存在或不属于该用户
	ErrWatchlistNotFound = errors.New("watchlist not found")
	// ErrWatchlistExists 同名清单已存在
	ErrWatchlistExists = errors.New("watchlist with this name already exists")
	// ErrSymbolAlreadyAdded 标的已在清单中
	ErrSymbolAlreadyAdded = errors.New("symbol already in watchlist")
	// ErrSymbolNotInList 标的不在清单中
	ErrSymbolNotInList = errors.New("symbol not in watchlist")
)

// Watchlist 自选股清单，(user_id, name) 唯一
type Watchlist struct {
	gorm.Model
	UserID uint64 `gorm:"column:user_id;uniqueIndex:idx_user_name;not null" json:"user_id"`
	Name   string `gorm:"column:name;type:varchar(64);uniqueIndex:idx_user_name;not null" json:"name"`
	// 清单内标的，删除清单时级联删除
	Items []WatchlistItem `gorm:"foreignKey:WatchlistID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName 指定表名
func (Watchlist) TableName() string { return "watchlists" }

// WatchlistItem 清单中的单个标的
type WatchlistItem struct {
	gorm.Model
	WatchlistID uint   `gorm:"column:watchlist_id;uniqueIndex:idx_list_symbol;not null" json:"-"`
	Symbol      string `gorm:"column:symbol;type:varchar(16);uniqueIndex:idx_list_symbol;not null" json:"symbol"`
}

// TableName 指定表名
func (WatchlistItem) TableName() string { return "watchlist_items" }

// HasSymbol 判断标的是否已在清单中
func (w *Watchlist) HasSymbol(symbol string) bool {
	for _, item := range w.Items {
		if item.Symbol == symbol {
			return true
		}
	}
	return false
}
