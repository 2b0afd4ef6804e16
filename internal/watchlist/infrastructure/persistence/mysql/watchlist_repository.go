// Package mysql 自选股清单仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/analyticalplatform/internal/watchlist/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
)

// WatchlistRepository 自选股清单仓储 MySQL 实现
type WatchlistRepository struct {
	db *db.DB
}

// NewWatchlistRepository 创建仓储实例
func NewWatchlistRepository(database *db.DB) *WatchlistRepository {
	return &WatchlistRepository{db: database}
}

// Create 创建清单
func (r *WatchlistRepository) Create(ctx context.Context, list *domain.Watchlist) error {
	err := r.db.Conn(ctx).Create(list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrWatchlistExists
		}
		return fmt.Errorf("failed to create watchlist %q for user %d: %w", list.Name, list.UserID, err)
	}
	return nil
}

// Delete 删除属于该用户的清单及其全部标的
func (r *WatchlistRepository) Delete(ctx context.Context, userID uint64, listID uint) error {
	res := r.db.Conn(ctx).Where("id = ? AND user_id = ?", listID, userID).
		Select("Items").
		Delete(&domain.Watchlist{Model: gorm.Model{ID: listID}})
	if res.Error != nil {
		return fmt.Errorf("failed to delete watchlist %d: %w", listID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrWatchlistNotFound
	}
	return nil
}

// FindByID 查询属于该用户的清单
func (r *WatchlistRepository) FindByID(ctx context.Context, userID uint64, listID uint) (*domain.Watchlist, error) {
	var list domain.Watchlist
	err := r.db.Conn(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find watchlist %d: %w", listID, err)
	}
	return &list, nil
}

// FindByUser 查询用户全部清单
func (r *WatchlistRepository) FindByUser(ctx context.Context, userID uint64) ([]*domain.Watchlist, error) {
	var lists []*domain.Watchlist
	err := r.db.Conn(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&lists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlists for user %d: %w", userID, err)
	}
	return lists, nil
}

// AddItem 向清单追加标的
func (r *WatchlistRepository) AddItem(ctx context.Context, item *domain.WatchlistItem) error {
	err := r.db.Conn(ctx).Create(item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrSymbolAlreadyAdded
		}
		return fmt.Errorf("failed to add %s to watchlist %d: %w", item.Symbol, item.WatchlistID, err)
	}
	return nil
}

// RemoveItem 从清单移除标的
func (r *WatchlistRepository) RemoveItem(ctx context.Context, listID uint, symbol string) error {
	res := r.db.Conn(ctx).Where("watchlist_id = ? AND symbol = ?", listID, symbol).
		Delete(&domain.WatchlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove %s from watchlist %d: %w", symbol, listID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSymbolNotInList
	}
	return nil
}
