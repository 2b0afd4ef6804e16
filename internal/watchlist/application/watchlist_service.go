// Package application 自选股清单的用例层
package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	auditapp "github.com/wyfcoding/analyticalplatform/internal/audit/application"
	"github.com/wyfcoding/analyticalplatform/internal/watchlist/domain"
)

// WatchlistService 自选股清单应用服务
type WatchlistService struct {
	repo  domain.WatchlistRepository
	audit auditapp.Recorder
}

// NewWatchlistService 创建清单应用服务
func NewWatchlistService(repo domain.WatchlistRepository, audit auditapp.Recorder) *WatchlistService {
	return &WatchlistService{repo: repo, audit: audit}
}

// Create 创建清单
func (s *WatchlistService) Create(ctx context.Context, userID uint64, name string) (*domain.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("watchlist name is required")
	}

	list := &domain.Watchlist{
		UserID: userID,
		Name:   name,
		Items:  []domain.WatchlistItem{},
	}
	if err := s.repo.Create(ctx, list); err != nil {
		return nil, err
	}

	s.record(ctx, userID, "CREATE_WATCHLIST", list.ID, name)
	return list, nil
}

// Delete 删除清单
func (s *WatchlistService) Delete(ctx context.Context, userID uint64, listID uint) error {
	if err := s.repo.Delete(ctx, userID, listID); err != nil {
		return err
	}
	s.record(ctx, userID, "DELETE_WATCHLIST", listID, "")
	return nil
}

// List 查询用户全部清单
func (s *WatchlistService) List(ctx context.Context, userID uint64) ([]*domain.Watchlist, error) {
	return s.repo.FindByUser(ctx, userID)
}

// Get 查询单个清单
func (s *WatchlistService) Get(ctx context.Context, userID uint64, listID uint) (*domain.Watchlist, error) {
	list, err := s.repo.FindByID(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrWatchlistNotFound, listID)
	}
	return list, nil
}

// AddSymbol 向清单追加标的
func (s *WatchlistService) AddSymbol(ctx context.Context, userID uint64, listID uint, symbol string) (*domain.Watchlist, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if list.HasSymbol(symbol) {
		return nil, domain.ErrSymbolAlreadyAdded
	}

	item := &domain.WatchlistItem{WatchlistID: listID, Symbol: symbol}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.record(ctx, userID, "ADD_SYMBOL", listID, symbol)
	return s.Get(ctx, userID, listID)
}

// RemoveSymbol 从清单移除标的
func (s *WatchlistService) RemoveSymbol(ctx context.Context, userID uint64, listID uint, symbol string) (*domain.Watchlist, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, list.ID, symbol); err != nil {
		return nil, err
	}

	s.record(ctx, userID, "REMOVE_SYMBOL", listID, symbol)
	return s.Get(ctx, userID, listID)
}

func (s *WatchlistService) record(ctx context.Context, userID uint64, action string, listID uint, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx,
		strconv.FormatUint(userID, 10),
		action,
		"Watchlist",
		strconv.FormatUint(uint64(listID), 10),
		details,
	)
}
