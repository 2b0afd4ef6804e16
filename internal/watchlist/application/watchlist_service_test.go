package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/analyticalplatform/internal/watchlist/domain"
)

type memoryWatchlistRepo struct {
	lists  map[uint]*domain.Watchlist
	nextID uint
}

func newMemoryWatchlistRepo() *memoryWatchlistRepo {
	return &memoryWatchlistRepo{lists: make(map[uint]*domain.Watchlist)}
}

func (r *memoryWatchlistRepo) Create(_ context.Context, list *domain.Watchlist) error {
	for _, existing := range r.lists {
		if existing.UserID == list.UserID && existing.Name == list.Name {
			return domain.ErrWatchlistExists
		}
	}
	r.nextID++
	list.ID = r.nextID
	copied := *list
	r.lists[list.ID] = &copied
	return nil
}

func (r *memoryWatchlistRepo) Delete(_ context.Context, userID uint64, listID uint) error {
	list, ok := r.lists[listID]
	if !ok || list.UserID != userID {
		return domain.ErrWatchlistNotFound
	}
	delete(r.lists, listID)
	return nil
}

func (r *memoryWatchlistRepo) FindByID(_ context.Context, userID uint64, listID uint) (*domain.Watchlist, error) {
	list, ok := r.lists[listID]
	if !ok || list.UserID != userID {
		return nil, nil
	}
	copied := *list
	copied.Items = append([]domain.WatchlistItem(nil), list.Items...)
	return &copied, nil
}

func (r *memoryWatchlistRepo) FindByUser(_ context.Context, userID uint64) ([]*domain.Watchlist, error) {
	var out []*domain.Watchlist
	for _, list := range r.lists {
		if list.UserID == userID {
			copied := *list
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryWatchlistRepo) AddItem(_ context.Context, item *domain.WatchlistItem) error {
	list, ok := r.lists[item.WatchlistID]
	if !ok {
		return domain.ErrWatchlistNotFound
	}
	for _, existing := range list.Items {
		if existing.Symbol == item.Symbol {
			return domain.ErrSymbolAlreadyAdded
		}
	}
	list.Items = append(list.Items, *item)
	return nil
}

func (r *memoryWatchlistRepo) RemoveItem(_ context.Context, listID uint, symbol string) error {
	list, ok := r.lists[listID]
	if !ok {
		return domain.ErrWatchlistNotFound
	}
	for i, existing := range list.Items {
		if existing.Symbol == symbol {
			list.Items = append(list.Items[:i], list.Items[i+1:]...)
			return nil
		}
	}
	return domain.ErrSymbolNotInList
}

func TestCreateWatchlistRejectsDuplicateName(t *testing.T) {
	svc := NewWatchlistService(newMemoryWatchlistRepo(), nil)

	_, err := svc.Create(context.Background(), 1, "tech")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, "tech")
	assert.ErrorIs(t, err, domain.ErrWatchlistExists)

	// 不同用户可以用同名
	_, err = svc.Create(context.Background(), 2, "tech")
	assert.NoError(t, err)
}

func TestAddAndRemoveSymbol(t *testing.T) {
	svc := NewWatchlistService(newMemoryWatchlistRepo(), nil)

	list, err := svc.Create(context.Background(), 1, "tech")
	require.NoError(t, err)

	list, err = svc.AddSymbol(context.Background(), 1, list.ID, "aapl")
	require.NoError(t, err)
	assert.True(t, list.HasSymbol("AAPL"))

	_, err = svc.AddSymbol(context.Background(), 1, list.ID, "AAPL")
	assert.ErrorIs(t, err, domain.ErrSymbolAlreadyAdded)

	list, err = svc.RemoveSymbol(context.Background(), 1, list.ID, "AAPL")
	require.NoError(t, err)
	assert.False(t, list.HasSymbol("AAPL"))

	_, err = svc.RemoveSymbol(context.Background(), 1, list.ID, "AAPL")
	assert.ErrorIs(t, err, domain.ErrSymbolNotInList)
}

func TestWatchlistScopedToOwner(t *testing.T) {
	svc := NewWatchlistService(newMemoryWatchlistRepo(), nil)

	list, err := svc.Create(context.Background(), 1, "tech")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, list.ID)
	assert.ErrorIs(t, err, domain.ErrWatchlistNotFound)

	err = svc.Delete(context.Background(), 2, list.ID)
	assert.ErrorIs(t, err, domain.ErrWatchlistNotFound)
}
