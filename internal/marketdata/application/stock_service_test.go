package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/ratelimit"
)

type memoryStockRepo struct {
	mu     sync.Mutex
	stocks map[string]*domain.Stock
}

func newMemoryStockRepo() *memoryStockRepo {
	return &memoryStockRepo{stocks: make(map[string]*domain.Stock)}
}

func (r *memoryStockRepo) Save(ctx context.Context, stock *domain.Stock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *stock
	r.stocks[stock.Symbol] = &cp
	return nil
}

func (r *memoryStockRepo) FindBySymbol(ctx context.Context, symbol string) (*domain.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stock, ok := r.stocks[symbol]
	if !ok {
		return nil, nil
	}
	cp := *stock
	return &cp, nil
}

func (r *memoryStockRepo) FindAll(ctx context.Context) ([]*domain.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Stock, 0, len(r.stocks))
	for _, s := range r.stocks {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryStockRepo) TopPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return r.FindAll(ctx)
}

func (r *memoryStockRepo) WorstPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	return r.FindAll(ctx)
}

type fakeProvider struct {
	mu         sync.Mutex
	quotes     map[string]domain.ProviderQuote
	names      map[string]string
	failQuotes bool
	quoteCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		quotes: make(map[string]domain.ProviderQuote),
		names:  make(map[string]string),
	}
}

func (p *fakeProvider) GlobalQuote(ctx context.Context, symbol string) (domain.ProviderQuote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quoteCalls++
	if p.failQuotes {
		return domain.ProviderQuote{}, fmt.Errorf("%w: boom", domain.ErrProvider)
	}
	q, ok := p.quotes[symbol]
	if !ok {
		return domain.ProviderQuote{}, fmt.Errorf("%w: unknown symbol %s", domain.ErrProvider, symbol)
	}
	return q, nil
}

func (p *fakeProvider) CompanyOverview(ctx context.Context, symbol string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.names[symbol]
	if !ok {
		return "", fmt.Errorf("%w: no overview", domain.ErrProvider)
	}
	return name, nil
}

func (p *fakeProvider) SearchSymbols(ctx context.Context, query string) ([]domain.SymbolMatch, error) {
	return nil, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quoteCalls
}

type exhaustedBudget struct{}

func (exhaustedBudget) Acquire() error {
	return &ratelimit.LimitError{Scope: ratelimit.ScopeMinute, RetryAfter: 30 * time.Second}
}

type openBudget struct{}

func (openBudget) Acquire() error { return nil }

func newService(repo domain.StockRepository, provider domain.QuoteProvider, budget CallBudget, now time.Time) *StockService {
	svc := NewStockService(repo, provider, budget, nil, 5*time.Minute)
	return svc.WithClock(func() time.Time { return now })
}

func TestGetPriceFreshCacheSkipsProvider(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryStockRepo()
	provider := newFakeProvider()

	require.NoError(t, repo.Save(context.Background(), &domain.Stock{
		Symbol:       "AAPL",
		CurrentPrice: decimal.RequireFromString("165"),
		LastUpdated:  now.Add(-2 * time.Minute),
	}))

	svc := newService(repo, provider, exhaustedBudget{}, now)

	price, fresh, err := svc.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.True(t, price.Equal(decimal.RequireFromString("165")))
	assert.Equal(t, 0, provider.calls(), "fresh cache hit must not call the provider")
}

func TestGetPriceRefreshesStaleQuote(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryStockRepo()
	provider := newFakeProvider()
	provider.quotes["AAPL"] = domain.ProviderQuote{
		Price:         decimal.RequireFromString("170.50"),
		PreviousClose: decimal.RequireFromString("165.00"),
		Volume:        1000,
	}
	provider.names["AAPL"] = "Apple Inc"

	require.NoError(t, repo.Save(context.Background(), &domain.Stock{
		Symbol:       "AAPL",
		CurrentPrice: decimal.RequireFromString("150"),
		LastUpdated:  now.Add(-10 * time.Minute),
	}))

	svc := newService(repo, provider, openBudget{}, now)

	price, fresh, err := svc.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.True(t, price.Equal(decimal.RequireFromString("170.50")))

	stored, err := repo.FindBySymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, now, stored.LastUpdated)
	// (170.50 - 165) / 165 = 0.0333 (4dp), *100 = 3.33%
	assert.True(t, stored.PercentChange.Equal(decimal.RequireFromString("3.33")),
		"got %s", stored.PercentChange)
}

func TestGetPriceFallsBackToStaleOnThrottle(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryStockRepo()
	provider := newFakeProvider()

	require.NoError(t, repo.Save(context.Background(), &domain.Stock{
		Symbol:       "MSFT",
		CurrentPrice: decimal.RequireFromString("410.25"),
		LastUpdated:  now.Add(-time.Hour),
	}))

	svc := newService(repo, provider, exhaustedBudget{}, now)

	price, fresh, err := svc.GetPrice(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.False(t, fresh, "stale fallback must be reported as not fresh")
	assert.True(t, price.Equal(decimal.RequireFromString("410.25")))
	assert.Equal(t, 0, provider.calls())
}

func TestGetPriceFallsBackToStaleOnProviderError(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryStockRepo()
	provider := newFakeProvider()
	provider.failQuotes = true

	require.NoError(t, repo.Save(context.Background(), &domain.Stock{
		Symbol:       "MSFT",
		CurrentPrice: decimal.RequireFromString("400"),
		LastUpdated:  now.Add(-time.Hour),
	}))

	svc := newService(repo, provider, openBudget{}, now)

	price, fresh, err := svc.GetPrice(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.True(t, price.Equal(decimal.RequireFromString("400")))
}

func TestGetPriceNoCacheNoProvider(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newService(newMemoryStockRepo(), newFakeProvider(), exhaustedBudget{}, now)

	_, _, err := svc.GetPrice(context.Background(), "NVDA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoPriceAvailable))
}

func TestRefreshZeroPreviousCloseYieldsZeroChange(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryStockRepo()
	provider := newFakeProvider()
	provider.quotes["IPOX"] = domain.ProviderQuote{
		Price:         decimal.RequireFromString("25"),
		PreviousClose: decimal.Zero,
		Volume:        10,
	}

	svc := newService(repo, provider, openBudget{}, now)

	stock, err := svc.RefreshStock(context.Background(), "IPOX")
	require.NoError(t, err)
	assert.True(t, stock.PercentChange.IsZero())
}

func TestRefreshFallsBackToSymbolAsCompanyName(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryStockRepo()
	provider := newFakeProvider()
	provider.quotes["TSLA"] = domain.ProviderQuote{
		Price:         decimal.RequireFromString("250"),
		PreviousClose: decimal.RequireFromString("240"),
		Volume:        500,
	}
	// 没有 overview 数据：名称回退为标的代码

	svc := newService(repo, provider, openBudget{}, now)

	stock, err := svc.RefreshStock(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", stock.CompanyName)
}

func TestGetPriceNormalizesSymbol(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryStockRepo()
	require.NoError(t, repo.Save(context.Background(), &domain.Stock{
		Symbol:       "AAPL",
		CurrentPrice: decimal.RequireFromString("165"),
		LastUpdated:  now.Add(-time.Minute),
	}))

	svc := newService(repo, newFakeProvider(), exhaustedBudget{}, now)

	price, fresh, err := svc.GetPrice(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.True(t, price.Equal(decimal.RequireFromString("165")))
}
