// Package application 行情服务的用例层：价格解析、行情刷新与标的查询
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
	"github.com/wyfcoding/analyticalplatform/pkg/metrics"
	"github.com/wyfcoding/analyticalplatform/pkg/ratelimit"
)

// CallBudget 外部数据源调用预算
type CallBudget interface {
	Acquire() error
}

// StockService 行情应用服务
// 是系统中"当前价格"的唯一来源：交易与预警都经由 GetPrice 取价
type StockService struct {
	repo     domain.StockRepository
	provider domain.QuoteProvider
	budget   CallBudget
	metrics  *metrics.Metrics

	quoteTTL time.Duration
	now      func() time.Time
}

// NewStockService 创建行情应用服务
func NewStockService(
	repo domain.StockRepository,
	provider domain.QuoteProvider,
	budget CallBudget,
	m *metrics.Metrics,
	quoteTTL time.Duration,
) *StockService {
	if quoteTTL <= 0 {
		quoteTTL = 5 * time.Minute
	}
	return &StockService{
		repo:     repo,
		provider: provider,
		budget:   budget,
		metrics:  m,
		quoteTTL: quoteTTL,
		now:      time.Now,
	}
}

// WithClock 覆盖时间源（测试用）
func (s *StockService) WithClock(now func() time.Time) *StockService {
	s.now = now
	return s
}

// GetPrice 解析标的当前价格
// 返回值 fresh 表示价格是否在新鲜度阈值内：
//  1. 已有行情且未过期，直接返回 fresh=true，不消耗调用预算
//  2. 否则申请调用预算并请求外部数据源，成功后落库并返回 fresh=true
//  3. 预算不足或数据源失败时，回退到最近一次保存的行情（fresh=false）；
//     没有任何历史行情时返回 ErrNoPriceAvailable
func (s *StockService) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	symbol = normalizeSymbol(symbol)

	stock, err := s.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		logger.Error(ctx, "Failed to load cached quote", "symbol", symbol, "error", err)
		stock = nil
	}

	if stock != nil && stock.IsFresh(s.now(), s.quoteTTL) {
		s.countLookup("fresh")
		return stock.CurrentPrice, true, nil
	}

	refreshed, refreshErr := s.refresh(ctx, symbol, stock)
	if refreshErr == nil {
		s.countLookup("refreshed")
		return refreshed.CurrentPrice, true, nil
	}

	// 回退策略：宁可返回陈旧价格，也不让调用方失败
	if stock != nil {
		logger.Warn(ctx, "Falling back to stale quote",
			"symbol", symbol,
			"age", s.now().Sub(stock.LastUpdated),
			"error", refreshErr,
		)
		s.countLookup("stale_fallback")
		return stock.CurrentPrice, false, nil
	}

	s.countLookup("miss")
	return decimal.Zero, false, fmt.Errorf("%w: %s: %v", domain.ErrNoPriceAvailable, symbol, refreshErr)
}

// RefreshStock 强制从外部数据源刷新行情
func (s *StockService) RefreshStock(ctx context.Context, symbol string) (*domain.Stock, error) {
	symbol = normalizeSymbol(symbol)

	stock, err := s.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return s.refresh(ctx, symbol, stock)
}

// refresh 申请预算、取报价、补全公司名称并落库
func (s *StockService) refresh(ctx context.Context, symbol string, existing *domain.Stock) (*domain.Stock, error) {
	if err := s.budget.Acquire(); err != nil {
		s.countThrottle(err)
		return nil, err
	}

	quote, err := s.provider.GlobalQuote(ctx, symbol)
	if err != nil {
		s.countProviderCall("error")
		return nil, err
	}
	s.countProviderCall("ok")

	stock := existing
	if stock == nil {
		stock = &domain.Stock{Symbol: symbol}
	}
	stock.ApplyQuote(quote, s.now())

	// 公司名称只在缺失时补全一次；补全失败不影响行情刷新
	if stock.CompanyName == "" {
		stock.CompanyName = s.lookupCompanyName(ctx, symbol)
	}

	if err := s.repo.Save(ctx, stock); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Stock quote refreshed",
		"symbol", symbol,
		"price", stock.CurrentPrice,
		"percent_change", stock.PercentChange,
	)

	return stock, nil
}

func (s *StockService) lookupCompanyName(ctx context.Context, symbol string) string {
	if err := s.budget.Acquire(); err != nil {
		logger.Warn(ctx, "Skipping company overview, call budget exhausted", "symbol", symbol)
		return symbol
	}

	name, err := s.provider.CompanyOverview(ctx, symbol)
	if err != nil {
		s.countProviderCall("error")
		logger.Warn(ctx, "Could not get company overview", "symbol", symbol, "error", err)
		return symbol
	}
	s.countProviderCall("ok")

	return name
}

// GetStock 查询单个标的行情
func (s *StockService) GetStock(ctx context.Context, symbol string) (*domain.Stock, error) {
	return s.repo.FindBySymbol(ctx, normalizeSymbol(symbol))
}

// ListStocks 查询全部行情
func (s *StockService) ListStocks(ctx context.Context) ([]*domain.Stock, error) {
	return s.repo.FindAll(ctx)
}

// TopPerformers 涨幅前 limit 名
func (s *StockService) TopPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopPerformers(ctx, limit)
}

// WorstPerformers 跌幅前 limit 名
func (s *StockService) WorstPerformers(ctx context.Context, limit int) ([]*domain.Stock, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.WorstPerformers(ctx, limit)
}

// Search 按关键字搜索标的，消耗调用预算
func (s *StockService) Search(ctx context.Context, query string) ([]domain.SymbolMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	if err := s.budget.Acquire(); err != nil {
		s.countThrottle(err)
		return nil, err
	}

	matches, err := s.provider.SearchSymbols(ctx, query)
	if err != nil {
		s.countProviderCall("error")
		return nil, err
	}
	s.countProviderCall("ok")

	return matches, nil
}

func (s *StockService) countLookup(outcome string) {
	if s.metrics != nil {
		s.metrics.QuoteLookupsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *StockService) countProviderCall(result string) {
	if s.metrics != nil {
		s.metrics.ProviderCallsTotal.WithLabelValues(result).Inc()
	}
}

func (s *StockService) countThrottle(err error) {
	if s.metrics == nil {
		return
	}
	var limitErr *ratelimit.LimitError
	if errors.As(err, &limitErr) {
		s.metrics.ProviderThrottledTotal.WithLabelValues(string(limitErr.Scope)).Inc()
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
