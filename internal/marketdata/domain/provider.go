package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrProvider 外部行情数据源传输或解析失败
var ErrProvider = errors.New("market data provider error")

// ErrNoPriceAvailable 既没有可用的外部报价，也没有任何历史行情可以回退
var ErrNoPriceAvailable = errors.New("no price available")

// ProviderQuote 外部数据源返回的报价快照
type ProviderQuote struct {
	Price         decimal.Decimal
	PreviousClose decimal.Decimal
	Volume        int64
}

// SymbolMatch 标的搜索结果
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	Currency string `json:"currency"`
}

// QuoteProvider 外部行情数据源接口
// 适配器本身不做重试，重试与回退策略由调用方决定
type QuoteProvider interface {
	// GlobalQuote 获取最新报价，传输或解析失败返回 ErrProvider
	GlobalQuote(ctx context.Context, symbol string) (ProviderQuote, error)
	// CompanyOverview 获取公司名称
	CompanyOverview(ctx context.Context, symbol string) (string, error)
	// SearchSymbols 按关键字搜索标的
	SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error)
}
