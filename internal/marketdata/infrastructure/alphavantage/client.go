// Package alphavantage 是 Alpha Vantage 行情接口的适配器实现
package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Config 数据源配置
type Config struct {
	APIKey  string
	BaseURL string
	Timeout int
}

// Client Alpha Vantage 客户端
// 连续失败时熔断器打开，打开期间的调用直接以 ErrProvider 失败，
// 调用方的缓存回退逻辑不受影响
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	apiKey  string
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.alphavantage.co"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "alphavantage",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		apiKey:  cfg.APIKey,
	}
}

type globalQuotePayload struct {
	GlobalQuote struct {
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
}

type overviewPayload struct {
	Name string `json:"Name"`
}

type searchPayload struct {
	BestMatches []struct {
		Symbol   string `json:"1. symbol"`
		Name     string `json:"2. name"`
		Region   string `json:"4. region"`
		Currency string `json:"8. currency"`
	} `json:"bestMatches"`
}

// GlobalQuote 获取最新报价
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (domain.ProviderQuote, error) {
	var payload globalQuotePayload
	if err := c.get(ctx, map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
	}, &payload); err != nil {
		return domain.ProviderQuote{}, err
	}

	q := payload.GlobalQuote
	if q.Price == "" || q.PreviousClose == "" || q.Volume == "" {
		return domain.ProviderQuote{}, fmt.Errorf("%w: incomplete quote payload for %s", domain.ErrProvider, symbol)
	}

	price, err := decimal.NewFromString(q.Price)
	if err != nil {
		return domain.ProviderQuote{}, fmt.Errorf("%w: bad price %q: %v", domain.ErrProvider, q.Price, err)
	}
	previousClose, err := decimal.NewFromString(q.PreviousClose)
	if err != nil {
		return domain.ProviderQuote{}, fmt.Errorf("%w: bad previous close %q: %v", domain.ErrProvider, q.PreviousClose, err)
	}
	volume, err := strconv.ParseInt(q.Volume, 10, 64)
	if err != nil {
		return domain.ProviderQuote{}, fmt.Errorf("%w: bad volume %q: %v", domain.ErrProvider, q.Volume, err)
	}

	return domain.ProviderQuote{
		Price:         price,
		PreviousClose: previousClose,
		Volume:        volume,
	}, nil
}

// CompanyOverview 获取公司名称
func (c *Client) CompanyOverview(ctx context.Context, symbol string) (string, error) {
	var payload overviewPayload
	if err := c.get(ctx, map[string]string{
		"function": "OVERVIEW",
		"symbol":   symbol,
	}, &payload); err != nil {
		return "", err
	}

	if payload.Name == "" {
		return "", fmt.Errorf("%w: overview payload missing name for %s", domain.ErrProvider, symbol)
	}

	return payload.Name, nil
}

// SearchSymbols 按关键字搜索标的
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]domain.SymbolMatch, error) {
	var payload searchPayload
	if err := c.get(ctx, map[string]string{
		"function": "SYMBOL_SEARCH",
		"keywords": query,
	}, &payload); err != nil {
		return nil, err
	}

	matches := make([]domain.SymbolMatch, 0, len(payload.BestMatches))
	for _, m := range payload.BestMatches {
		matches = append(matches, domain.SymbolMatch{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Region:   m.Region,
			Currency: m.Currency,
		})
	}

	return matches, nil
}

func (c *Client) get(ctx context.Context, params map[string]string, out interface{}) error {
	params["apikey"] = c.apiKey

	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetResult(out).
			Get("/query")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		return nil, nil
	})
	if err != nil {
		logger.Warn(ctx, "Alpha Vantage call failed",
			"function", params["function"],
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	return nil
}
