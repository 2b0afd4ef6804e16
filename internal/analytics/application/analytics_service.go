// Package application 交易统计的用例层
// 基于成交流水做只读汇总，不维护自己的存储
package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	tradingdomain "github.com/wyfcoding/analyticalplatform/internal/trading/domain"
)

// TradeSummary 用户交易汇总
type TradeSummary struct {
	UserID      uint64 `json:"user_id"`
	TotalTrades int    `json:"total_trades"`
	BuyCount    int    `json:"buy_count"`
	SellCount   int    `json:"sell_count"`
	// 买入/卖出总股数
	BuyVolume  int64 `json:"buy_volume"`
	SellVolume int64 `json:"sell_volume"`
	// 买入总额与卖出总额
	BuyTurnover  decimal.Decimal `json:"buy_turnover"`
	SellTurnover decimal.Decimal `json:"sell_turnover"`
	// 净现金流 = 卖出总额 - 买入总额
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
	// 成交笔数最多的标的
	MostTradedSymbol string `json:"most_traded_symbol,omitempty"`
}

// AnalyticsService 交易统计应用服务
type AnalyticsService struct {
	txs tradingdomain.TransactionRepository
}

// NewAnalyticsService 创建统计应用服务
func NewAnalyticsService(txs tradingdomain.TransactionRepository) *AnalyticsService {
	return &AnalyticsService{txs: txs}
}

// Summarize 汇总用户在 [from, to] 区间内的成交流水，零值时间表示不限
func (s *AnalyticsService) Summarize(ctx context.Context, userID uint64, from, to time.Time) (*TradeSummary, error) {
	txs, err := s.txs.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &TradeSummary{
		UserID:       userID,
		BuyTurnover:  decimal.Zero,
		SellTurnover: decimal.Zero,
	}

	tradesBySymbol := make(map[string]int)
	for _, tx := range txs {
		if !from.IsZero() && tx.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && tx.CreatedAt.After(to) {
			continue
		}
		summary.TotalTrades++
		tradesBySymbol[tx.Symbol]++
		switch tx.Side {
		case tradingdomain.SideBuy:
			summary.BuyCount++
			summary.BuyVolume += tx.Quantity
			summary.BuyTurnover = summary.BuyTurnover.Add(tx.Total)
		case tradingdomain.SideSell:
			summary.SellCount++
			summary.SellVolume += tx.Quantity
			summary.SellTurnover = summary.SellTurnover.Add(tx.Total)
		}
	}

	summary.NetCashFlow = summary.SellTurnover.Sub(summary.BuyTurnover)

	best := 0
	for symbol, count := range tradesBySymbol {
		if count > best || (count == best && symbol < summary.MostTradedSymbol) {
			best = count
			summary.MostTradedSymbol = symbol
		}
	}
	return summary, nil
}
