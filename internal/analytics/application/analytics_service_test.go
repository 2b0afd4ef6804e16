package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tradingdomain "github.com/wyfcoding/analyticalplatform/internal/trading/domain"
)

type staticTxRepo struct {
	txs []*tradingdomain.Transaction
}

func (r staticTxRepo) Create(_ context.Context, _ *tradingdomain.Transaction) error { return nil }

func (r staticTxRepo) FindByUser(_ context.Context, userID uint64, _ int) ([]*tradingdomain.Transaction, error) {
	return r.FindAllByUser(context.Background(), userID)
}

func (r staticTxRepo) FindAllByUser(_ context.Context, userID uint64) ([]*tradingdomain.Transaction, error) {
	var out []*tradingdomain.Transaction
	for _, tx := range r.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func tx(userID uint64, symbol string, side tradingdomain.Side, qty int64, price int64) *tradingdomain.Transaction {
	p := decimal.NewFromInt(price)
	return &tradingdomain.Transaction{
		UserID:   userID,
		Symbol:   symbol,
		Side:     side,
		Quantity: qty,
		Price:    p,
		Total:    p.Mul(decimal.NewFromInt(qty)),
	}
}

func TestSummarizeAggregatesTrades(t *testing.T) {
	repo := staticTxRepo{txs: []*tradingdomain.Transaction{
		tx(1, "AAPL", tradingdomain.SideBuy, 10, 100),
		tx(1, "AAPL", tradingdomain.SideSell, 4, 120),
		tx(1, "MSFT", tradingdomain.SideBuy, 2, 300),
		tx(2, "TSLA", tradingdomain.SideBuy, 1, 200),
	}}
	svc := NewAnalyticsService(repo)

	summary, err := svc.Summarize(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalTrades)
	assert.Equal(t, 2, summary.BuyCount)
	assert.Equal(t, 1, summary.SellCount)
	assert.Equal(t, int64(12), summary.BuyVolume)
	assert.Equal(t, int64(4), summary.SellVolume)
	assert.True(t, summary.BuyTurnover.Equal(decimal.NewFromInt(1600)))
	assert.True(t, summary.SellTurnover.Equal(decimal.NewFromInt(480)))
	assert.True(t, summary.NetCashFlow.Equal(decimal.NewFromInt(-1120)))
	assert.Equal(t, "AAPL", summary.MostTradedSymbol)
}

func TestSummarizeRespectsTimeRange(t *testing.T) {
	old := tx(1, "AAPL", tradingdomain.SideBuy, 1, 100)
	old.CreatedAt = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	recent := tx(1, "MSFT", tradingdomain.SideBuy, 1, 300)
	recent.CreatedAt = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	svc := NewAnalyticsService(staticTxRepo{txs: []*tradingdomain.Transaction{old, recent}})

	summary, err := svc.Summarize(context.Background(), 1,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalTrades)
	assert.Equal(t, "MSFT", summary.MostTradedSymbol)
}

func TestSummarizeEmptyHistory(t *testing.T) {
	svc := NewAnalyticsService(staticTxRepo{})

	summary, err := svc.Summarize(context.Background(), 1, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalTrades)
	assert.True(t, summary.NetCashFlow.IsZero())
	assert.Empty(t, summary.MostTradedSymbol)
}
