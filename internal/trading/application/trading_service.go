// Package application 交易服务的用例层
package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	auditapp "github.com/wyfcoding/analyticalplatform/internal/audit/application"
	notifapp "github.com/wyfcoding/analyticalplatform/internal/notification/application"
	notifdomain "github.com/wyfcoding/analyticalplatform/internal/notification/domain"
	"github.com/wyfcoding/analyticalplatform/internal/trading/domain"
	walletdomain "github.com/wyfcoding/analyticalplatform/internal/wallet/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/idgen"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
	"github.com/wyfcoding/analyticalplatform/pkg/metrics"
)

// PriceSource 价格来源接口，fresh 表示价格是否在新鲜期内
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error)
}

// TradeEventPublisher 成交事件发布接口
type TradeEventPublisher interface {
	PublishTrade(ctx context.Context, tx *domain.Transaction) error
}

// PortfolioPosition 组合中的一个持仓及其估值
type PortfolioPosition struct {
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	UnrealizedPL decimal.Decimal `json:"unrealized_pl"`
	// 价格是否新鲜，陈旧回退时为 false
	PriceFresh bool `json:"price_fresh"`
}

// Portfolio 用户投资组合估值
type Portfolio struct {
	UserID       uint64               `json:"user_id"`
	CashBalance  decimal.Decimal      `json:"cash_balance"`
	Positions    []*PortfolioPosition `json:"positions"`
	MarketValue  decimal.Decimal      `json:"market_value"`
	TotalValue   decimal.Decimal      `json:"total_value"`
	UnrealizedPL decimal.Decimal      `json:"unrealized_pl"`
}

// TradingService 交易应用服务
// 买卖在单个数据库事务内完成钱包扣款/入账、持仓变更与流水写入，
// 钱包写入使用乐观并发控制，冲突时整体重试一次
type TradingService struct {
	holdings  domain.HoldingRepository
	txs       domain.TransactionRepository
	wallets   walletdomain.WalletRepository
	txManager domain.TxManager
	prices    PriceSource
	idgen     *idgen.Generator
	publisher TradeEventPublisher
	notifier  notifapp.Notifier
	audit     auditapp.Recorder
	metrics   *metrics.Metrics
}

// NewTradingService 创建交易应用服务
func NewTradingService(
	holdings domain.HoldingRepository,
	txs domain.TransactionRepository,
	wallets walletdomain.WalletRepository,
	txManager domain.TxManager,
	prices PriceSource,
	gen *idgen.Generator,
	publisher TradeEventPublisher,
	notifier notifapp.Notifier,
	audit auditapp.Recorder,
	m *metrics.Metrics,
) *TradingService {
	return &TradingService{
		holdings:  holdings,
		txs:       txs,
		wallets:   wallets,
		txManager: txManager,
		prices:    prices,
		idgen:     gen,
		publisher: publisher,
		notifier:  notifier,
		audit:     audit,
		metrics:   m,
	}
}

// Execute 执行一笔市价交易
// 价格在事务外解析一次，事务内所有写入要么全部生效要么全部回滚
func (s *TradingService) Execute(ctx context.Context, userID uint64, symbol string, side domain.Side, quantity int64) (*domain.Transaction, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !side.Valid() {
		return nil, domain.ErrInvalidSide
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	price, _, err := s.prices.GetPrice(ctx, symbol)
	if err != nil {
		s.countTrade(side, "rejected")
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrPriceUnavailable, symbol, err)
	}
	total := price.Mul(decimal.NewFromInt(quantity))

	trade := &domain.Transaction{
		TxID:     s.idgen.NextString(),
		UserID:   userID,
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Total:    total,
	}

	// 钱包版本冲突说明并发交易抢先提交，重读重算后重试一次
	for attempt := 0; ; attempt++ {
		err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.executeInTx(ctx, trade)
		})
		if errors.Is(err, walletdomain.ErrVersionConflict) && attempt == 0 {
			s.countConflict()
			logger.Warn(ctx, "Wallet version conflict, retrying trade", "tx_id", trade.TxID, "user_id", userID)
			continue
		}
		break
	}
	if err != nil {
		s.countTrade(side, "failed")
		return nil, err
	}

	s.countTrade(side, "success")
	s.afterCommit(ctx, trade)
	return trade, nil
}

func (s *TradingService) executeInTx(ctx context.Context, trade *domain.Transaction) error {
	wallet, err := s.wallets.FindByUserID(ctx, trade.UserID)
	if err != nil {
		return err
	}
	if wallet == nil {
		return fmt.Errorf("%w: user %d", walletdomain.ErrWalletNotFound, trade.UserID)
	}

	switch trade.Side {
	case domain.SideBuy:
		if err := s.applyBuy(ctx, wallet, trade); err != nil {
			return err
		}
	case domain.SideSell:
		if err := s.applySell(ctx, wallet, trade); err != nil {
			return err
		}
	}

	return s.txs.Create(ctx, trade)
}

func (s *TradingService) applyBuy(ctx context.Context, wallet *walletdomain.Wallet, trade *domain.Transaction) error {
	if err := wallet.Withdraw(trade.Total); err != nil {
		return err
	}
	if err := s.wallets.Update(ctx, wallet); err != nil {
		return err
	}

	holding, err := s.holdings.FindByUserAndSymbol(ctx, trade.UserID, trade.Symbol)
	if err != nil {
		return err
	}
	if holding == nil {
		holding = &domain.Holding{
			UserID:      trade.UserID,
			Symbol:      trade.Symbol,
			AverageCost: decimal.Zero,
		}
	}
	holding.AddShares(trade.Quantity, trade.Price)
	return s.holdings.Save(ctx, holding)
}

func (s *TradingService) applySell(ctx context.Context, wallet *walletdomain.Wallet, trade *domain.Transaction) error {
	holding, err := s.holdings.FindByUserAndSymbol(ctx, trade.UserID, trade.Symbol)
	if err != nil {
		return err
	}
	if holding == nil {
		return fmt.Errorf("%w: %d/%s", domain.ErrInsufficientHoldings, trade.UserID, trade.Symbol)
	}
	if err := holding.RemoveShares(trade.Quantity); err != nil {
		return err
	}

	if err := wallet.Deposit(trade.Total); err != nil {
		return err
	}
	if err := s.wallets.Update(ctx, wallet); err != nil {
		return err
	}

	// 清仓后删除持仓行，组合里不留零持仓
	if holding.Quantity == 0 {
		return s.holdings.Delete(ctx, holding)
	}
	return s.holdings.Save(ctx, holding)
}

// afterCommit 事务提交后的尽力而为动作：事件发布、通知、审计
func (s *TradingService) afterCommit(ctx context.Context, trade *domain.Transaction) {
	if s.publisher != nil {
		if err := s.publisher.PublishTrade(ctx, trade); err != nil {
			logger.Error(ctx, "Failed to publish trade event", "tx_id", trade.TxID, "error", err)
		}
	}
	if s.notifier != nil {
		subject := fmt.Sprintf("%s order filled: %s", trade.Side, trade.Symbol)
		content := fmt.Sprintf("%s %d %s @ %s, total %s",
			trade.Side, trade.Quantity, trade.Symbol, trade.Price.String(), trade.Total.String())
		s.notifier.Notify(ctx, trade.UserID, notifdomain.NotificationTypeTrade, subject, content)
	}
	if s.audit != nil {
		s.audit.Record(ctx,
			strconv.FormatUint(trade.UserID, 10),
			string(trade.Side),
			"Transaction",
			trade.TxID,
			fmt.Sprintf("%s %d %s @ %s", trade.Side, trade.Quantity, trade.Symbol, trade.Price.String()),
		)
	}
}

// GetPortfolio 汇总用户现金与持仓估值
// 单个标的价格解析失败时以平均成本估值，不让整个组合查询失败
func (s *TradingService) GetPortfolio(ctx context.Context, userID uint64) (*Portfolio, error) {
	wallet, err := s.wallets.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: user %d", walletdomain.ErrWalletNotFound, userID)
	}

	holdings, err := s.holdings.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio := &Portfolio{
		UserID:       userID,
		CashBalance:  wallet.Balance,
		Positions:    make([]*PortfolioPosition, 0, len(holdings)),
		MarketValue:  decimal.Zero,
		UnrealizedPL: decimal.Zero,
	}

	for _, h := range holdings {
		price, fresh, err := s.prices.GetPrice(ctx, h.Symbol)
		if err != nil {
			logger.Warn(ctx, "Falling back to average cost for valuation", "symbol", h.Symbol, "error", err)
			price, fresh = h.AverageCost, false
		}

		pos := &PortfolioPosition{
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			AverageCost:  h.AverageCost,
			CurrentPrice: price,
			MarketValue:  h.MarketValue(price),
			UnrealizedPL: h.UnrealizedPL(price),
			PriceFresh:   fresh,
		}
		portfolio.Positions = append(portfolio.Positions, pos)
		portfolio.MarketValue = portfolio.MarketValue.Add(pos.MarketValue)
		portfolio.UnrealizedPL = portfolio.UnrealizedPL.Add(pos.UnrealizedPL)
	}

	portfolio.TotalValue = portfolio.CashBalance.Add(portfolio.MarketValue)
	return portfolio, nil
}

// GetTransactions 查询用户成交历史
func (s *TradingService) GetTransactions(ctx context.Context, userID uint64, limit int) ([]*domain.Transaction, error) {
	return s.txs.FindByUser(ctx, userID, limit)
}

func (s *TradingService) countTrade(side domain.Side, result string) {
	if s.metrics != nil {
		s.metrics.TradesTotal.WithLabelValues(string(side), result).Inc()
	}
}

func (s *TradingService) countConflict() {
	if s.metrics != nil {
		s.metrics.WalletConflictsTotal.Inc()
	}
}
