// Package application 钱包服务的用例层
package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	auditapp "github.com/wyfcoding/analyticalplatform/internal/audit/application"
	"github.com/wyfcoding/analyticalplatform/internal/wallet/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// WalletService 钱包应用服务
type WalletService struct {
	repo  domain.WalletRepository
	audit auditapp.Recorder
}

// NewWalletService 创建钱包应用服务
func NewWalletService(repo domain.WalletRepository, audit auditapp.Recorder) *WalletService {
	return &WalletService{
		repo:  repo,
		audit: audit,
	}
}

// Create 为用户创建钱包，可携带初始余额
func (s *WalletService) Create(ctx context.Context, userID uint64, initialBalance decimal.Decimal) (*domain.Wallet, error) {
	if initialBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrWalletExists
	}

	wallet := &domain.Wallet{
		UserID:  userID,
		Balance: initialBalance,
	}
	if err := s.repo.Create(ctx, wallet); err != nil {
		return nil, err
	}

	s.record(ctx, userID, "CREATE", wallet, "created wallet with initial balance "+initialBalance.String())
	return wallet, nil
}

// Get 查询用户钱包
func (s *WalletService) Get(ctx context.Context, userID uint64) (*domain.Wallet, error) {
	wallet, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: user %d", domain.ErrWalletNotFound, userID)
	}
	return wallet, nil
}

// Deposit 入金
func (s *WalletService) Deposit(ctx context.Context, userID uint64, amount decimal.Decimal) (*domain.Wallet, error) {
	wallet, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := wallet.Deposit(amount); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, wallet); err != nil {
		return nil, err
	}

	s.record(ctx, userID, "DEPOSIT", wallet, "deposited "+amount.String())
	return wallet, nil
}

// Withdraw 出金，余额不足时不做任何变更
func (s *WalletService) Withdraw(ctx context.Context, userID uint64, amount decimal.Decimal) (*domain.Wallet, error) {
	wallet, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := wallet.Withdraw(amount); err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			s.record(ctx, userID, "WITHDRAW_FAILED", wallet, "insufficient funds for "+amount.String())
		}
		return nil, err
	}
	if err := s.repo.Update(ctx, wallet); err != nil {
		return nil, err
	}

	s.record(ctx, userID, "WITHDRAW", wallet, "withdrew "+amount.String())
	return wallet, nil
}

func (s *WalletService) record(ctx context.Context, userID uint64, action string, wallet *domain.Wallet, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx,
		strconv.FormatUint(userID, 10),
		action,
		"Wallet",
		strconv.FormatUint(uint64(wallet.ID), 10),
		details,
	)
	logger.Debug(ctx, "Wallet operation recorded", "user_id", userID, "action", action)
}
