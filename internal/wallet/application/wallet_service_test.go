package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/analyticalplatform/internal/wallet/domain"
)

type memoryWalletRepo struct {
	wallets map[uint64]*domain.Wallet
	nextID  uint

	// 模拟并发写冲突：前 N 次 Update 返回版本冲突
	conflicts int
}

func newMemoryWalletRepo() *memoryWalletRepo {
	return &memoryWalletRepo{wallets: make(map[uint64]*domain.Wallet)}
}

func (r *memoryWalletRepo) Create(_ context.Context, wallet *domain.Wallet) error {
	if _, ok := r.wallets[wallet.UserID]; ok {
		return domain.ErrWalletExists
	}
	r.nextID++
	wallet.ID = r.nextID
	copied := *wallet
	r.wallets[wallet.UserID] = &copied
	return nil
}

func (r *memoryWalletRepo) FindByUserID(_ context.Context, userID uint64) (*domain.Wallet, error) {
	wallet, ok := r.wallets[userID]
	if !ok {
		return nil, nil
	}
	copied := *wallet
	return &copied, nil
}

func (r *memoryWalletRepo) Update(_ context.Context, wallet *domain.Wallet) error {
	if r.conflicts > 0 {
		r.conflicts--
		return domain.ErrVersionConflict
	}
	stored, ok := r.wallets[wallet.UserID]
	if !ok || stored.Version != wallet.Version {
		return domain.ErrVersionConflict
	}
	wallet.Version++
	copied := *wallet
	r.wallets[wallet.UserID] = &copied
	return nil
}

type recordedAudit struct {
	actions []string
}

func (a *recordedAudit) Record(_ context.Context, _, action, _, _, _ string) {
	a.actions = append(a.actions, action)
}

func TestCreateWallet(t *testing.T) {
	repo := newMemoryWalletRepo()
	svc := NewWalletService(repo, &recordedAudit{})

	wallet, err := svc.Create(context.Background(), 1, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(1000)))

	_, err = svc.Create(context.Background(), 1, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrWalletExists)
}

func TestCreateWalletRejectsNegativeBalance(t *testing.T) {
	svc := NewWalletService(newMemoryWalletRepo(), nil)

	_, err := svc.Create(context.Background(), 1, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDepositIncreasesBalance(t *testing.T) {
	repo := newMemoryWalletRepo()
	audit := &recordedAudit{}
	svc := NewWalletService(repo, audit)

	_, err := svc.Create(context.Background(), 1, decimal.NewFromInt(100))
	require.NoError(t, err)

	wallet, err := svc.Deposit(context.Background(), 1, decimal.NewFromFloat(50.25))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromFloat(150.25)))
	assert.Contains(t, audit.actions, "DEPOSIT")
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	repo := newMemoryWalletRepo()
	svc := NewWalletService(repo, nil)

	_, err := svc.Create(context.Background(), 1, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = svc.Deposit(context.Background(), 1, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	wallet, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(100)))
}

func TestWithdrawInsufficientFundsLeavesBalanceUntouched(t *testing.T) {
	repo := newMemoryWalletRepo()
	svc := NewWalletService(repo, &recordedAudit{})

	_, err := svc.Create(context.Background(), 1, decimal.NewFromInt(30))
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), 1, decimal.NewFromInt(31))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	wallet, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(30)))
}

func TestWithdrawExactBalance(t *testing.T) {
	repo := newMemoryWalletRepo()
	svc := NewWalletService(repo, nil)

	_, err := svc.Create(context.Background(), 1, decimal.NewFromInt(30))
	require.NoError(t, err)

	wallet, err := svc.Withdraw(context.Background(), 1, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.IsZero())
}

func TestWithdrawSurfacesVersionConflict(t *testing.T) {
	repo := newMemoryWalletRepo()
	repo.conflicts = 1
	svc := NewWalletService(repo, nil)

	_, err := svc.Create(context.Background(), 1, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), 1, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestGetMissingWallet(t *testing.T) {
	svc := NewWalletService(newMemoryWalletRepo(), nil)

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}
