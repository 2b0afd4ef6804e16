// Package domain 钱包服务的领域模型与仓储接口
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrWalletNotFound 用户没有钱包
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletExists 用户已有钱包
	ErrWalletExists = errors.New("wallet already exists")
	// ErrInvalidAmount 金额必须为正数
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds 余额不足
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrVersionConflict 乐观并发冲突，调用方应重读后重试
	ErrVersionConflict = errors.New("wallet version conflict")
)

// Wallet 现金钱包聚合根，每个用户一个
// 余额不变量：任何可达状态下 Balance >= 0
// 每次成功变更递增 Version，写入时比对版本实现乐观并发控制
type Wallet struct {
	gorm.Model
	// 所属用户
	UserID uint64 `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	// 余额
	Balance decimal.Decimal `gorm:"column:balance;type:decimal(20,4);not null;default:0" json:"balance"`
	// 乐观并发版本号
	Version int64 `gorm:"column:version;not null;default:0" json:"version"`
}

// TableName 指定表名
func (Wallet) TableName() string { return "wallets" }

// Deposit 入金，金额必须为正
func (w *Wallet) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Withdraw 出金，余额不足时整体失败，不做部分扣减
func (w *Wallet) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// HasSufficientFunds 判断余额是否足以支付 amount
func (w *Wallet) HasSufficientFunds(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
