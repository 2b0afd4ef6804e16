// Package domain 交易服务的领域模型与仓储接口
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrInvalidQuantity 数量必须为正整数
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidSide 方向只能是 BUY 或 SELL
	ErrInvalidSide = errors.New("side must be BUY or SELL")
	// ErrPriceUnavailable 无法取得标的价格，交易拒绝执行
	ErrPriceUnavailable = errors.New("price unavailable for symbol")
	// ErrInsufficientHoldings 持仓数量不足
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Holding 用户持仓，(user_id, symbol) 唯一
// AverageCost 为加权平均成本，仅在买入时重算，卖出不改变成本
type Holding struct {
	gorm.Model
	UserID uint64 `gorm:"column:user_id;uniqueIndex:idx_user_symbol;not null" json:"user_id"`
	Symbol string `gorm:"column:symbol;type:varchar(16);uniqueIndex:idx_user_symbol;not null" json:"symbol"`
	// 持有数量
	Quantity int64 `gorm:"column:quantity;not null" json:"quantity"`
	// 加权平均成本
	AverageCost decimal.Decimal `gorm:"column:average_cost;type:decimal(20,4);not null" json:"average_cost"`
}

// TableName 指定表名
func (Holding) TableName() string { return "holdings" }

// AddShares 买入加仓并重算加权平均成本
func (h *Holding) AddShares(quantity int64, price decimal.Decimal) {
	oldCost := h.AverageCost.Mul(decimal.NewFromInt(h.Quantity))
	newCost := price.Mul(decimal.NewFromInt(quantity))
	total := h.Quantity + quantity

	h.AverageCost = oldCost.Add(newCost).DivRound(decimal.NewFromInt(total), 4)
	h.Quantity = total
}

// RemoveShares 卖出减仓，数量不足时整体失败
func (h *Holding) RemoveShares(quantity int64) error {
	if h.Quantity < quantity {
		return ErrInsufficientHoldings
	}
	h.Quantity -= quantity
	return nil
}

// MarketValue 按当前价计算市值
func (h *Holding) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(h.Quantity))
}

// UnrealizedPL 按当前价计算未实现盈亏
func (h *Holding) UnrealizedPL(price decimal.Decimal) decimal.Decimal {
	return price.Sub(h.AverageCost).Mul(decimal.NewFromInt(h.Quantity))
}
