package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Side 交易方向
type Side string

const (
	// SideBuy 买入
	SideBuy Side = "BUY"
	// SideSell 卖出
	SideSell Side = "SELL"
)

// Valid 校验方向合法性
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Transaction 成交流水，append-only，只增不改
type Transaction struct {
	gorm.Model
	// 业务流水号，雪花算法生成
	TxID   string `gorm:"column:tx_id;type:varchar(32);uniqueIndex;not null" json:"tx_id"`
	UserID uint64 `gorm:"column:user_id;index;not null" json:"user_id"`
	Symbol string `gorm:"column:symbol;type:varchar(16);index;not null" json:"symbol"`
	Side   Side   `gorm:"column:side;type:varchar(4);not null" json:"side"`
	// 成交数量
	Quantity int64 `gorm:"column:quantity;not null" json:"quantity"`
	// 成交单价
	Price decimal.Decimal `gorm:"column:price;type:decimal(20,4);not null" json:"price"`
	// 成交总额 = Price * Quantity
	Total decimal.Decimal `gorm:"column:total;type:decimal(20,4);not null" json:"total"`
}

// TableName 指定表名
func (Transaction) TableName() string { return "transactions" }
