// Package domain 包含行情服务的领域模型、仓储接口与外部数据源接口
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock 股票行情实体，每个标的一行，保存最近一次成功获取的报价
type Stock struct {
	gorm.Model
	// 标的代码
	Symbol string `gorm:"column:symbol;type:varchar(20);uniqueIndex;not null" json:"symbol"`
	// 公司名称
	CompanyName string `gorm:"column:company_name;type:varchar(128)" json:"company_name"`
	// 最新价
	CurrentPrice decimal.Decimal `gorm:"column:current_price;type:decimal(20,4);not null;default:0" json:"current_price"`
	// 昨收价
	PreviousClose decimal.Decimal `gorm:"column:previous_close;type:decimal(20,4);not null;default:0" json:"previous_close"`
	// 涨跌幅（百分比）
	PercentChange decimal.Decimal `gorm:"column:percent_change;type:decimal(10,4);not null;default:0" json:"percent_change"`
	// 成交量
	Volume int64 `gorm:"column:volume;type:bigint;not null;default:0" json:"volume"`
	// 行情更新时间
	LastUpdated time.Time `gorm:"column:last_updated" json:"last_updated"`
}

// TableName 指定表名
func (Stock) TableName() string { return "stocks" }

// IsFresh 判断行情是否仍然新鲜（距上次更新不足 ttl）
func (s *Stock) IsFresh(now time.Time, ttl time.Duration) bool {
	if s.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(s.LastUpdated) < ttl
}

// ApplyQuote 用新的报价刷新行情并重新计算涨跌幅
// 昨收价非正时涨跌幅记 0
func (s *Stock) ApplyQuote(q ProviderQuote, now time.Time) {
	s.CurrentPrice = q.Price
	s.PreviousClose = q.PreviousClose
	s.Volume = q.Volume
	s.LastUpdated = now

	if q.PreviousClose.IsPositive() {
		s.PercentChange = q.Price.Sub(q.PreviousClose).
			DivRound(q.PreviousClose, 4).
			Mul(decimal.NewFromInt(100))
	} else {
		s.PercentChange = decimal.Zero
	}
}
