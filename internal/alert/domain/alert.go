// Package domain 价格预警的领域模型与仓储接口
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrAlertNotFound 预警不存在或不属于该用户
	ErrAlertNotFound = errors.New("alert not found")
	// ErrInvalidCondition 条件只能是 ABOVE 或 BELOW
	ErrInvalidCondition = errors.New("condition must be ABOVE or BELOW")
	// ErrInvalidTarget 目标价必须为正数
	ErrInvalidTarget = errors.New("target price must be positive")
)

// Condition 预警触发条件
type Condition string

const (
	// ConditionAbove 价格达到或超过目标价时触发
	ConditionAbove Condition = "ABOVE"
	// ConditionBelow 价格跌至或低于目标价时触发
	ConditionBelow Condition = "BELOW"
)

// Valid 校验条件合法性
func (c Condition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow
}

// PriceAlert 价格预警，单向闩锁：触发一次后不再触发，除非用户重建
type PriceAlert struct {
	gorm.Model
	UserID      uint64          `gorm:"column:user_id;index;not null" json:"user_id"`
	Symbol      string          `gorm:"column:symbol;type:varchar(16);index;not null" json:"symbol"`
	Condition   Condition       `gorm:"column:condition;type:varchar(8);not null" json:"condition"`
	TargetPrice decimal.Decimal `gorm:"column:target_price;type:decimal(20,4);not null" json:"target_price"`
	Triggered   bool            `gorm:"column:triggered;not null;default:false" json:"triggered"`
	TriggeredAt *time.Time      `gorm:"column:triggered_at" json:"triggered_at,omitempty"`
}

// TableName 指定表名
func (PriceAlert) TableName() string { return "price_alerts" }

// ShouldTrigger 判断当前价是否满足触发条件，已触发的预警不再触发
func (a *PriceAlert) ShouldTrigger(price decimal.Decimal) bool {
	if a.Triggered {
		return false
	}
	switch a.Condition {
	case ConditionAbove:
		return price.GreaterThanOrEqual(a.TargetPrice)
	case ConditionBelow:
		return price.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}

// MarkTriggered 标记为已触发
func (a *PriceAlert) MarkTriggered(now time.Time) {
	a.Triggered = true
	a.TriggeredAt = &now
}
