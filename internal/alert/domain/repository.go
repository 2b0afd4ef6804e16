package domain

import "context"

// AlertRepository 价格预警仓储接口
type AlertRepository interface {
	// Create 创建预警
	Create(ctx context.Context, alert *PriceAlert) error
	// Delete 删除属于该用户的预警，未找到返回 ErrAlertNotFound
	Delete(ctx context.Context, userID uint64, alertID uint) error
	// FindByUser 查询用户全部预警
	FindByUser(ctx context.Context, userID uint64) ([]*PriceAlert, error)
	// FindActive 查询全部未触发的预警
	FindActive(ctx context.Context) ([]*PriceAlert, error)
	// MarkTriggered 持久化触发状态，仅当数据库中仍未触发时生效，
	// 返回是否由本次调用完成触发
	MarkTriggered(ctx context.Context, alert *PriceAlert) (bool, error)
}
