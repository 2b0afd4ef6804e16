package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/analyticalplatform/pkg/logger"
	"github.com/wyfcoding/analyticalplatform/pkg/ratelimit"
)

// RefreshJob 定期刷新优先标的的行情
// 每轮刷新是独立的工作单元；命中调用预算上限时提前结束本轮，
// 单个标的失败不影响其余标的
type RefreshJob struct {
	service  *StockService
	symbols  []string
	interval time.Duration
}

// NewRefreshJob 创建刷新任务
func NewRefreshJob(service *StockService, symbols []string, interval time.Duration) *RefreshJob {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &RefreshJob{
		service:  service,
		symbols:  symbols,
		interval: interval,
	}
}

// Start 启动定时循环，ctx 取消后退出
func (j *RefreshJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Info(ctx, "Priority stock refresh job started",
		"interval", j.interval,
		"symbols", j.symbols,
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *RefreshJob) run(ctx context.Context) {
	for _, symbol := range j.symbols {
		if _, err := j.service.RefreshStock(ctx, symbol); err != nil {
			var limitErr *ratelimit.LimitError
			if errors.As(err, &limitErr) {
				// 预算耗尽，本轮不再继续
				logger.Warn(ctx, "Refresh cycle stopped, call budget exhausted",
					"symbol", symbol,
					"scope", limitErr.Scope,
				)
				return
			}
			logger.Error(ctx, "Failed to refresh priority stock", "symbol", symbol, "error", err)
			continue
		}
	}

	logger.Info(ctx, "Priority stock refresh cycle completed", "symbols", len(j.symbols))
}
