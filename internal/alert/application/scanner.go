package application

import (
	"context"
	"time"

	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Scanner 定期扫描价格预警
type Scanner struct {
	service  *AlertService
	interval time.Duration
}

// NewScanner 创建扫描任务
func NewScanner(service *AlertService, interval time.Duration) *Scanner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scanner{
		service:  service,
		interval: interval,
	}
}

// Start 启动定时循环，ctx 取消后退出
func (s *Scanner) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info(ctx, "Price alert scanner started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.service.Scan(ctx)
		}
	}
}
