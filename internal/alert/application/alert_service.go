// Package application 价格预警的用例层
package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/analyticalplatform/internal/alert/domain"
	auditapp "github.com/wyfcoding/analyticalplatform/internal/audit/application"
	notifapp "github.com/wyfcoding/analyticalplatform/internal/notification/application"
	notifdomain "github.com/wyfcoding/analyticalplatform/internal/notification/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
	"github.com/wyfcoding/analyticalplatform/pkg/metrics"
)

// PriceSource 价格来源接口
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error)
}

// AlertService 价格预警应用服务
type AlertService struct {
	repo     domain.AlertRepository
	prices   PriceSource
	notifier notifapp.Notifier
	audit    auditapp.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewAlertService 创建预警应用服务
func NewAlertService(
	repo domain.AlertRepository,
	prices PriceSource,
	notifier notifapp.Notifier,
	audit auditapp.Recorder,
	m *metrics.Metrics,
) *AlertService {
	return &AlertService{
		repo:     repo,
		prices:   prices,
		notifier: notifier,
		audit:    audit,
		metrics:  m,
		now:      time.Now,
	}
}

// Create 创建预警
func (s *AlertService) Create(ctx context.Context, userID uint64, symbol string, condition domain.Condition, target decimal.Decimal) (*domain.PriceAlert, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if !condition.Valid() {
		return nil, domain.ErrInvalidCondition
	}
	if !target.IsPositive() {
		return nil, domain.ErrInvalidTarget
	}

	alert := &domain.PriceAlert{
		UserID:      userID,
		Symbol:      symbol,
		Condition:   condition,
		TargetPrice: target,
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx,
			strconv.FormatUint(userID, 10),
			"CREATE_ALERT",
			"PriceAlert",
			strconv.FormatUint(uint64(alert.ID), 10),
			fmt.Sprintf("%s %s %s", symbol, condition, target.String()),
		)
	}
	return alert, nil
}

// Delete 删除预警
func (s *AlertService) Delete(ctx context.Context, userID uint64, alertID uint) error {
	return s.repo.Delete(ctx, userID, alertID)
}

// List 查询用户全部预警
func (s *AlertService) List(ctx context.Context, userID uint64) ([]*domain.PriceAlert, error) {
	return s.repo.FindByUser(ctx, userID)
}

// Scan 执行一轮预警扫描
// 按标的分组，每个标的只解析一次价格；单个标的失败不影响其余标的
func (s *AlertService) Scan(ctx context.Context) {
	alerts, err := s.repo.FindActive(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to load active alerts", "error", err)
		return
	}
	if len(alerts) == 0 {
		s.countScan()
		return
	}

	bySymbol := make(map[string][]*domain.PriceAlert)
	for _, a := range alerts {
		bySymbol[a.Symbol] = append(bySymbol[a.Symbol], a)
	}
	logger.Info(ctx, "Scanning price alerts", "alerts", len(alerts), "symbols", len(bySymbol))

	for symbol, group := range bySymbol {
		price, _, err := s.prices.GetPrice(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Skipping alert group, price unavailable", "symbol", symbol, "error", err)
			continue
		}
		for _, alert := range group {
			s.evaluate(ctx, alert, price)
		}
	}
	s.countScan()
}

func (s *AlertService) evaluate(ctx context.Context, alert *domain.PriceAlert, price decimal.Decimal) {
	if !alert.ShouldTrigger(price) {
		return
	}
	alert.MarkTriggered(s.now())

	fired, err := s.repo.MarkTriggered(ctx, alert)
	if err != nil {
		logger.Error(ctx, "Failed to persist triggered alert", "alert_id", alert.ID, "error", err)
		return
	}
	if !fired {
		// 另一轮扫描已先行触发
		return
	}

	s.countTriggered()
	logger.Info(ctx, "Price alert triggered",
		"alert_id", alert.ID, "user_id", alert.UserID,
		"symbol", alert.Symbol, "price", price.String(), "target", alert.TargetPrice.String())

	if s.notifier != nil {
		subject := fmt.Sprintf("Price alert: %s %s %s", alert.Symbol, alert.Condition, alert.TargetPrice.String())
		content := fmt.Sprintf("%s is now %s, target %s %s",
			alert.Symbol, price.String(), alert.Condition, alert.TargetPrice.String())
		s.notifier.Notify(ctx, alert.UserID, notifdomain.NotificationTypePriceAlert, subject, content)
	}
	if s.audit != nil {
		s.audit.Record(ctx,
			"system",
			"TRIGGER_ALERT",
			"PriceAlert",
			strconv.FormatUint(uint64(alert.ID), 10),
			fmt.Sprintf("%s at %s crossed %s %s", alert.Symbol, price.String(), alert.Condition, alert.TargetPrice.String()),
		)
	}
}

func (s *AlertService) countScan() {
	if s.metrics != nil {
		s.metrics.AlertScansTotal.Inc()
	}
}

func (s *AlertService) countTriggered() {
	if s.metrics != nil {
		s.metrics.AlertsTriggeredTotal.Inc()
	}
}
