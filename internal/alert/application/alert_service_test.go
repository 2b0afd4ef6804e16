package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/analyticalplatform/internal/alert/domain"
	notifdomain "github.com/wyfcoding/analyticalplatform/internal/notification/domain"
)

type memoryAlertRepo struct {
	alerts map[uint]*domain.PriceAlert
	nextID uint
}

func newMemoryAlertRepo() *memoryAlertRepo {
	return &memoryAlertRepo{alerts: make(map[uint]*domain.PriceAlert)}
}

func (r *memoryAlertRepo) Create(_ context.Context, alert *domain.PriceAlert) error {
	r.nextID++
	alert.ID = r.nextID
	copied := *alert
	r.alerts[alert.ID] = &copied
	return nil
}

func (r *memoryAlertRepo) Delete(_ context.Context, userID uint64, alertID uint) error {
	alert, ok := r.alerts[alertID]
	if !ok || alert.UserID != userID {
		return domain.ErrAlertNotFound
	}
	delete(r.alerts, alertID)
	return nil
}

func (r *memoryAlertRepo) FindByUser(_ context.Context, userID uint64) ([]*domain.PriceAlert, error) {
	var out []*domain.PriceAlert
	for _, a := range r.alerts {
		if a.UserID == userID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryAlertRepo) FindActive(_ context.Context) ([]*domain.PriceAlert, error) {
	var out []*domain.PriceAlert
	for _, a := range r.alerts {
		if !a.Triggered {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryAlertRepo) MarkTriggered(_ context.Context, alert *domain.PriceAlert) (bool, error) {
	stored, ok := r.alerts[alert.ID]
	if !ok || stored.Triggered {
		return false, nil
	}
	stored.Triggered = true
	stored.TriggeredAt = alert.TriggeredAt
	return true, nil
}

type countingPrices struct {
	prices map[string]decimal.Decimal
	calls  map[string]int
	fail   map[string]bool
}

func newCountingPrices() *countingPrices {
	return &countingPrices{
		prices: make(map[string]decimal.Decimal),
		calls:  make(map[string]int),
		fail:   make(map[string]bool),
	}
}

func (p *countingPrices) GetPrice(_ context.Context, symbol string) (decimal.Decimal, bool, error) {
	p.calls[symbol]++
	if p.fail[symbol] {
		return decimal.Zero, false, errors.New("price unavailable")
	}
	return p.prices[symbol], true, nil
}

type capturedNotification struct {
	userID  uint64
	typ     notifdomain.NotificationType
	subject string
}

type captureNotifier struct {
	sent []capturedNotification
}

func (n *captureNotifier) Notify(_ context.Context, userID uint64, typ notifdomain.NotificationType, subject, _ string) {
	n.sent = append(n.sent, capturedNotification{userID: userID, typ: typ, subject: subject})
}

func seedAlert(t *testing.T, svc *AlertService, userID uint64, symbol string, cond domain.Condition, target int64) *domain.PriceAlert {
	t.Helper()
	alert, err := svc.Create(context.Background(), userID, symbol, cond, decimal.NewFromInt(target))
	require.NoError(t, err)
	return alert
}

func TestCreateAlertValidation(t *testing.T) {
	svc := NewAlertService(newMemoryAlertRepo(), newCountingPrices(), nil, nil, nil)

	_, err := svc.Create(context.Background(), 1, "AAPL", "BETWEEN", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)

	_, err = svc.Create(context.Background(), 1, "AAPL", domain.ConditionAbove, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	alert, err := svc.Create(context.Background(), 1, " aapl ", domain.ConditionAbove, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", alert.Symbol)
}

func TestScanTriggersAboveAndBelow(t *testing.T) {
	repo := newMemoryAlertRepo()
	prices := newCountingPrices()
	prices.prices["AAPL"] = decimal.NewFromInt(150)
	notifier := &captureNotifier{}
	svc := NewAlertService(repo, prices, notifier, nil, nil)

	above := seedAlert(t, svc, 1, "AAPL", domain.ConditionAbove, 150) // 等于目标价也触发
	below := seedAlert(t, svc, 2, "AAPL", domain.ConditionBelow, 160)
	dormant := seedAlert(t, svc, 3, "AAPL", domain.ConditionAbove, 200)

	svc.Scan(context.Background())

	assert.True(t, repo.alerts[above.ID].Triggered)
	assert.True(t, repo.alerts[below.ID].Triggered)
	assert.False(t, repo.alerts[dormant.ID].Triggered)
	assert.Len(t, notifier.sent, 2)
	assert.Equal(t, notifdomain.NotificationTypePriceAlert, notifier.sent[0].typ)
}

func TestScanResolvesPriceOncePerSymbol(t *testing.T) {
	repo := newMemoryAlertRepo()
	prices := newCountingPrices()
	prices.prices["AAPL"] = decimal.NewFromInt(100)
	prices.prices["MSFT"] = decimal.NewFromInt(300)
	svc := NewAlertService(repo, prices, nil, nil, nil)

	for i := 0; i < 5; i++ {
		seedAlert(t, svc, uint64(i+1), "AAPL", domain.ConditionAbove, 500)
	}
	seedAlert(t, svc, 9, "MSFT", domain.ConditionAbove, 500)

	svc.Scan(context.Background())

	assert.Equal(t, 1, prices.calls["AAPL"])
	assert.Equal(t, 1, prices.calls["MSFT"])
}

func TestScanIsolatesSymbolFailures(t *testing.T) {
	repo := newMemoryAlertRepo()
	prices := newCountingPrices()
	prices.fail["AAPL"] = true
	prices.prices["MSFT"] = decimal.NewFromInt(400)
	notifier := &captureNotifier{}
	svc := NewAlertService(repo, prices, notifier, nil, nil)

	broken := seedAlert(t, svc, 1, "AAPL", domain.ConditionAbove, 100)
	fires := seedAlert(t, svc, 2, "MSFT", domain.ConditionAbove, 350)

	svc.Scan(context.Background())

	assert.False(t, repo.alerts[broken.ID].Triggered)
	assert.True(t, repo.alerts[fires.ID].Triggered)
	assert.Len(t, notifier.sent, 1)
}

func TestTriggeredAlertDoesNotFireAgain(t *testing.T) {
	repo := newMemoryAlertRepo()
	prices := newCountingPrices()
	prices.prices["AAPL"] = decimal.NewFromInt(200)
	notifier := &captureNotifier{}
	svc := NewAlertService(repo, prices, notifier, nil, nil)

	seedAlert(t, svc, 1, "AAPL", domain.ConditionAbove, 150)

	svc.Scan(context.Background())
	svc.Scan(context.Background())

	assert.Len(t, notifier.sent, 1)
}

func TestShouldTriggerLatch(t *testing.T) {
	alert := &domain.PriceAlert{
		Condition:   domain.ConditionAbove,
		TargetPrice: decimal.NewFromInt(100),
	}

	assert.False(t, alert.ShouldTrigger(decimal.NewFromInt(99)))
	assert.True(t, alert.ShouldTrigger(decimal.NewFromInt(100)))

	alert.MarkTriggered(time.Now())
	assert.False(t, alert.ShouldTrigger(decimal.NewFromInt(500)))
}

func TestDeleteAlertScopedToOwner(t *testing.T) {
	repo := newMemoryAlertRepo()
	svc := NewAlertService(repo, newCountingPrices(), nil, nil, nil)

	alert := seedAlert(t, svc, 1, "AAPL", domain.ConditionAbove, 100)

	err := svc.Delete(context.Background(), 2, alert.ID)
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)

	err = svc.Delete(context.Background(), 1, alert.ID)
	assert.NoError(t, err)
}
