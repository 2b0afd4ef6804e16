package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/analyticalplatform/internal/notification/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/idgen"
)

type memoryNotificationRepo struct {
	saved   []*domain.Notification
	saveErr error
}

func (r *memoryNotificationRepo) Save(_ context.Context, n *domain.Notification) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *n
	r.saved = append(r.saved, &copied)
	return nil
}

func (r *memoryNotificationRepo) FindByUser(_ context.Context, userID uint64, limit int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range r.saved {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memoryNotificationRepo) MarkRead(_ context.Context, userID uint64, notificationID string) error {
	for _, n := range r.saved {
		if n.UserID == userID && n.NotificationID == notificationID {
			n.Read = true
			return nil
		}
	}
	return errors.New("not found")
}

type flakySender struct {
	sent    int
	sendErr error
}

func (s *flakySender) Send(_ context.Context, _ *domain.Notification) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent++
	return nil
}

func newNotificationService(t *testing.T, repo domain.NotificationRepository, sender domain.Sender) *NotificationService {
	t.Helper()
	gen, err := idgen.New(1)
	require.NoError(t, err)
	return NewNotificationService(repo, sender, gen)
}

func TestNotifyPersistsThenDelivers(t *testing.T) {
	repo := &memoryNotificationRepo{}
	sender := &flakySender{}
	svc := newNotificationService(t, repo, sender)

	svc.Notify(context.Background(), 1, domain.NotificationTypeTrade, "order filled", "BUY 10 AAPL")

	require.Len(t, repo.saved, 1)
	saved := repo.saved[0]
	assert.NotEmpty(t, saved.NotificationID)
	assert.Equal(t, domain.NotificationTypeTrade, saved.Type)
	assert.NotNil(t, saved.SentAt)
	assert.Equal(t, 1, sender.sent)
}

func TestNotifySwallowsDeliveryFailure(t *testing.T) {
	repo := &memoryNotificationRepo{}
	sender := &flakySender{sendErr: errors.New("broker unreachable")}
	svc := newNotificationService(t, repo, sender)

	// 投递失败不应 panic，也不应阻止落库
	svc.Notify(context.Background(), 1, domain.NotificationTypePriceAlert, "alert", "AAPL crossed 150")

	assert.Len(t, repo.saved, 1)
}

func TestNotifySwallowsPersistenceFailure(t *testing.T) {
	repo := &memoryNotificationRepo{saveErr: errors.New("db down")}
	sender := &flakySender{}
	svc := newNotificationService(t, repo, sender)

	svc.Notify(context.Background(), 1, domain.NotificationTypeWallet, "deposit", "credited 100")

	// 落库失败时也不投递
	assert.Equal(t, 0, sender.sent)
}

func TestHistoryAndMarkRead(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := newNotificationService(t, repo, &flakySender{})

	svc.Notify(context.Background(), 1, domain.NotificationTypeTrade, "a", "x")
	svc.Notify(context.Background(), 2, domain.NotificationTypeTrade, "b", "y")

	history, err := svc.History(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	err = svc.MarkRead(context.Background(), 1, history[0].NotificationID)
	require.NoError(t, err)
	assert.True(t, repo.saved[0].Read)
}
