package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/events"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeRepo struct {
	mu      sync.Mutex
	byID    map[string]*Payment
	byOrder map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]*Payment), byOrder: make(map[string]string)}
}

func (r *fakeRepo) CreateIfAbsent(ctx context.Context, p *Payment) (*Payment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byOrder[p.OrderID]; ok {
		c := *r.byID[id]
		return &c, false, nil
	}
	c := *p
	r.byID[p.ID] = &c
	r.byOrder[p.OrderID] = p.ID
	out := *p
	return &out, true, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("payment not found")
	}
	c := *p
	return &c, nil
}

func (r *fakeRepo) ListByOrder(ctx context.Context, orderID string) ([]*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Payment
	if id, ok := r.byOrder[orderID]; ok {
		c := *r.byID[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, status Status, reason string, now time.Time) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("payment not found")
	}
	p.Status = status
	p.FailureReason = reason
	p.UpdatedAt = now.UTC()
	c := *p
	return &c, nil
}

type published struct {
	eventType string
	data      any
	meta      events.Metadata
}

type fakePub struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *fakePub) Publish(ctx context.Context, eventType string, data any, meta events.Metadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{eventType: eventType, data: data, meta: meta})
	return nil
}

func (p *fakePub) byType(eventType string) []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []published
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeSettler struct{ err error }

func (s *fakeSettler) Settle(ctx context.Context, p *Payment) error { return s.err }

func newTestService(t *testing.T, settler Settler) (*Service, *fakeRepo, *fakePub) {
	t.Helper()
	repo := newFakeRepo()
	pub := &fakePub{}
	if settler == nil {
		settler = &fakeSettler{}
	}
	svc := New(repo, pub, settler, fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}, zerolog.Nop())
	return svc, repo, pub
}

func orderCreatedEnv(t *testing.T, orderID string, amount float64) *events.Envelope {
	t.Helper()
	env, err := events.Build(events.ChannelOrderCreated, events.OrderCreated{
		OrderID:     orderID,
		UserID:      "u1",
		TotalAmount: amount,
		Items:       []events.OrderCreatedItem{{ProductID: "prod-1", Quantity: 1, Price: amount}},
	}, events.Metadata{CorrelationID: "corr-1"}, "order-service")
	require.NoError(t, err)
	return env
}

func TestHandleOrderCreated(t *testing.T) {
	t.Run("settles_and_publishes_completed", func(t *testing.T) {
		svc, repo, pub := newTestService(t, nil)

		env := orderCreatedEnv(t, "o1", 50)
		require.NoError(t, svc.HandleOrderCreated(context.Background(), env))

		payments, err := repo.ListByOrder(context.Background(), "o1")
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, StatusCompleted, payments[0].Status)

		assert.Len(t, pub.byType(events.ChannelPaymentInitiated), 1)
		completed := pub.byType(events.ChannelPaymentCompleted)
		require.Len(t, completed, 1)
		payload := completed[0].data.(events.PaymentCompleted)
		assert.Equal(t, "o1", payload.OrderID)
		assert.Equal(t, 50.0, payload.Amount)
		assert.Equal(t, "corr-1", completed[0].meta.CorrelationID)
		assert.Equal(t, env.EventID, completed[0].meta.CausationID)
		assert.Empty(t, pub.byType(events.ChannelPaymentFailed))
	})

	t.Run("settlement_failure_publishes_failed", func(t *testing.T) {
		svc, repo, pub := newTestService(t, &fakeSettler{err: errors.New("card declined")})

		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderCreatedEnv(t, "o1", 50)))

		payments, err := repo.ListByOrder(context.Background(), "o1")
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, StatusFailed, payments[0].Status)
		assert.Equal(t, "card declined", payments[0].FailureReason)

		failed := pub.byType(events.ChannelPaymentFailed)
		require.Len(t, failed, 1)
		assert.Equal(t, "card declined", failed[0].data.(events.PaymentFailed).Reason)
		assert.Empty(t, pub.byType(events.ChannelPaymentCompleted))
	})

	t.Run("duplicate_order_created_single_payment", func(t *testing.T) {
		svc, repo, pub := newTestService(t, nil)

		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderCreatedEnv(t, "o1", 50)))
		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderCreatedEnv(t, "o1", 50)))

		payments, err := repo.ListByOrder(context.Background(), "o1")
		require.NoError(t, err)
		assert.Len(t, payments, 1)
		// The duplicate settles nothing and publishes nothing.
		assert.Len(t, pub.byType(events.ChannelPaymentCompleted), 1)
		assert.Len(t, pub.byType(events.ChannelPaymentInitiated), 1)
	})

	t.Run("invalid_payload_dropped", func(t *testing.T) {
		svc, repo, pub := newTestService(t, nil)

		env, err := events.Build(events.ChannelOrderCreated, events.OrderCreated{UserID: "u1"},
			events.Metadata{}, "order-service")
		require.NoError(t, err)

		assert.NoError(t, svc.HandleOrderCreated(context.Background(), env))
		repo.mu.Lock()
		assert.Empty(t, repo.byID)
		repo.mu.Unlock()
		assert.Empty(t, pub.events)
	})

	t.Run("initiated_publish_failure_does_not_block_settlement", func(t *testing.T) {
		svc, repo, pub := newTestService(t, nil)
		pub.err = errors.New("bus down")

		// Settlement still runs; the terminal publish fails too and surfaces.
		err := svc.HandleOrderCreated(context.Background(), orderCreatedEnv(t, "o1", 50))
		assert.Error(t, err)

		payments, rerr := repo.ListByOrder(context.Background(), "o1")
		require.NoError(t, rerr)
		require.Len(t, payments, 1)
		assert.Equal(t, StatusCompleted, payments[0].Status)
	})
}

func TestRefund(t *testing.T) {
	t.Run("refunds_completed_payment", func(t *testing.T) {
		svc, _, pub := newTestService(t, nil)
		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderCreatedEnv(t, "o1", 50)))

		payments, err := svc.ListByOrder(context.Background(), "o1")
		require.NoError(t, err)
		require.Len(t, payments, 1)

		refunded, err := svc.Refund(context.Background(), payments[0].ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRefunded, refunded.Status)
		assert.Len(t, pub.byType(events.ChannelPaymentRefunded), 1)
	})

	t.Run("rejects_non_completed", func(t *testing.T) {
		svc, _, pub := newTestService(t, &fakeSettler{err: errors.New("card declined")})
		require.NoError(t, svc.HandleOrderCreated(context.Background(), orderCreatedEnv(t, "o1", 50)))

		payments, err := svc.ListByOrder(context.Background(), "o1")
		require.NoError(t, err)
		require.Len(t, payments, 1)

		_, err = svc.Refund(context.Background(), payments[0].ID)
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
		assert.Empty(t, pub.byType(events.ChannelPaymentRefunded))
	})

	t.Run("unknown_payment", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		_, err := svc.Refund(context.Background(), "missing")
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestStubSettler(t *testing.T) {
	s := NewStubSettler(zerolog.Nop())

	assert.NoError(t, s.Settle(context.Background(), NewPayment("o1", 10, "", time.Now())))
	assert.Error(t, s.Settle(context.Background(), NewPayment("o1", 0, "", time.Now())))
}
