package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/payment"
)

type PaymentRepo struct {
	mu      sync.Mutex
	byID    map[string]*payment.Payment
	byOrder map[string]string // order id -> payment id
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{
		byID:    make(map[string]*payment.Payment),
		byOrder: make(map[string]string),
	}
}

func clonePayment(p *payment.Payment) *payment.Payment {
	c := *p
	return &c
}

func (r *PaymentRepo) CreateIfAbsent(ctx context.Context, p *payment.Payment) (*payment.Payment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byOrder[p.OrderID]; ok {
		return clonePayment(r.byID[id]), false, nil
	}
	r.byID[p.ID] = clonePayment(p)
	r.byOrder[p.OrderID] = p.ID
	return clonePayment(p), true, nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("payment not found")
	}
	return clonePayment(p), nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*payment.Payment
	if id, ok := r.byOrder[orderID]; ok {
		out = append(out, clonePayment(r.byID[id]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, id string, status payment.Status, reason string, now time.Time) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("payment not found")
	}
	p.Status = status
	p.FailureReason = reason
	p.UpdatedAt = now.UTC()
	return clonePayment(p), nil
}
