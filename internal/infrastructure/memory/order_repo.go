// Package memory holds mutex-guarded in-memory repos. They back dev mode
// (no DATABASE_URL) and the choreography tests, and honor the same atomicity
// contracts as the postgres repos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/order"
)

type OrderRepo struct {
	mu   sync.Mutex
	byID map[string]*order.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{byID: make(map[string]*order.Order)}
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.Item(nil), o.Items...)
	return &c
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("order not found")
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*order.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*order.Order
	for _, o := range r.byID {
		if o.UserID == userID {
			all = append(all, cloneOrder(o))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *OrderRepo) TransitionFromPending(ctx context.Context, id string, to order.Status, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = now.UTC()
	return true, nil
}
