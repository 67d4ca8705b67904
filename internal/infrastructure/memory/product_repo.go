package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/product"
)

type ProductRepo struct {
	mu        sync.Mutex
	byID      map[string]*product.Product
	processed map[string]bool // processed-order markers
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		byID:      make(map[string]*product.Product),
		processed: make(map[string]bool),
	}
}

func cloneProduct(p *product.Product) *product.Product {
	c := *p
	return &c
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("product not found")
	}
	return cloneProduct(p), nil
}

func (r *ProductRepo) List(ctx context.Context, category string, limit, offset int) ([]*product.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*product.Product
	for _, p := range r.byID {
		if category == "" || p.Category == category {
			all = append(all, cloneProduct(p))
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

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrNotFound("product not found")
	}
	r.byID[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound("product not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *ProductRepo) OrderProcessed(ctx context.Context, orderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed[orderID], nil
}

// ReserveForOrder validates every line before mutating anything, so an
// insufficient-stock failure leaves all inventories untouched.
func (r *ProductRepo) ReserveForOrder(ctx context.Context, orderID string, items []product.Reservation, now time.Time) ([]product.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.processed[orderID] {
		return nil, product.ErrAlreadyProcessed
	}

	for _, it := range items {
		p, ok := r.byID[it.ProductID]
		if !ok {
			return nil, domain.ErrValidation(fmt.Sprintf("product %s not found", it.ProductID))
		}
		if p.Inventory < it.Quantity {
			return nil, domain.ErrValidation(fmt.Sprintf("insufficient inventory for %s", it.ProductID))
		}
	}

	ts := now.UTC()
	levels := make([]product.StockLevel, 0, len(items))
	for _, it := range items {
		p := r.byID[it.ProductID]
		before := p.Inventory
		p.Inventory -= it.Quantity
		p.UpdatedAt = ts
		levels = append(levels, product.StockLevel{ProductID: p.ID, Before: before, After: p.Inventory})
	}
	r.processed[orderID] = true
	return levels, nil
}
