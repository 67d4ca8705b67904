package order

import (
	"context"
	"fmt"

	"github.com/bluecart/commerce/internal/events"
)

type CreateCmd struct {
	UserID      string
	Items       []Item
	TotalAmount float64
}

// Create persists the order as pending and then publishes order.created.
// The publish runs after commit and is best-effort: if it fails, the order
// already exists and no payment will ever be triggered for it. That gap is
// surfaced to the caller instead of being hidden.
func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*Order, error) {
	o, err := NewOrder(cmd.UserID, cmd.Items, cmd.TotalAmount, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	items := make([]events.OrderCreatedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.OrderCreatedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	payload := events.OrderCreated{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Items:       items,
	}
	if err := s.pub.Publish(ctx, events.ChannelOrderCreated, payload, events.Metadata{}); err != nil {
		return nil, fmt.Errorf("order %s committed but order.created publish failed: %w", o.ID, err)
	}
	return o, nil
}
