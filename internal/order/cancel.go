package order

import (
	"context"
	"fmt"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/events"
)

// Cancel is the explicit compensating action for a pending order. Unlike the
// saga handlers it raises to its caller.
func (s *Service) Cancel(ctx context.Context, orderID, requesterID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID {
		return nil, domain.ErrValidation("not your order")
	}
	if o.Status != StatusPending {
		return nil, domain.ErrValidation("only pending orders can be cancelled")
	}

	now := s.clock.Now()
	ok, err := s.repo.TransitionFromPending(ctx, orderID, StatusCancelled, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a saga event.
		return nil, domain.ErrValidation("only pending orders can be cancelled")
	}
	o.Status = StatusCancelled
	o.UpdatedAt = now.UTC()

	if err := s.pub.Publish(ctx, events.ChannelOrderCancelled, events.OrderCancelled{
		OrderID: o.ID,
		UserID:  o.UserID,
	}, events.Metadata{}); err != nil {
		// State change is already committed; surface the gap to the caller.
		return nil, fmt.Errorf("order %s cancelled but order.cancelled publish failed: %w", o.ID, err)
	}
	return o, nil
}
