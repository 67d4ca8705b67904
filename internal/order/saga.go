package order

import (
	"context"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/events"
)

// Saga handlers. Both are idempotent no-ops when the order is missing or has
// already left pending; the conditional status update in the repo serializes
// concurrent duplicates.

func (s *Service) HandlePaymentCompleted(ctx context.Context, env *events.Envelope) error {
	var p events.PaymentCompleted
	if err := env.Decode(&p); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("payment.completed: bad payload; dropping")
		return nil
	}
	if err := p.Validate(); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("payment.completed: invalid payload; dropping")
		return nil
	}

	o, err := s.repo.GetByID(ctx, p.OrderID)
	if err != nil {
		if domain.IsNotFound(err) {
			s.lg.Warn().Str("order_id", p.OrderID).Msg("order not found for payment.completed")
			return nil
		}
		return err
	}
	if o.Status != StatusPending {
		s.lg.Info().Str("order_id", o.ID).Str("status", string(o.Status)).Msg("order already processed")
		return nil
	}

	ok, err := s.repo.TransitionFromPending(ctx, o.ID, StatusConfirmed, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		s.lg.Info().Str("order_id", o.ID).Msg("order left pending concurrently; skipping confirm")
		return nil
	}

	items := make([]events.OrderConfirmedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.OrderConfirmedItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return s.pub.Publish(ctx, events.ChannelOrderConfirmed, events.OrderConfirmed{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Items:       items,
	}, env.CausedBy())
}

func (s *Service) HandlePaymentFailed(ctx context.Context, env *events.Envelope) error {
	var p events.PaymentFailed
	if err := env.Decode(&p); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("payment.failed: bad payload; dropping")
		return nil
	}
	if err := p.Validate(); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("payment.failed: invalid payload; dropping")
		return nil
	}

	o, err := s.repo.GetByID(ctx, p.OrderID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if o.Status != StatusPending {
		return nil
	}

	ok, err := s.repo.TransitionFromPending(ctx, o.ID, StatusCancelled, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return s.pub.Publish(ctx, events.ChannelOrderCancelled, events.OrderCancelled{
		OrderID: o.ID,
		UserID:  o.UserID,
	}, env.CausedBy())
}
