package payment

import (
	"context"

	"github.com/bluecart/commerce/internal/events"
)

// HandleOrderCreated reacts to order.created: it creates the payment row
// (idempotently, one per order) and settles it synchronously. Exactly one of
// payment.completed / payment.failed is published per payment attempt.
func (s *Service) HandleOrderCreated(ctx context.Context, env *events.Envelope) error {
	var oc events.OrderCreated
	if err := env.Decode(&oc); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("order.created: bad payload; dropping")
		return nil
	}
	if err := oc.Validate(); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("order.created: invalid payload; dropping")
		return nil
	}

	p, created, err := s.repo.CreateIfAbsent(ctx, NewPayment(oc.OrderID, oc.TotalAmount, "", s.clock.Now()))
	if err != nil {
		return err
	}
	if !created {
		// Duplicate delivery of order.created.
		s.lg.Info().Str("order_id", oc.OrderID).Str("payment_id", p.ID).Msg("payment already exists for order")
		return nil
	}

	meta := env.CausedBy()
	if err := s.pub.Publish(ctx, events.ChannelPaymentInitiated, events.PaymentInitiated{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
	}, meta); err != nil {
		s.lg.Error().Err(err).Str("payment_id", p.ID).Msg("payment.initiated publish failed")
	}

	return s.process(ctx, p, meta)
}

func (s *Service) process(ctx context.Context, p *Payment, meta events.Metadata) error {
	if err := s.settler.Settle(ctx, p); err != nil {
		s.lg.Error().Err(err).Str("order_id", p.OrderID).Msg("payment processing failed")
		if _, uerr := s.repo.UpdateStatus(ctx, p.ID, StatusFailed, err.Error(), s.clock.Now()); uerr != nil {
			return uerr
		}
		return s.pub.Publish(ctx, events.ChannelPaymentFailed, events.PaymentFailed{
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Reason:    err.Error(),
		}, meta)
	}

	if _, err := s.repo.UpdateStatus(ctx, p.ID, StatusCompleted, "", s.clock.Now()); err != nil {
		return err
	}
	return s.pub.Publish(ctx, events.ChannelPaymentCompleted, events.PaymentCompleted{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
	}, meta)
}
