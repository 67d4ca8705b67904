package payment

import (
	"context"
	"fmt"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/events"
)

// Refund is a compensating action invoked explicitly, never by the saga.
func (s *Service) Refund(ctx context.Context, paymentID string) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCompleted {
		return nil, domain.ErrValidation("only completed payments can be refunded")
	}

	updated, err := s.repo.UpdateStatus(ctx, paymentID, StatusRefunded, "", s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.pub.Publish(ctx, events.ChannelPaymentRefunded, events.PaymentRefunded{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
	}, events.Metadata{}); err != nil {
		return nil, fmt.Errorf("payment %s refunded but payment.refunded publish failed: %w", p.ID, err)
	}
	return updated, nil
}
