package product

import (
	"context"
	"errors"

	"github.com/bluecart/commerce/internal/events"
)

// HandleOrderConfirmed reacts to order.confirmed: decrement stock for every
// item and write the processed-order marker, all-or-nothing. Duplicate
// deliveries are no-ops thanks to the marker. If the reservation aborts the
// error is surfaced to the dispatcher, which logs and drops the event; the
// order stays unconfirmed at the inventory layer until reprocessed
// externally.
func (s *Service) HandleOrderConfirmed(ctx context.Context, env *events.Envelope) error {
	var oc events.OrderConfirmed
	if err := env.Decode(&oc); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("order.confirmed: bad payload; dropping")
		return nil
	}
	if err := oc.Validate(); err != nil {
		s.lg.Warn().Err(err).Str("event_id", env.EventID).Msg("order.confirmed: invalid payload; dropping")
		return nil
	}

	items := make([]Reservation, 0, len(oc.Items))
	for _, it := range oc.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		items = append(items, Reservation{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return s.ReserveForOrder(ctx, oc.OrderID, items, env.CausedBy())
}

func (s *Service) ReserveForOrder(ctx context.Context, orderID string, items []Reservation, meta events.Metadata) error {
	done, err := s.repo.OrderProcessed(ctx, orderID)
	if err != nil {
		return err
	}
	if done {
		s.lg.Info().Str("order_id", orderID).Msg("order already processed")
		return nil
	}

	levels, err := s.repo.ReserveForOrder(ctx, orderID, items, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			// Concurrent duplicate delivery lost the marker-insert race.
			s.lg.Info().Str("order_id", orderID).Msg("order processed concurrently")
			return nil
		}
		return err
	}

	// Low-stock signals go out after commit, once per threshold crossing.
	// Best-effort: the decrement is already durable.
	for _, lv := range levels {
		if lv.Before >= s.lowThreshold && lv.After < s.lowThreshold {
			err := s.pub.Publish(ctx, events.ChannelInventoryLow, events.InventoryLow{
				ProductID:          lv.ProductID,
				RemainingInventory: lv.After,
			}, meta)
			if err != nil {
				s.lg.Error().Err(err).Str("product_id", lv.ProductID).Msg("product.inventory.low publish failed")
			}
		}
	}
	return nil
}
