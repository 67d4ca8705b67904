package payment

import (
	"context"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/rs/zerolog"
)

// StubSettler stands in for the external settlement call. It accepts any
// positive amount; a real gateway client would slot in behind the Settler
// port unchanged.
type StubSettler struct {
	lg zerolog.Logger
}

func NewStubSettler(lg zerolog.Logger) *StubSettler {
	return &StubSettler{lg: lg.With().Str("component", "settler_stub").Logger()}
}

func (s *StubSettler) Settle(ctx context.Context, p *Payment) error {
	if p.Amount <= 0 {
		return domain.ErrValidation("settlement amount must be > 0")
	}
	s.lg.Info().
		Str("payment_id", p.ID).
		Str("order_id", p.OrderID).
		Float64("amount", p.Amount).
		Msg("settlement recorded (stub)")
	return nil
}
