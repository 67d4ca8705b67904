package payment

import (
	"context"

	"github.com/rs/zerolog"
)

type Service struct {
	repo    Repo
	pub     Publisher
	settler Settler
	clock   Clock
	lg      zerolog.Logger
}

func New(repo Repo, pub Publisher, settler Settler, clock Clock, lg zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		pub:     pub,
		settler: settler,
		clock:   clock,
		lg:      lg.With().Str("component", "payment_service").Logger(),
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*Payment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]*Payment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}
