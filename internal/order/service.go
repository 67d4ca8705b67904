package order

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bluecart/commerce/internal/domain"
)

type Service struct {
	repo  Repo
	pub   Publisher
	clock Clock
	lg    zerolog.Logger
}

func New(repo Repo, pub Publisher, clock Clock, lg zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		pub:   pub,
		clock: clock,
		lg:    lg.With().Str("component", "order_service").Logger(),
	}
}

func (s *Service) GetByID(ctx context.Context, id, requesterID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID {
		return nil, domain.ErrNotFound("order not found")
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Order, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
