package product

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bluecart/commerce/internal/events"
)

type Service struct {
	repo         Repo
	pub          Publisher
	clock        Clock
	lowThreshold int
	lg           zerolog.Logger
}

func New(repo Repo, pub Publisher, clock Clock, lowThreshold int, lg zerolog.Logger) *Service {
	if lowThreshold <= 0 {
		lowThreshold = 10
	}
	return &Service{
		repo:         repo,
		pub:          pub,
		clock:        clock,
		lowThreshold: lowThreshold,
		lg:           lg.With().Str("component", "product_service").Logger(),
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]*Product, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, category, limit, offset)
}

type CreateCmd struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Inventory   int
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*Product, error) {
	p, err := NewProduct(cmd.Name, cmd.Description, cmd.Category, cmd.Price, cmd.Inventory, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publishChanged(ctx, events.ChannelProductCreated, p)
	return p, nil
}

type UpdateCmd struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	Inventory   *int
}

func (s *Service) Update(ctx context.Context, id string, cmd UpdateCmd) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name != nil {
		p.Name = *cmd.Name
	}
	if cmd.Description != nil {
		p.Description = *cmd.Description
	}
	if cmd.Category != nil {
		p.Category = *cmd.Category
	}
	if cmd.Price != nil {
		p.Price = *cmd.Price
	}
	if cmd.Inventory != nil {
		p.Inventory = *cmd.Inventory
	}
	p.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publishChanged(ctx, events.ChannelProductUpdated, p)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishChanged(ctx, events.ChannelProductDeleted, p)
	return nil
}

// Catalog change events are informational; a publish failure does not undo
// the committed change.
func (s *Service) publishChanged(ctx context.Context, channel string, p *Product) {
	err := s.pub.Publish(ctx, channel, events.ProductChanged{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
	}, events.Metadata{})
	if err != nil {
		s.lg.Error().Err(err).Str("product_id", p.ID).Str("channel", channel).Msg("catalog event publish failed")
	}
}
