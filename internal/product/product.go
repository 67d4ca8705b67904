// Package product owns the catalog and the inventory-reservation side of the
// order-fulfillment saga.
package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/bluecart/commerce/internal/domain"
)

type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       float64
	Inventory   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProduct(name, description, category string, price float64, inventory int, now time.Time) (*Product, error) {
	if name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if price < 0 {
		return nil, domain.ErrValidation("price must be >= 0")
	}
	if inventory < 0 {
		return nil, domain.ErrValidation("inventory must be >= 0")
	}

	t := now.UTC()
	return &Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		Inventory:   inventory,
		CreatedAt:   t,
		UpdatedAt:   t,
	}, nil
}
