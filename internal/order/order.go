// Package order owns the order state machine and its side of the
// order-fulfillment saga.
package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/bluecart/commerce/internal/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	// Reserved for fulfillment steps downstream of this saga.
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

type Item struct {
	ProductID string
	Quantity  int
	Price     float64
}

type Order struct {
	ID          string
	UserID      string
	TotalAmount float64
	Status      Status
	Items       []Item // immutable after creation

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOrder(userID string, items []Item, totalAmount float64, now time.Time) (*Order, error) {
	if userID == "" {
		return nil, domain.ErrValidation("user_id is required")
	}
	if len(items) == 0 {
		return nil, domain.ErrValidation("order must have at least one item")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.ErrValidation("item product_id is required")
		}
		if it.Quantity < 1 {
			return nil, domain.ErrValidation("item quantity must be >= 1")
		}
		if it.Price < 0 {
			return nil, domain.ErrValidation("item price must be >= 0")
		}
	}
	if totalAmount <= 0 {
		return nil, domain.ErrValidation("total_amount must be > 0")
	}

	t := now.UTC()
	return &Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		TotalAmount: totalAmount,
		Status:      StatusPending,
		Items:       items,
		CreatedAt:   t,
		UpdatedAt:   t,
	}, nil
}
