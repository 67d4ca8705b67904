// Package payment owns the payment state machine: one payment per order,
// created in reaction to order.created and settled synchronously.
package payment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusInitiated  Status = "initiated"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInitiated, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

type Payment struct {
	ID             string
	OrderID        string // unique: at most one payment per order
	Amount         float64
	Status         Status
	IdempotencyKey string
	FailureReason  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPayment(orderID string, amount float64, idempotencyKey string, now time.Time) *Payment {
	t := now.UTC()
	return &Payment{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		Amount:         amount,
		Status:         StatusProcessing,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      t,
		UpdatedAt:      t,
	}
}
