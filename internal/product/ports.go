package product

import (
	"context"
	"errors"
	"time"

	"github.com/bluecart/commerce/internal/events"
)

// ErrAlreadyProcessed reports that the processed-order marker for this order
// already exists; the reservation must be skipped, not retried.
var ErrAlreadyProcessed = errors.New("order already processed")

type Clock interface{ Now() time.Time }

// Reservation is one line of an order.confirmed event.
type Reservation struct {
	ProductID string
	Quantity  int
}

// StockLevel reports a product's inventory around a committed decrement.
type StockLevel struct {
	ProductID string
	Before    int
	After     int
}

type Repo interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, category string, limit, offset int) ([]*Product, int, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	// OrderProcessed reports whether the marker for orderID exists.
	OrderProcessed(ctx context.Context, orderID string) (bool, error)
	// ReserveForOrder decrements stock for every reservation and inserts the
	// processed-order marker in one atomic unit: any missing product or
	// insufficient stock aborts the whole transaction with a validation
	// error, and a concurrent duplicate surfaces as ErrAlreadyProcessed.
	ReserveForOrder(ctx context.Context, orderID string, items []Reservation, now time.Time) ([]StockLevel, error)
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, data any, meta events.Metadata) error
}
