package payment

import (
	"context"
	"time"

	"github.com/bluecart/commerce/internal/events"
)

type Clock interface{ Now() time.Time }

type Repo interface {
	// CreateIfAbsent inserts p unless a payment for its order already exists,
	// as one atomic check-then-insert. It returns the stored payment and
	// whether this call created it.
	CreateIfAbsent(ctx context.Context, p *Payment) (*Payment, bool, error)
	GetByID(ctx context.Context, id string) (*Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Payment, error)
	UpdateStatus(ctx context.Context, id string, status Status, reason string, now time.Time) (*Payment, error)
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, data any, meta events.Metadata) error
}

// Settler executes the external settlement side-effect.
type Settler interface {
	Settle(ctx context.Context, p *Payment) error
}
