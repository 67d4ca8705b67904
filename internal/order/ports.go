package order

import (
	"context"
	"time"

	"github.com/bluecart/commerce/internal/events"
)

type Clock interface{ Now() time.Time }

type Repo interface {
	// Create persists the order and its items in one atomic unit.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Order, int, error)
	// TransitionFromPending moves the order to the given status only if it is
	// still pending, reporting whether a row changed. The conditional update
	// is what serializes concurrent duplicate deliveries.
	TransitionFromPending(ctx context.Context, id string, to Status, now time.Time) (bool, error)
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, data any, meta events.Metadata) error
}
