// Package bus defines the event-bus port shared by every participant service,
// plus the Redis pub/sub and RabbitMQ implementations. The contract is
// deliberately weak: at-most-once delivery per process, per-channel ordering
// only, no redelivery.
package bus

import "context"

type Message struct {
	Channel string
	Body    []byte
}

// Handler consumes one message. It must not block forever; there is no
// backpressure or cancellation control beyond ctx.
type Handler func(ctx context.Context, m Message)

type Bus interface {
	Publish(ctx context.Context, channel string, body []byte) error
	// Subscribe registers h for the given channels and returns once the
	// subscription is established; dispatch runs on a background goroutine
	// until ctx is cancelled or the bus is closed.
	Subscribe(ctx context.Context, channels []string, h Handler) error
	Close() error
}
