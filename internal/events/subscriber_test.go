package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecart/commerce/internal/platform/bus"
)

// fakeBus delivers published messages synchronously to the registered handler.
type fakeBus struct {
	mu        sync.Mutex
	published []bus.Message
	handler   bus.Handler
	channels  map[string]bool
	failNext  bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{channels: make(map[string]bool)}
}

func (b *fakeBus) Publish(ctx context.Context, channel string, body []byte) error {
	b.mu.Lock()
	if b.failNext {
		b.failNext = false
		b.mu.Unlock()
		return errors.New("bus down")
	}
	b.published = append(b.published, bus.Message{Channel: channel, Body: body})
	h := b.handler
	deliver := b.channels[channel]
	b.mu.Unlock()

	if h != nil && deliver {
		h(ctx, bus.Message{Channel: channel, Body: body})
	}
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, channels []string, h bus.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
	for _, ch := range channels {
		b.channels[ch] = true
	}
	return nil
}

func (b *fakeBus) Close() error { return nil }

func (b *fakeBus) last(t *testing.T) bus.Message {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.published)
	return b.published[len(b.published)-1]
}

func TestPublisher(t *testing.T) {
	t.Run("wraps_payload_in_envelope", func(t *testing.T) {
		fb := newFakeBus()
		pub := NewPublisher(fb, "order-service", zerolog.Nop())

		err := pub.Publish(context.Background(), ChannelOrderCreated,
			OrderCreated{OrderID: "o1", TotalAmount: 20}, Metadata{CorrelationID: "corr-1"})
		require.NoError(t, err)

		msg := fb.last(t)
		assert.Equal(t, ChannelOrderCreated, msg.Channel)

		var env Envelope
		require.NoError(t, json.Unmarshal(msg.Body, &env))
		assert.Equal(t, ChannelOrderCreated, env.EventType)
		assert.Equal(t, "order-service", env.Source)
		assert.Equal(t, "corr-1", env.Metadata.CorrelationID)
	})

	t.Run("surfaces_bus_error", func(t *testing.T) {
		fb := newFakeBus()
		fb.failNext = true
		pub := NewPublisher(fb, "order-service", zerolog.Nop())

		err := pub.Publish(context.Background(), ChannelOrderCreated,
			OrderCreated{OrderID: "o1", TotalAmount: 20}, Metadata{})
		assert.Error(t, err)
	})
}

func TestSubscriberDispatch(t *testing.T) {
	t.Run("routes_to_handler", func(t *testing.T) {
		fb := newFakeBus()
		sub := NewSubscriber(fb, zerolog.Nop())

		var got *Envelope
		sub.On(ChannelOrderCreated, func(ctx context.Context, env *Envelope) error {
			got = env
			return nil
		})
		require.NoError(t, sub.Start(context.Background()))

		pub := NewPublisher(fb, "order-service", zerolog.Nop())
		require.NoError(t, pub.Publish(context.Background(), ChannelOrderCreated,
			OrderCreated{OrderID: "o1", TotalAmount: 5}, Metadata{}))

		require.NotNil(t, got)
		var payload OrderCreated
		require.NoError(t, got.Decode(&payload))
		assert.Equal(t, "o1", payload.OrderID)
	})

	t.Run("malformed_message_dropped", func(t *testing.T) {
		fb := newFakeBus()
		sub := NewSubscriber(fb, zerolog.Nop())

		called := false
		sub.On(ChannelOrderCreated, func(ctx context.Context, env *Envelope) error {
			called = true
			return nil
		})
		require.NoError(t, sub.Start(context.Background()))

		fb.handler(context.Background(), bus.Message{Channel: ChannelOrderCreated, Body: []byte("garbage")})
		assert.False(t, called)
	})

	t.Run("handler_error_swallowed", func(t *testing.T) {
		fb := newFakeBus()
		sub := NewSubscriber(fb, zerolog.Nop())

		sub.On(ChannelOrderCreated, func(ctx context.Context, env *Envelope) error {
			return errors.New("boom")
		})
		require.NoError(t, sub.Start(context.Background()))

		pub := NewPublisher(fb, "order-service", zerolog.Nop())
		// The publish must not observe the handler failure.
		assert.NoError(t, pub.Publish(context.Background(), ChannelOrderCreated,
			OrderCreated{OrderID: "o1", TotalAmount: 5}, Metadata{}))
	})

	t.Run("no_handlers_no_subscribe", func(t *testing.T) {
		fb := newFakeBus()
		sub := NewSubscriber(fb, zerolog.Nop())
		require.NoError(t, sub.Start(context.Background()))
		assert.Nil(t, fb.handler)
	})
}
