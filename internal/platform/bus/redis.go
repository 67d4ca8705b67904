package bus

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is the primary bus: plain pub/sub channels, one channel per event
// type. Subscribers that are offline miss messages; that is the contract.
type Redis struct {
	rdb *redis.Client
	lg  zerolog.Logger

	mu   sync.Mutex
	subs []*redis.PubSub
}

func NewRedis(rdb *redis.Client, lg zerolog.Logger) *Redis {
	return &Redis{
		rdb: rdb,
		lg:  lg.With().Str("component", "redis_bus").Logger(),
	}
}

func (b *Redis) Publish(ctx context.Context, channel string, body []byte) error {
	return b.rdb.Publish(ctx, channel, body).Err()
}

func (b *Redis) Subscribe(ctx context.Context, channels []string, h Handler) error {
	ps := b.rdb.Subscribe(ctx, channels...)

	// Force the SUBSCRIBE round-trip so callers know the subscription is live
	// before they return.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return err
	}

	b.mu.Lock()
	b.subs = append(b.subs, ps)
	b.mu.Unlock()

	go func() {
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h(ctx, Message{Channel: msg.Channel, Body: []byte(msg.Payload)})
			}
		}
	}()

	b.lg.Info().Strs("channels", channels).Msg("subscribed")
	return nil
}

func (b *Redis) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ps := range b.subs {
		_ = ps.Close()
	}
	b.subs = nil
	return nil
}
