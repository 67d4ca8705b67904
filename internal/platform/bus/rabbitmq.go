package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	DefaultExchange = "commerce.events"

	// Wait window for Return / Confirm on publish.
	publishWait = 150 * time.Millisecond
)

// Rabbit maps bus channels onto a topic exchange: routing key = channel name,
// one durable queue per service bound to the channels it consumes. Consumption
// is auto-ack, which keeps the at-most-once contract of the Redis bus.
type Rabbit struct {
	url      string
	exchange string
	queue    string
	lg       zerolog.Logger

	mu sync.Mutex

	conn      *amqp.Connection
	chPublish *amqp.Channel
	chConsume *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewRabbit(url, exchange, queue string, lg zerolog.Logger) (*Rabbit, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	b := &Rabbit{
		url:      url,
		exchange: exchange,
		queue:    queue,
		lg:       lg.With().Str("component", "rabbit_bus").Logger(),
	}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Rabbit) connect() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	b.conn = conn
	b.chPublish = ch
	b.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	b.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))
	return nil
}

func (b *Rabbit) Publish(ctx context.Context, channel string, body []byte) error {
	if channel == "" {
		return errors.New("missing channel")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.chPublish == nil {
		return errors.New("publish channel not ready")
	}

	err := b.chPublish.PublishWithContext(
		ctx,
		b.exchange,
		channel,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now().UTC(),
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	select {
	case ret := <-b.returnCh:
		// No queue bound for this routing key. Fire-and-forget semantics say a
		// missing subscriber is not an error.
		b.lg.Debug().Str("routing_key", ret.RoutingKey).Msg("publish returned (no route)")
		return nil
	case conf := <-b.confirmCh:
		if !conf.Ack {
			return errors.New("publish nack")
		}
		return nil
	case <-time.After(publishWait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Rabbit) Subscribe(ctx context.Context, channels []string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return errors.New("not connected")
	}
	if b.queue == "" {
		return errors.New("missing queue name")
	}

	ch, err := b.conn.Channel()
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return err
	}
	for _, key := range channels {
		if err := ch.QueueBind(b.queue, key, b.exchange, false, nil); err != nil {
			_ = ch.Close()
			return err
		}
	}

	// autoAck: delivery counts as consumed the moment the broker hands it
	// over. A handler crash loses the message, matching the bus contract.
	deliveries, err := ch.Consume(b.queue, "", true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return err
	}
	b.chConsume = ch

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					b.lg.Warn().Msg("deliveries channel closed")
					return
				}
				h(ctx, Message{Channel: d.RoutingKey, Body: d.Body})
			}
		}
	}()

	b.lg.Info().Str("queue", b.queue).Strs("bind_keys", channels).Msg("subscribed")
	return nil
}

func (b *Rabbit) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.chConsume != nil {
		_ = b.chConsume.Close()
		b.chConsume = nil
	}
	if b.chPublish != nil {
		_ = b.chPublish.Close()
		b.chPublish = nil
	}
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
	return nil
}
