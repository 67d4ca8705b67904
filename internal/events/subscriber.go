package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bluecart/commerce/internal/platform/bus"
	"github.com/bluecart/commerce/internal/platform/metrics"
)

// HandlerFunc processes one decoded envelope. A returned error is logged and
// the message is dropped; it never reaches a caller and is never retried.
type HandlerFunc func(ctx context.Context, env *Envelope) error

// Subscriber listens on the channels it has handlers for and routes each
// decoded envelope to exactly one handler.
type Subscriber struct {
	bus      bus.Bus
	lg       zerolog.Logger
	handlers map[string]HandlerFunc
}

func NewSubscriber(b bus.Bus, lg zerolog.Logger) *Subscriber {
	return &Subscriber{
		bus:      b,
		lg:       lg.With().Str("component", "subscriber").Logger(),
		handlers: make(map[string]HandlerFunc),
	}
}

// On registers h for channel. Last registration wins; call before Start.
func (s *Subscriber) On(channel string, h HandlerFunc) {
	s.handlers[channel] = h
}

func (s *Subscriber) Start(ctx context.Context) error {
	channels := make([]string, 0, len(s.handlers))
	for ch := range s.handlers {
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil
	}
	return s.bus.Subscribe(ctx, channels, s.dispatch)
}

func (s *Subscriber) dispatch(ctx context.Context, m bus.Message) {
	env := Parse(m.Body)
	if env == nil {
		metrics.RecordEventDropped(m.Channel, "malformed")
		s.lg.Warn().Str("channel", m.Channel).Msg("malformed message; dropping")
		return
	}

	h, ok := s.handlers[m.Channel]
	if !ok {
		metrics.RecordEventDropped(m.Channel, "unknown_channel")
		s.lg.Warn().Str("channel", m.Channel).Msg("no handler for channel; dropping")
		return
	}

	start := time.Now()
	if err := h(ctx, env); err != nil {
		// Dispatch boundary: swallow. No retry, no dead-letter.
		metrics.RecordHandlerFailure(m.Channel)
		s.lg.Error().Err(err).
			Str("channel", m.Channel).
			Str("event_id", env.EventID).
			Str("correlation_id", env.Metadata.CorrelationID).
			Msg("handler failed; message dropped")
		return
	}

	metrics.RecordEventConsumed(m.Channel, time.Since(start))
	s.lg.Info().
		Str("channel", m.Channel).
		Str("event_id", env.EventID).
		Dur("took", time.Since(start)).
		Msg("event processed")
}
