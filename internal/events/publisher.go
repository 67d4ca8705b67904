package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bluecart/commerce/internal/platform/bus"
	"github.com/bluecart/commerce/internal/platform/metrics"
)

// Publisher builds envelopes and puts them on the bus. Publishing is
// fire-and-forget relative to whatever state change triggered it: the caller
// has already committed by the time Publish runs.
type Publisher struct {
	bus    bus.Bus
	source string
	lg     zerolog.Logger
}

func NewPublisher(b bus.Bus, source string, lg zerolog.Logger) *Publisher {
	return &Publisher{
		bus:    b,
		source: source,
		lg:     lg.With().Str("component", "publisher").Logger(),
	}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, data any, meta Metadata) error {
	env, err := Build(eventType, data, meta, p.source)
	if err != nil {
		return fmt.Errorf("build %s: %w", eventType, err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	if err := p.bus.Publish(ctx, eventType, body); err != nil {
		p.lg.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
		return err
	}

	metrics.RecordEventPublished(eventType)
	p.lg.Info().
		Str("event_type", eventType).
		Str("event_id", env.EventID).
		Str("correlation_id", env.Metadata.CorrelationID).
		Msg("event published")
	return nil
}
