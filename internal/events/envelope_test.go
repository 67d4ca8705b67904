package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("fills_defaults", func(t *testing.T) {
		env, err := Build(ChannelOrderCreated, OrderCreated{OrderID: "o1", TotalAmount: 10}, Metadata{}, "order-service")
		require.NoError(t, err)

		assert.NotEmpty(t, env.EventID)
		assert.Equal(t, ChannelOrderCreated, env.EventType)
		assert.Equal(t, EnvelopeVersion, env.Version)
		assert.Equal(t, "order-service", env.Source)
		assert.NotEmpty(t, env.Metadata.CorrelationID)
		assert.Empty(t, env.Metadata.CausationID)
		assert.WithinDuration(t, time.Now().UTC(), env.Timestamp, time.Second)
	})

	t.Run("keeps_supplied_correlation_id", func(t *testing.T) {
		env, err := Build(ChannelPaymentCompleted, PaymentCompleted{PaymentID: "p1", OrderID: "o1"},
			Metadata{CorrelationID: "corr-1", CausationID: "cause-1"}, "payment-service")
		require.NoError(t, err)

		assert.Equal(t, "corr-1", env.Metadata.CorrelationID)
		assert.Equal(t, "cause-1", env.Metadata.CausationID)
	})

	t.Run("event_id_unique_per_call", func(t *testing.T) {
		a, err := Build(ChannelOrderCreated, OrderCreated{OrderID: "o1", TotalAmount: 1}, Metadata{}, "s")
		require.NoError(t, err)
		b, err := Build(ChannelOrderCreated, OrderCreated{OrderID: "o1", TotalAmount: 1}, Metadata{}, "s")
		require.NoError(t, err)

		assert.NotEqual(t, a.EventID, b.EventID)
	})

	t.Run("unmarshalable_data", func(t *testing.T) {
		_, err := Build(ChannelOrderCreated, make(chan int), Metadata{}, "s")
		assert.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		env, err := Build(ChannelOrderConfirmed, OrderConfirmed{
			OrderID: "o1",
			Items:   []OrderConfirmedItem{{ProductID: "prod-1", Quantity: 2}},
		}, Metadata{CorrelationID: "corr-9"}, "order-service")
		require.NoError(t, err)

		raw, err := json.Marshal(env)
		require.NoError(t, err)

		got := Parse(raw)
		require.NotNil(t, got)
		assert.Equal(t, env.EventID, got.EventID)
		assert.Equal(t, "corr-9", got.Metadata.CorrelationID)

		var payload OrderConfirmed
		require.NoError(t, got.Decode(&payload))
		assert.Equal(t, "o1", payload.OrderID)
		assert.Equal(t, "prod-1", payload.Items[0].ProductID)
	})

	t.Run("malformed_returns_nil", func(t *testing.T) {
		assert.Nil(t, Parse([]byte("not json")))
		assert.Nil(t, Parse([]byte(`{"eventId": 42}`)))
	})
}

func TestCausedBy(t *testing.T) {
	env, err := Build(ChannelPaymentCompleted, PaymentCompleted{PaymentID: "p1", OrderID: "o1"},
		Metadata{CorrelationID: "corr-1"}, "payment-service")
	require.NoError(t, err)

	meta := env.CausedBy()
	assert.Equal(t, "corr-1", meta.CorrelationID)
	assert.Equal(t, env.EventID, meta.CausationID)
}
