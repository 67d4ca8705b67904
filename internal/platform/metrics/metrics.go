package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_events_published_total",
			Help: "Total number of events published to the bus",
		},
		[]string{"event_type"},
	)

	eventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_events_consumed_total",
			Help: "Total number of events consumed from the bus",
		},
		[]string{"event_type"},
	)

	eventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_events_dropped_total",
			Help: "Total number of messages dropped (malformed, unknown channel, invalid payload)",
		},
		[]string{"event_type", "reason"},
	)

	handlerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_event_handler_failures_total",
			Help: "Total number of event handler errors (swallowed at the dispatch boundary)",
		},
		[]string{"event_type"},
	)

	handlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commerce_event_handler_duration_seconds",
			Help:    "Event handler processing duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"event_type"},
	)
)

func RecordEventPublished(eventType string) {
	eventsPublishedTotal.WithLabelValues(eventType).Inc()
}

func RecordEventConsumed(eventType string, took time.Duration) {
	eventsConsumedTotal.WithLabelValues(eventType).Inc()
	handlerDuration.WithLabelValues(eventType).Observe(took.Seconds())
}

func RecordEventDropped(eventType, reason string) {
	eventsDroppedTotal.WithLabelValues(eventType, reason).Inc()
}

func RecordHandlerFailure(eventType string) {
	handlerFailuresTotal.WithLabelValues(eventType).Inc()
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
