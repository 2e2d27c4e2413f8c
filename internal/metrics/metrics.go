// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dantour",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dantour",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dantour",
		Name:      "bookings_created_total",
		Help:      "Bookings committed.",
	})

	BookingTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dantour",
		Name:      "booking_transitions_total",
		Help:      "Booking status changes by target status.",
	}, []string{"status"})

	WebhookOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dantour",
		Name:      "webhook_outcomes_total",
		Help:      "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})

	UpstreamCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dantour",
		Name:      "upstream_calls_total",
		Help:      "Outbound collaborator calls by upstream and result.",
	}, []string{"upstream", "result"})

	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dantour",
		Name:      "events_published_total",
		Help:      "Booking events handed to the broker by type and result.",
	}, []string{"type", "result"})
)

// Collectors lists every collector of the package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequests, HTTPDuration, BookingsCreated, BookingTransitions,
		WebhookOutcomes, UpstreamCalls, EventsPublished,
	}
}

// Register adds the collectors to reg.  Already registered collectors are
// ignored so tests can call it more than once.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Result turns an error into the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
