// Package metrics exposes Prometheus counters for the account core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SweepDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_sweep_deleted_total",
			Help: "Records deleted by the retention sweeps",
		},
		[]string{"sweep"},
	)

	SweepErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_sweep_errors_total",
			Help: "Per-record failures during retention sweeps",
		},
		[]string{"sweep"},
	)

	EventsPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "user_events_published_total",
			Help: "User change notifications handed to the queue",
		},
	)

	EventPublishFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "user_event_publish_failures_total",
			Help: "User change notifications that could not be enqueued",
		},
	)
)
