// Package handler exposes the operational HTTP surface: liveness,
// readiness and Prometheus metrics. The user-facing API belongs to the
// host application.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the primary store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Ops struct {
	health Pinger
}

func NewOps(health Pinger) *Ops {
	return &Ops{health: health}
}

// Router builds the ops router.
func (h *Ops) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Health is a liveness probe endpoint.
// Returns 200 OK if the server is running.
func (h *Ops) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Ready is a readiness probe endpoint.
// Returns 200 OK if the service can handle requests (DB is connected).
// Returns 503 Service Unavailable if dependencies are not ready.
func (h *Ops) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
