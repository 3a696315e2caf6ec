// Package httptransport wires the public API surface: the income endpoints,
// liveness probes and the metrics endpoint.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inntektlager/internal/income/models"
	"inntektlager/internal/income/usage"
	"inntektlager/internal/platform/middleware"
	"inntektlager/pkg/domain"
)

// IncomeService is the fetch-or-cache engine as seen from the transport.
type IncomeService interface {
	Resolve(ctx context.Context, key models.LookupKey) (models.ClassifiedResult, error)
	ResolveManual(ctx context.Context, key models.LookupKey, payload models.Payload, edit models.ManualEdit) (models.ClassifiedResult, error)
	GetByID(ctx context.Context, id domain.RecordID, calculationDate time.Time) (models.ClassifiedResult, error)
}

// NewRouter wires all endpoints. The /v1 routes require a bearer token; the
// internal probes and metrics do not.
func NewRouter(h *Handler, health *usage.Health, validator middleware.JWTValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Post("/inntekt", h.handleResolve)
		r.Post("/inntekt/manuelt", h.handleManualEdit)
		r.Get("/inntekt/{id}", h.handleGetByID)
	})

	r.Get("/internal/isAlive", func(w http.ResponseWriter, r *http.Request) {
		if health != nil && !health.IsAlive(time.Now()) {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/internal/isReady", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
