// Package httpapi assembles the public HTTP surface: candidate intake,
// compliance runs, job polling, health, and metrics.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	candidatehandler "vetgate/internal/candidate/handler"
	"vetgate/internal/platform/middleware"
	verificationhandler "vetgate/internal/verification/handler"
)

// Deps carries everything the router mounts. Health funcs are nil when the
// corresponding backend is not configured.
type Deps struct {
	Logger      *slog.Logger
	Candidates  *candidatehandler.Handler
	Compliance  *verificationhandler.Handler
	HealthFuncs map[string]func() error
}

// NewRouter wires middleware and all public endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", handleHealth(deps.HealthFuncs))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.Candidates.Register(r)
	deps.Compliance.Register(r)

	return r
}

func handleHealth(checks map[string]func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
