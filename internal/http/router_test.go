package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	candidatehandler "vetgate/internal/candidate/handler"
	candidateservice "vetgate/internal/candidate/service"
	candidatestore "vetgate/internal/candidate/store"
	verificationhandler "vetgate/internal/verification/handler"
	"vetgate/internal/verification/orchestrator"
	"vetgate/internal/verification/providers"
	checkregistry "vetgate/internal/verification/registry"
	verificationservice "vetgate/internal/verification/service"
	"vetgate/pkg/testutil"
)

func newTestRouter(t *testing.T, health map[string]func() error) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	static, err := checkregistry.Load()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	store := candidatestore.NewInMemoryStore()
	orch := orchestrator.New(static, providers.NewRegistry(static), orchestrator.WithLogger(logger))
	verifySvc := verificationservice.New(store, orch, static, verificationservice.WithLogger(logger))
	candidateSvc := candidateservice.New(store, verifySvc, candidateservice.WithLogger(logger))

	return NewRouter(Deps{
		Logger:      logger,
		Candidates:  candidatehandler.New(candidateSvc, logger),
		Compliance:  verificationhandler.New(verifySvc, logger),
		HealthFuncs: health,
	})
}

func TestRouter(t *testing.T) {
	testutil.Given(t, "the assembled router", func(t *testing.T) {
		router := newTestRouter(t, map[string]func() error{
			"postgres": func() error { return nil },
		})

		testutil.When(t, "probing /healthz", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "it reports ok", func(t *testing.T) {
				testutil.AssertStatusOK(t, rec)
				health := *testutil.UnmarshalResponse[map[string]string](t, rec)
				if health["status"] != "ok" {
					t.Fatalf("expected status ok, got %q", health["status"])
				}
				if health["postgres"] != "ok" {
					t.Fatalf("expected postgres ok, got %q", health["postgres"])
				}
			})
		})

		testutil.When(t, "scraping /metrics", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "the exposition endpoint responds", func(t *testing.T) {
				testutil.AssertStatusOK(t, rec)
			})
		})

		testutil.When(t, "requests pass through the middleware chain", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "a request id is echoed", func(t *testing.T) {
				testutil.AssertStatusOK(t, rec)
				if rec.Header().Get("X-Request-ID") == "" {
					t.Fatal("expected X-Request-ID response header")
				}
			})
		})

		testutil.When(t, "hitting an unknown route", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/nope", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "it responds 404", func(t *testing.T) {
				testutil.AssertStatus(t, rec, http.StatusNotFound)
			})
		})
	})

	testutil.Given(t, "a degraded backend", func(t *testing.T) {
		router := newTestRouter(t, map[string]func() error{
			"redis": func() error { return errors.New("connection refused") },
		})

		testutil.When(t, "probing /healthz", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			testutil.Then(t, "it reports degraded with 503", func(t *testing.T) {
				testutil.AssertStatus(t, rec, http.StatusServiceUnavailable)
				testutil.AssertJSONContains(t, rec, "status", "degraded")
			})
		})
	})
}
