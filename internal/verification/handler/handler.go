package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetgate/internal/audit"
	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/jobs"
	"vetgate/internal/platform/metrics"
	"vetgate/internal/verification/models"
	id "vetgate/pkg/domain"
	dErrors "vetgate/pkg/domain-errors"
	"vetgate/pkg/platform/httputil"
	"vetgate/pkg/platform/sentinel"
	"vetgate/pkg/requestcontext"
)

// Service defines the verification operations the handler needs.
type Service interface {
	Run(ctx context.Context, candidateID id.CandidateID) (*cmodels.Candidate, error)
	FullView(ctx context.Context, candidateID id.CandidateID) (models.FullComplianceView, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler wires compliance run and job endpoints. The queue is nil when no
// backend is configured; async enqueue then fails with a deployment error
// while the synchronous path keeps working.
type Handler struct {
	service        Service
	queue          jobs.Queue
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Handler)

func WithQueue(queue jobs.Queue) Option {
	return func(h *Handler) {
		h.queue = queue
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(h *Handler) {
		h.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// New constructs a verification handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/candidates/{candidateID}/compliance/full", h.HandleFullView)
	r.Post("/candidates/{candidateID}/compliance/run", h.HandleEnqueueRun)
	r.Post("/candidates/{candidateID}/compliance/run-sync", h.HandleRunSync)
	r.Get("/candidates/compliance-jobs/{jobID}", h.HandleGetJob)
}

// HandleFullView handles GET /candidates/{candidateID}/compliance/full.
func (h *Handler) HandleFullView(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := h.candidateID(w, r)
	if !ok {
		return
	}
	view, err := h.service.FullView(r.Context(), candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleEnqueueRun handles POST /candidates/{candidateID}/compliance/run.
func (h *Handler) HandleEnqueueRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	candidateID, ok := h.candidateID(w, r)
	if !ok {
		return
	}

	// Unknown candidates are rejected here; the job itself would only fail
	// later, invisibly to the caller.
	if _, err := h.service.FullView(ctx, candidateID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if h.queue == nil {
		h.logger.ErrorContext(ctx, "enqueue attempted with no job queue configured",
			"request_id", requestID,
			"candidate_id", candidateID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "job queue is not configured"))
		return
	}

	snapshot, err := h.queue.EnqueueTier1(ctx, candidateID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue verification job",
			"request_id", requestID,
			"candidate_id", candidateID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue verification job"))
		return
	}

	if h.metrics != nil {
		h.metrics.JobsEnqueued.Inc()
	}
	h.logAudit(ctx, audit.EventJobEnqueued, candidateID, map[string]string{
		"job_id": snapshot.ID.String(),
	})
	h.logger.InfoContext(ctx, "verification job enqueued",
		"request_id", requestID,
		"candidate_id", candidateID,
		"job_id", snapshot.ID,
	)
	httputil.WriteJSON(w, http.StatusAccepted, FromSnapshot(snapshot))
}

// HandleRunSync handles POST /candidates/{candidateID}/compliance/run-sync.
func (h *Handler) HandleRunSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	candidateID, ok := h.candidateID(w, r)
	if !ok {
		return
	}

	candidate, err := h.service.Run(ctx, candidateID)
	if err != nil {
		h.logger.ErrorContext(ctx, "synchronous verification run failed",
			"request_id", requestID,
			"candidate_id", candidateID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate.Compliance)
}

// HandleGetJob handles GET /candidates/compliance-jobs/{jobID}.
func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := id.ParseJobID(chi.URLParam(r, "jobID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.queue == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "job not found"))
		return
	}
	snapshot, err := h.queue.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "job not found"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load job"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSnapshot(snapshot))
}

func (h *Handler) candidateID(w http.ResponseWriter, r *http.Request) (id.CandidateID, bool) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CandidateID{}, false
	}
	return candidateID, true
}

func (h *Handler) logAudit(ctx context.Context, eventType audit.EventType, candidateID id.CandidateID, payload map[string]string) {
	if h.auditPublisher == nil {
		return
	}
	if err := h.auditPublisher.Emit(ctx, audit.Event{
		Type:        eventType,
		CandidateID: candidateID,
		Payload:     payload,
	}); err != nil {
		h.logger.Warn("failed to emit audit event", "event_type", eventType, "error", err)
	}
}
