package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetgate/internal/candidate/models"
	"vetgate/internal/candidate/service"
	id "vetgate/pkg/domain"
	"vetgate/pkg/platform/httputil"
	"vetgate/pkg/requestcontext"
)

// Service defines the candidate operations the handler needs.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*models.Candidate, error)
	Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)
	List(ctx context.Context) ([]*models.Candidate, error)
}

// Handler wires candidate endpoints to the candidate service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a candidate handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts candidate endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/candidates", h.HandleCreate)
	r.Get("/candidates", h.HandleList)
	r.Get("/candidates/{candidateID}", h.HandleGet)
	r.Get("/candidates/{candidateID}/compliance", h.HandleGetCompliance)
}

// HandleCreate handles POST /candidates requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateCandidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	candidate, err := h.service.Create(ctx, req.Params())
	if err != nil {
		h.logger.ErrorContext(ctx, "candidate creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "candidate created",
		"request_id", requestID,
		"candidate_id", candidate.ID,
		"source_channel", candidate.SourceChannel,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromCandidate(candidate))
}

// HandleList handles GET /candidates requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCandidates(candidates))
}

// HandleGet handles GET /candidates/{candidateID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	candidate, ok := h.fetch(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCandidate(candidate))
}

// HandleGetCompliance handles GET /candidates/{candidateID}/compliance requests.
func (h *Handler) HandleGetCompliance(w http.ResponseWriter, r *http.Request) {
	candidate, ok := h.fetch(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate.Compliance)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*models.Candidate, bool) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	candidate, err := h.service.Get(r.Context(), candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return candidate, true
}
