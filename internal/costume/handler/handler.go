package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"costumedesk/internal/costume/models"
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/platform/httputil"
	"costumedesk/pkg/requestcontext"
	"costumedesk/pkg/validation"
)

// Service defines the costume operations exposed over HTTP.
// Both methods fail with RecordNotFound for unknown ids and owner mismatches alike.
type Service interface {
	GetCostumeDetails(ctx context.Context, id, ownerFirstName, ownerLastName string) (*models.Record, error)
	RemoveCostume(ctx context.Context, id, ownerFirstName, ownerLastName string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/costumes/{id}/lookup", h.HandleLookup)
	r.Post("/costumes/{id}/remove", h.HandleRemove)
}

// HandleLookup discloses a costume to a caller who names its owner.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	costumeID, ok := h.costumeID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[OwnerClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.GetCostumeDetails(ctx, costumeID, req.OwnerFirstName, req.OwnerLastName)
	if err != nil {
		h.logFailure(ctx, "costume lookup failed", err, requestID, costumeID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCostumeResponse(rec))
}

// HandleRemove deletes a costume for a caller who names its owner.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	costumeID, ok := h.costumeID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[OwnerClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.RemoveCostume(ctx, costumeID, req.OwnerFirstName, req.OwnerLastName); err != nil {
		h.logFailure(ctx, "costume removal failed", err, requestID, costumeID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) costumeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	costumeID := chi.URLParam(r, "id")
	if costumeID == "" || len(costumeID) > validation.MaxCostumeIDLength {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid costume id"))
		return "", false
	}
	return costumeID, true
}

// Not-found is the expected outcome of a wrong claim and is only logged at info.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID, costumeID string) {
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		h.logger.InfoContext(ctx, msg, "error", err, "request_id", requestID, "costume_id", costumeID)
		return
	}
	h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID, "costume_id", costumeID)
}
