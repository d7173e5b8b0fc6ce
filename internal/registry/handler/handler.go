package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/platform/middleware"
	"soulbound/internal/registry/models"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/httputil"
	authmw "soulbound/pkg/platform/middleware/auth"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	Authorize(ctx context.Context, caller, institution domain.Identity) (*models.Institution, error)
	Revoke(ctx context.Context, caller, institution domain.Identity) (*models.Institution, error)
	Get(ctx context.Context, institution domain.Identity) (*models.Institution, error)
	List(ctx context.Context) ([]*models.Institution, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterOwner mounts the owner-only mutation routes. The surrounding
// router wraps these with the owner-token middleware.
func (h *Handler) RegisterOwner(r chi.Router) {
	r.Post("/registry/{institution}/authorize", h.HandleAuthorize)
	r.Post("/registry/{institution}/revoke", h.HandleRevoke)
}

// RegisterPublic mounts the read-only lookup routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/registry", h.HandleList)
	r.Get("/registry/{institution}", h.HandleGet)
}

// HandleAuthorize adds an institution to the allowlist.
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	institution, err := domain.ParseIdentity(chi.URLParam(r, "institution"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Authorize(ctx, authmw.GetCaller(ctx), institution)
	if err != nil {
		h.logger.ErrorContext(ctx, "authorize institution failed", "error", err, "request_id", requestID, "institution", institution)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toInstitutionResponse(record))
}

// HandleRevoke clears an institution's authorization.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	institution, err := domain.ParseIdentity(chi.URLParam(r, "institution"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Revoke(ctx, authmw.GetCaller(ctx), institution)
	if err != nil {
		h.logger.ErrorContext(ctx, "revoke institution failed", "error", err, "request_id", requestID, "institution", institution)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toInstitutionResponse(record))
}

// HandleGet returns a single allowlist entry.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	institution, err := domain.ParseIdentity(chi.URLParam(r, "institution"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Get(ctx, institution)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "get institution failed", "error", err, "institution", institution)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toInstitutionResponse(record))
}

// HandleList returns the full allowlist for dashboards.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list institutions failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]*InstitutionResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toInstitutionResponse(record))
	}
	httputil.WriteJSON(w, http.StatusOK, InstitutionListResponse{Institutions: out})
}
