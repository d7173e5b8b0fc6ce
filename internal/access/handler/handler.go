package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/access/models"
	"soulbound/internal/access/service"
	"soulbound/internal/platform/middleware"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/httputil"
	authmw "soulbound/pkg/platform/middleware/auth"
)

// Service defines the access-control operations exposed over HTTP.
type Service interface {
	GrantAccess(ctx context.Context, caller domain.Identity, id domain.CredentialID, viewer domain.Identity, duration time.Duration) (*models.Grant, error)
	RevokeAccess(ctx context.Context, caller domain.Identity, id domain.CredentialID, viewer domain.Identity) error
	HasValidAccess(ctx context.Context, id domain.CredentialID, viewer domain.Identity) (bool, error)
	GetPrivateData(ctx context.Context, caller domain.Identity, id domain.CredentialID) (*service.PrivateHandles, error)
	GetAccessList(ctx context.Context, caller domain.Identity, id domain.CredentialID) ([]domain.Identity, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCaller mounts the routes that need an authenticated caller: grant
// and revoke for the holder, the access list for holder or owner, and the
// gated private-data read.
func (h *Handler) RegisterCaller(r chi.Router) {
	r.Post("/credentials/{id}/access/{viewer}/grant", h.HandleGrant)
	r.Post("/credentials/{id}/access/{viewer}/revoke", h.HandleRevoke)
	r.Get("/credentials/{id}/access", h.HandleAccessList)
	r.Get("/credentials/{id}/private", h.HandlePrivateData)
}

// RegisterPublic mounts the anonymous validity check.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/credentials/{id}/access/{viewer}", h.HandleCheck)
}

// HandleGrant adds or renews a viewer's grant.
func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, viewer, err := pathPair(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[GrantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	grant, err := h.service.GrantAccess(ctx, authmw.GetCaller(ctx), id, viewer, req.duration())
	if err != nil {
		h.logger.ErrorContext(ctx, "grant access failed", "error", err, "request_id", requestID, "credential_id", id, "viewer", viewer)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toGrantResponse(grant))
}

// HandleRevoke turns a viewer's grant off; the record is retained.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, viewer, err := pathPair(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RevokeAccess(ctx, authmw.GetCaller(ctx), id, viewer); err != nil {
		h.logger.ErrorContext(ctx, "revoke access failed", "error", err, "request_id", requestID, "credential_id", id, "viewer", viewer)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AccessCheckResponse{
		CredentialID:   id,
		Viewer:         viewer,
		HasValidAccess: false,
	})
}

// HandleCheck reports whether the viewer currently has valid access.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, viewer, err := pathPair(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	valid, err := h.service.HasValidAccess(ctx, id, viewer)
	if err != nil {
		h.logger.ErrorContext(ctx, "access check failed", "error", err, "credential_id", id, "viewer", viewer)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AccessCheckResponse{
		CredentialID:   id,
		Viewer:         viewer,
		HasValidAccess: valid,
	})
}

// HandleAccessList enumerates every viewer ever granted access.
func (h *Handler) HandleAccessList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	viewers, err := h.service.GetAccessList(ctx, authmw.GetCaller(ctx), id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "access list failed", "error", err, "credential_id", id)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AccessListResponse{CredentialID: id, Viewers: viewers})
}

// HandlePrivateData returns the opaque handles to a caller with valid
// access.
func (h *Handler) HandlePrivateData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	handles, err := h.service.GetPrivateData(ctx, authmw.GetCaller(ctx), id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeNoAccess) {
			h.logger.ErrorContext(ctx, "private data read failed", "error", err, "credential_id", id)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, PrivateDataResponse{
		CredentialID: id,
		StudentID:    handles.StudentID,
		Grade:        handles.Grade,
		PersonalData: handles.PersonalData,
	})
}

func pathPair(r *http.Request) (domain.CredentialID, domain.Identity, error) {
	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, domain.ZeroIdentity, err
	}
	viewer, err := domain.ParseIdentity(chi.URLParam(r, "viewer"))
	if err != nil {
		return 0, domain.ZeroIdentity, err
	}
	return id, viewer, nil
}
