package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/credential/models"
	"soulbound/internal/credential/service"
	"soulbound/internal/platform/middleware"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/platform/httputil"
	authmw "soulbound/pkg/platform/middleware/auth"
)

// Service defines the credential operations exposed over HTTP.
type Service interface {
	IssuePublic(ctx context.Context, caller domain.Identity, params service.IssueParams) (*models.Credential, error)
	IssueHybrid(ctx context.Context, caller domain.Identity, params service.IssueParams, private service.PrivateParams) (*models.Credential, error)
	Revoke(ctx context.Context, caller domain.Identity, id domain.CredentialID) (*models.Credential, error)
	Verify(ctx context.Context, id domain.CredentialID) (*service.Verification, error)
	Get(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	TotalSupply(ctx context.Context) (uint64, error)
	Transfer(ctx context.Context, caller domain.Identity, id domain.CredentialID, to domain.Identity) error
	Approve(ctx context.Context, caller domain.Identity, id domain.CredentialID, spender domain.Identity) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCaller mounts the mutation routes. The surrounding router wraps
// these with caller authentication.
func (h *Handler) RegisterCaller(r chi.Router) {
	r.Post("/credentials", h.HandleIssuePublic)
	r.Post("/credentials/hybrid", h.HandleIssueHybrid)
	r.Post("/credentials/{id}/revoke", h.HandleRevoke)
	r.Post("/credentials/{id}/transfer", h.HandleTransfer)
	r.Post("/credentials/{id}/approve", h.HandleApprove)
}

// RegisterPublic mounts the read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/credentials/{id}", h.HandleGet)
	r.Get("/credentials/{id}/verify", h.HandleVerify)
	r.Get("/supply", h.HandleSupply)
}

// HandleIssuePublic issues a credential without private data.
func (h *Handler) HandleIssuePublic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssuePublicRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	params, err := req.toParams()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.IssuePublic(ctx, authmw.GetCaller(ctx), params)
	if err != nil {
		h.logger.ErrorContext(ctx, "issue credential failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCredentialResponse(cred))
}

// HandleIssueHybrid issues a credential carrying the three private handles.
func (h *Handler) HandleIssueHybrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueHybridRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	params, err := req.toParams()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.IssueHybrid(ctx, authmw.GetCaller(ctx), params, req.toPrivateParams())
	if err != nil {
		h.logger.ErrorContext(ctx, "issue hybrid credential failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toCredentialResponse(cred))
}

// HandleRevoke marks a credential revoked.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.Revoke(ctx, authmw.GetCaller(ctx), id)
	if err != nil {
		h.logger.ErrorContext(ctx, "revoke credential failed", "error", err, "request_id", requestID, "credential_id", id)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(cred))
}

// HandleTransfer always rejects; the route exists so relying integrations
// receive a named soulbound error instead of a generic 404.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	to, err := domain.ParseIdentity(req.To)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Transfer(ctx, authmw.GetCaller(ctx), id, to); err != nil {
		httputil.WriteError(w, err)
		return
	}
	// Unreachable while every credential is soulbound; kept so the handler
	// stays correct if the guard ever admits a transition.
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

// HandleApprove always rejects with a soulbound error.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	spender, err := domain.ParseIdentity(req.Spender)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Approve(ctx, authmw.GetCaller(ctx), id, spender); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// HandleGet returns the credential's public view.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.Get(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "get credential failed", "error", err, "credential_id", id)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(cred))
}

// HandleVerify evaluates derived validity at request time.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Verify(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "verify credential failed", "error", err, "credential_id", id)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(result))
}

// HandleSupply returns the issuance count.
func (h *Handler) HandleSupply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.service.TotalSupply(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "total supply failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SupplyResponse{TotalSupply: count})
}
