package events

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soulbound/pkg/domain"
	"soulbound/pkg/platform/httputil"
)

// Log is the queryable side of the event store.
type Log interface {
	List(ctx context.Context) ([]Event, error)
	ListByCredential(ctx context.Context, id domain.CredentialID) ([]Event, error)
}

// Handler exposes the in-memory event log so dashboards can poll without a
// kafka consumer.
type Handler struct {
	log    Log
	logger *slog.Logger
}

func NewHandler(log Log, logger *slog.Logger) *Handler {
	return &Handler{log: log, logger: logger}
}

// RegisterPublic mounts the event listing routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/events", h.HandleList)
}

// ListResponse wraps the event log for the wire.
type ListResponse struct {
	Events []Event `json:"events"`
}

// HandleList returns the full log, optionally filtered by ?credential_id=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		out []Event
		err error
	)
	if raw := r.URL.Query().Get("credential_id"); raw != "" {
		var id domain.CredentialID
		id, err = domain.ParseCredentialID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		out, err = h.log.ListByCredential(ctx, id)
	} else {
		out, err = h.log.List(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "list events failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if out == nil {
		out = []Event{}
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{Events: out})
}
