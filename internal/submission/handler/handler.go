package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"masjid/internal/lifecycle"
	"masjid/internal/submission/models"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/httputil"
	"masjid/pkg/requestcontext"
)

// Service is the submission lifecycle as seen by HTTP callers.
type Service interface {
	CreateSuggestion(ctx context.Context, p domain.Principal, in models.SuggestionInput) (*models.Suggestion, error)
	CreateEdit(ctx context.Context, p domain.Principal, mosqueID domain.MosqueID, raw map[string]any) (*models.Edit, error)
	Confirm(ctx context.Context, p domain.Principal, kind models.Kind, id int64) (*models.Outcome, error)
	Approve(ctx context.Context, p domain.Principal, kind models.Kind, id int64) (*models.Outcome, error)
	Reject(ctx context.Context, p domain.Principal, kind models.Kind, id int64) (*models.Outcome, error)
	Delete(ctx context.Context, p domain.Principal, kind models.Kind, id int64) error
	MySuggestions(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Suggestion, error)
	MyEdits(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Edit, error)
	SuggestionsByStatus(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Suggestion, error)
	EditsByStatus(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Edit, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the community routes. Role checks happen in the service so
// the routes work behind any authentication middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/suggestions/mosques", h.HandleCreateSuggestion)
	r.Post("/suggestions/{id}/confirmations", h.handleConfirm(models.KindNewEntry))
	r.Post("/suggestions/mosques/{id}/edits", h.HandleCreateEdit)
	r.Post("/suggestions/edits/{id}/confirmations", h.handleConfirm(models.KindEdit))
	r.Get("/me/suggestions", h.HandleMySuggestions)
	r.Get("/me/edits", h.HandleMyEdits)
}

// RegisterModeration mounts the moderator queue and decision routes.
func (h *Handler) RegisterModeration(r chi.Router) {
	r.Get("/moderation/suggestions", h.HandleSuggestionQueue)
	r.Get("/moderation/edits", h.HandleEditQueue)
	for _, kind := range []models.Kind{models.KindNewEntry, models.KindEdit} {
		base := "/moderation/" + collection(kind) + "/{id}"
		r.Post(base+"/approve", h.handleDecision(kind, h.service.Approve, "approve submission failed"))
		r.Post(base+"/reject", h.handleDecision(kind, h.service.Reject, "reject submission failed"))
		r.Delete(base, h.handleDelete(kind))
	}
}

func (h *Handler) HandleCreateSuggestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateSuggestionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	sug, err := h.service.CreateSuggestion(ctx, requestcontext.Principal(ctx), req.Input())
	if err != nil {
		h.fail(ctx, w, "create suggestion failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sug)
}

func (h *Handler) HandleCreateEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mosqueID, err := domain.ParseMosqueID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateEditRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	ed, err := h.service.CreateEdit(ctx, requestcontext.Principal(ctx), mosqueID, req.Patch)
	if err != nil {
		h.fail(ctx, w, "create edit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ed)
}

func (h *Handler) handleConfirm(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := parseID(kind, chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		out, err := h.service.Confirm(ctx, requestcontext.Principal(ctx), kind, id)
		if err != nil {
			h.fail(ctx, w, "confirm submission failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, out)
	}
}

type decisionFunc func(ctx context.Context, p domain.Principal, kind models.Kind, id int64) (*models.Outcome, error)

func (h *Handler) handleDecision(kind models.Kind, decide decisionFunc, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := parseID(kind, chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		out, err := decide(ctx, requestcontext.Principal(ctx), kind, id)
		if err != nil {
			h.fail(ctx, w, msg, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, out)
	}
}

func (h *Handler) handleDelete(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := parseID(kind, chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if err := h.service.Delete(ctx, requestcontext.Principal(ctx), kind, id); err != nil {
			h.fail(ctx, w, "delete submission failed", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) HandleMySuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := listFilter(r, false)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.MySuggestions(ctx, requestcontext.Principal(ctx), f)
	if err != nil {
		h.fail(ctx, w, "list own suggestions failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleMyEdits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := listFilter(r, false)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.MyEdits(ctx, requestcontext.Principal(ctx), f)
	if err != nil {
		h.fail(ctx, w, "list own edits failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleSuggestionQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := listFilter(r, true)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.SuggestionsByStatus(ctx, requestcontext.Principal(ctx), f)
	if err != nil {
		h.fail(ctx, w, "list suggestions failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleEditQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := listFilter(r, true)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.EditsByStatus(ctx, requestcontext.Principal(ctx), f)
	if err != nil {
		h.fail(ctx, w, "list edits failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}

func listFilter(r *http.Request, withStatus bool) (models.ListFilter, error) {
	var f models.ListFilter
	var err error
	if f.Limit, err = httputil.QueryInt(r, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = httputil.QueryInt(r, "offset", 0); err != nil {
		return f, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); withStatus && raw != "" {
		if f.Status, err = lifecycle.ParseStatus(raw); err != nil {
			return f, err
		}
	}
	return f, nil
}

func parseID(kind models.Kind, raw string) (int64, error) {
	if kind == models.KindEdit {
		id, err := domain.ParseEditID(raw)
		return int64(id), err
	}
	id, err := domain.ParseSuggestionID(raw)
	return int64(id), err
}

func collection(kind models.Kind) string {
	if kind == models.KindEdit {
		return "edits"
	}
	return "suggestions"
}
