package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"masjid/internal/lifecycle"
	"masjid/internal/review/models"
	"masjid/internal/review/service"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/httputil"
	"masjid/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, p domain.Principal, mosqueID domain.MosqueID, in service.Input) (*models.Review, error)
	ListApproved(ctx context.Context, mosqueID domain.MosqueID, limit, offset int) ([]models.Review, error)
	ListByStatus(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Review, error)
	Approve(ctx context.Context, p domain.Principal, id domain.ReviewID) (*models.Review, error)
	Reject(ctx context.Context, p domain.Principal, id domain.ReviewID) (*models.Review, error)
	Delete(ctx context.Context, p domain.Principal, id domain.ReviewID) error
}

// CreateReviewRequest is the body of POST /mosques/{id}/reviews.
type CreateReviewRequest struct {
	Rating   int            `json:"rating" validate:"required,gte=1,lte=5"`
	Criteria map[string]any `json:"criteria"`
	Comment  *string        `json:"comment" validate:"omitempty,max=1000"`
}

func (r *CreateReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return httputil.ValidateStruct(r)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/mosques/{id}/reviews", h.HandleList)
	r.Post("/mosques/{id}/reviews", h.HandleCreate)
}

func (h *Handler) RegisterModeration(r chi.Router) {
	r.Get("/moderation/reviews", h.HandleQueue)
	r.Post("/moderation/reviews/{id}/approve", h.handleDecision(h.service.Approve, "approve review failed"))
	r.Post("/moderation/reviews/{id}/reject", h.handleDecision(h.service.Reject, "reject review failed"))
	r.Delete("/moderation/reviews/{id}", h.HandleDelete)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mosqueID, err := domain.ParseMosqueID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateReviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	review, err := h.service.Create(ctx, requestcontext.Principal(ctx), mosqueID, service.Input{
		Rating:   req.Rating,
		Criteria: req.Criteria,
		Comment:  req.Comment,
	})
	if err != nil {
		h.fail(ctx, w, "create review failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, review)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mosqueID, err := domain.ParseMosqueID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := httputil.QueryInt(r, "limit", service.DefaultListLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.ListApproved(ctx, mosqueID, limit, offset)
	if err != nil {
		h.fail(ctx, w, "list reviews failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var f models.ListFilter
	var err error
	if f.Limit, err = httputil.QueryInt(r, "limit", 0); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if f.Offset, err = httputil.QueryInt(r, "offset", 0); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		if f.Status, err = lifecycle.ParseStatus(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	items, err := h.service.ListByStatus(ctx, requestcontext.Principal(ctx), f)
	if err != nil {
		h.fail(ctx, w, "list review queue failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

type decisionFunc func(ctx context.Context, p domain.Principal, id domain.ReviewID) (*models.Review, error)

func (h *Handler) handleDecision(decide decisionFunc, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := domain.ParseReviewID(chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		review, err := decide(ctx, requestcontext.Principal(ctx), id)
		if err != nil {
			h.fail(ctx, w, msg, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, review)
	}
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseReviewID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, requestcontext.Principal(ctx), id); err != nil {
		h.fail(ctx, w, "delete review failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
