package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"masjid/internal/mosque/models"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/httputil"
	"masjid/pkg/requestcontext"
)

// Service is the mosque read and moderation surface.
type Service interface {
	List(ctx context.Context, f models.ListFilter) ([]models.Mosque, error)
	Get(ctx context.Context, id domain.MosqueID) (*models.Mosque, error)
	Nearby(ctx context.Context, q models.NearbyQuery) ([]models.NearbyResult, error)
	Delete(ctx context.Context, p domain.Principal, id domain.MosqueID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public read routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/mosques", h.HandleList)
	r.Get("/mosques/nearby", h.HandleNearby)
	r.Get("/mosques/{id}", h.HandleGet)
}

// RegisterModeration mounts the privileged routes. The caller applies the
// role middleware.
func (h *Handler) RegisterModeration(r chi.Router) {
	r.Delete("/moderation/mosques/{id}", h.HandleDelete)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	items, err := h.service.List(r.Context(), models.ListFilter{
		Governorate: strings.TrimSpace(q.Get("governorate")),
		City:        strings.TrimSpace(q.Get("city")),
		Type:        strings.TrimSpace(q.Get("type")),
		Query:       strings.TrimSpace(q.Get("q")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.fail(r.Context(), w, "list mosques failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseMosqueID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(r.Context(), w, "get mosque failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) HandleNearby(w http.ResponseWriter, r *http.Request) {
	lat, okLat, err := httputil.QueryFloat(r, "lat")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	lng, okLng, err := httputil.QueryFloat(r, "lng")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !okLat || !okLng {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "lat and lng are required"))
		return
	}
	radius, _, err := httputil.QueryFloat(r, "radius")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Nearby(r.Context(), models.NearbyQuery{Lat: lat, Lng: lng, RadiusKm: radius, Limit: limit})
	if err != nil {
		h.fail(r.Context(), w, "nearby search failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseMosqueID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, requestcontext.Principal(ctx), id); err != nil {
		h.fail(ctx, w, "delete mosque failed", err)
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
