// Package meta serves the whitelists clients need to render valid options.
package meta

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"masjid/internal/sanitize"
	"masjid/pkg/platform/httputil"
)

type facilitiesResponse struct {
	Facilities []sanitize.FacilityOption `json:"facilities"`
}

type prayersResponse struct {
	Prayers []string `json:"prayers"`
}

type criteriaResponse struct {
	Criteria []string `json:"criteria"`
}

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/meta/facilities", h.HandleFacilities)
	r.Get("/meta/prayers", h.HandlePrayers)
	r.Get("/meta/review-criteria", h.HandleReviewCriteria)
}

func (h *Handler) HandleFacilities(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, facilitiesResponse{Facilities: sanitize.FacilityOptions()})
}

func (h *Handler) HandlePrayers(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, prayersResponse{Prayers: sanitize.PrayerKeys()})
}

func (h *Handler) HandleReviewCriteria(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, criteriaResponse{Criteria: sanitize.CriteriaKeys()})
}
