package models

import (
	"maps"
	"time"

	"masjid/internal/lifecycle"
	"masjid/pkg/domain"
)

// Review is a rating with optional criteria scores and comment.
type Review struct {
	ID        domain.ReviewID  `json:"id"`
	MosqueID  domain.MosqueID  `json:"mosque_id"`
	UserID    *domain.UserID   `json:"user_id,omitempty"`
	Rating    int              `json:"rating"`
	Criteria  map[string]int   `json:"criteria"`
	Comment   *string          `json:"comment"`
	Status    lifecycle.Status `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (r Review) Clone() Review {
	out := r
	out.Criteria = maps.Clone(r.Criteria)
	if out.Criteria == nil {
		out.Criteria = map[string]int{}
	}
	return out
}

// ListFilter selects reviews. A zero MosqueID lists across mosques.
type ListFilter struct {
	MosqueID domain.MosqueID
	Status   lifecycle.Status
	Limit    int
	Offset   int
}
