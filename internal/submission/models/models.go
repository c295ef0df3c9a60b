package models

import (
	"maps"
	"time"

	"masjid/internal/lifecycle"
	mosquemodels "masjid/internal/mosque/models"
	"masjid/pkg/domain"
)

// Kind distinguishes the two submission flavours. The value doubles as the
// audit subject type.
type Kind string

const (
	KindNewEntry Kind = "suggestion"
	KindEdit     Kind = "edit"
)

// Suggestion proposes a new mosque.
type Suggestion struct {
	ID domain.SuggestionID `json:"id"`
	mosquemodels.Details
	Status             lifecycle.Status `json:"status"`
	ConfirmationsCount int              `json:"confirmations_count"`
	CreatedByUserID    *domain.UserID   `json:"created_by_user_id,omitempty"`
	ApprovedMosqueID   *domain.MosqueID `json:"approved_mosque_id,omitempty"`
	ScreenLabels       []string         `json:"screen_labels,omitempty"`
	ScreenReason       string           `json:"screen_reason,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (s Suggestion) Clone() Suggestion {
	out := s
	out.Details = s.Details.Clone()
	out.ScreenLabels = append([]string(nil), s.ScreenLabels...)
	return out
}

// Patch is a sparse set of field updates for an existing mosque. A nil field
// is absent from the patch. Facilities replace the existing map; iqama times
// are merged into it.
type Patch struct {
	Address          *string           `json:"address,omitempty"`
	Facilities       map[string]bool   `json:"facilities"`
	IqamaTimes       map[string]string `json:"iqama_times"`
	JumuahTime       *string           `json:"jumuah_time,omitempty"`
	EidInfo          *string           `json:"eid_info,omitempty"`
	ImageURL         *string           `json:"image_url,omitempty"`
	MuazzinName      *string           `json:"muazzin_name,omitempty"`
	Imam5PrayersName *string           `json:"imam_5_prayers_name,omitempty"`
	ImamJumuaName    *string           `json:"imam_jumua_name,omitempty"`
}

// Clone copies the patch and its nested maps.
func (p Patch) Clone() Patch {
	out := p
	if p.Facilities != nil {
		out.Facilities = maps.Clone(p.Facilities)
	}
	if p.IqamaTimes != nil {
		out.IqamaTimes = maps.Clone(p.IqamaTimes)
	}
	return out
}

// Edit proposes a patch against an existing mosque.
type Edit struct {
	ID                 domain.EditID    `json:"id"`
	MosqueID           domain.MosqueID  `json:"mosque_id"`
	Patch              Patch            `json:"patch"`
	Status             lifecycle.Status `json:"status"`
	ConfirmationsCount int              `json:"confirmations_count"`
	CreatedByUserID    *domain.UserID   `json:"created_by_user_id,omitempty"`
	ScreenLabels       []string         `json:"screen_labels,omitempty"`
	ScreenReason       string           `json:"screen_reason,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (e Edit) Clone() Edit {
	out := e
	out.Patch = e.Patch.Clone()
	out.ScreenLabels = append([]string(nil), e.ScreenLabels...)
	return out
}

// State is the lockable lifecycle slice of either submission kind.
type State struct {
	Kind               Kind
	ID                 int64
	Status             lifecycle.Status
	ConfirmationsCount int
}

// ListFilter selects submissions for moderation and "my submissions" views.
type ListFilter struct {
	Status    lifecycle.Status
	CreatedBy *domain.UserID
	MosqueID  *domain.MosqueID
	Limit     int
	Offset    int
}

// Outcome reports the state of a submission after a confirmation or a
// moderator decision.
type Outcome struct {
	Kind               Kind             `json:"kind"`
	ID                 int64            `json:"id"`
	Status             lifecycle.Status `json:"status"`
	ConfirmationsCount int              `json:"confirmations_count"`
	Promoted           bool             `json:"promoted"`
	MosqueID           *domain.MosqueID `json:"mosque_id,omitempty"`
}
