package storage

import (
	"time"

	mosquemodels "masjid/internal/mosque/models"
	reviewmodels "masjid/internal/review/models"
	submissionmodels "masjid/internal/submission/models"
	"masjid/pkg/domain"
)

// ConfirmationKey identifies one user's confirmation of one submission.
type ConfirmationKey struct {
	SubmissionID int64
	UserID       domain.UserID
}

// Dataset holds every table of the in-memory backend. Callers reach it only
// through Memory.Do so that access is serialized.
type Dataset struct {
	Mosques                 map[domain.MosqueID]mosquemodels.Mosque
	Suggestions             map[domain.SuggestionID]submissionmodels.Suggestion
	Edits                   map[domain.EditID]submissionmodels.Edit
	SuggestionConfirmations map[ConfirmationKey]time.Time
	EditConfirmations       map[ConfirmationKey]time.Time
	Reviews                 map[domain.ReviewID]reviewmodels.Review

	lastID int64
}

// NewDataset returns empty tables.
func NewDataset() *Dataset {
	return &Dataset{
		Mosques:                 make(map[domain.MosqueID]mosquemodels.Mosque),
		Suggestions:             make(map[domain.SuggestionID]submissionmodels.Suggestion),
		Edits:                   make(map[domain.EditID]submissionmodels.Edit),
		SuggestionConfirmations: make(map[ConfirmationKey]time.Time),
		EditConfirmations:       make(map[ConfirmationKey]time.Time),
		Reviews:                 make(map[domain.ReviewID]reviewmodels.Review),
	}
}

// NextID hands out identifiers from a single sequence shared by all tables.
// Rolled-back transactions give their identifiers back, unlike Postgres
// sequences; nothing relies on gaps either way.
func (d *Dataset) NextID() int64 {
	d.lastID++
	return d.lastID
}

// Clone deep-copies every table.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset()
	out.lastID = d.lastID
	for k, v := range d.Mosques {
		out.Mosques[k] = v.Clone()
	}
	for k, v := range d.Suggestions {
		out.Suggestions[k] = v.Clone()
	}
	for k, v := range d.Edits {
		out.Edits[k] = v.Clone()
	}
	for k, v := range d.SuggestionConfirmations {
		out.SuggestionConfirmations[k] = v
	}
	for k, v := range d.EditConfirmations {
		out.EditConfirmations[k] = v
	}
	for k, v := range d.Reviews {
		out.Reviews[k] = v.Clone()
	}
	return out
}
