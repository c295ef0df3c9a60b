// Package promotion turns approved submissions into canonical mosque data.
// Both entry points must run inside the unit of work that marks the
// submission approved.
package promotion

import (
	"context"
	"errors"
	"time"

	mosquemodels "masjid/internal/mosque/models"
	"masjid/internal/sanitize"
	"masjid/internal/submission/models"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/sentinel"
)

// MosqueWriter is the slice of the mosque store the engine needs.
type MosqueWriter interface {
	Create(ctx context.Context, m *mosquemodels.Mosque) error
	FindByIDForUpdate(ctx context.Context, id domain.MosqueID) (*mosquemodels.Mosque, error)
	Update(ctx context.Context, m *mosquemodels.Mosque) error
}

type Engine struct {
	mosques MosqueWriter
}

func New(mosques MosqueWriter) *Engine {
	return &Engine{mosques: mosques}
}

// PromoteSuggestion creates the approved canonical record for s.
func (e *Engine) PromoteSuggestion(ctx context.Context, s *models.Suggestion, now time.Time) (*mosquemodels.Mosque, error) {
	m := &mosquemodels.Mosque{
		Details:   mosquemodels.Canonical(s.Details),
		Approved:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.mosques.Create(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create mosque")
	}
	return m, nil
}

// ApplyEdit merges the patch of ed into its target mosque. A missing target is
// a conflict and aborts the surrounding unit of work.
func (e *Engine) ApplyEdit(ctx context.Context, ed *models.Edit, now time.Time) (*mosquemodels.Mosque, error) {
	m, err := e.mosques.FindByIDForUpdate(ctx, ed.MosqueID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeConflict, "edit target mosque no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load edit target")
	}
	m.Details = ApplyPatch(m.Details, ed.Patch)
	m.UpdatedAt = now
	if err := e.mosques.Update(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update mosque")
	}
	return m, nil
}

// ApplyPatch returns d with p applied. Facilities are replaced wholesale;
// iqama times are merged so keys absent from the patch survive. Scalar values
// are truncated to the canonical limits and an empty value clears the field.
func ApplyPatch(d mosquemodels.Details, p models.Patch) mosquemodels.Details {
	out := d.Clone()
	if p.Address != nil {
		out.Address = sanitize.OptionalText(p.Address, sanitize.MaxAddress)
	}
	if p.Facilities != nil {
		out.Facilities = sanitize.Facilities(mosquemodels.BoolsToAny(p.Facilities))
	}
	if p.IqamaTimes != nil {
		patch := sanitize.PrayerTimes(mosquemodels.StringsToAny(p.IqamaTimes), sanitize.ContextEdit)
		out.IqamaTimes = sanitize.MergePrayerTimes(out.IqamaTimes, patch)
	}
	if p.JumuahTime != nil {
		out.JumuahTime = sanitize.OptionalText(p.JumuahTime, sanitize.MaxJumuah)
	}
	if p.EidInfo != nil {
		out.EidInfo = sanitize.OptionalText(p.EidInfo, sanitize.MaxEidInfo)
	}
	if p.ImageURL != nil {
		out.ImageURL = sanitize.OptionalText(p.ImageURL, sanitize.MaxImageURL)
	}
	if p.MuazzinName != nil {
		out.MuazzinName = sanitize.OptionalText(p.MuazzinName, sanitize.MaxStaff)
	}
	if p.Imam5PrayersName != nil {
		out.Imam5PrayersName = sanitize.OptionalText(p.Imam5PrayersName, sanitize.MaxStaff)
	}
	if p.ImamJumuaName != nil {
		out.ImamJumuaName = sanitize.OptionalText(p.ImamJumuaName, sanitize.MaxStaff)
	}
	return out
}
