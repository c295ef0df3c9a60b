package models

import (
	"strings"

	mosquemodels "masjid/internal/mosque/models"
)

// ScreenText is the composite text classified when a suggestion is created:
// the human-readable fields in declaration order, blanks skipped.
func (s Suggestion) ScreenText() string {
	return DetailsText(s.Details)
}

func DetailsText(d mosquemodels.Details) string {
	return join(
		d.ArabicName, deref(d.Type), d.Governorate, deref(d.Delegation), deref(d.City),
		deref(d.Address), deref(d.JumuahTime), deref(d.EidInfo),
		deref(d.MuazzinName), deref(d.Imam5PrayersName), deref(d.ImamJumuaName),
	)
}

// ScreenText is the composite text classified when an edit is created: the
// free-text values followed by the sorted patched keys.
func (p Patch) ScreenText() string {
	return join(
		deref(p.Address), deref(p.JumuahTime), deref(p.EidInfo),
		deref(p.MuazzinName), deref(p.Imam5PrayersName), deref(p.ImamJumuaName),
		strings.Join(p.Keys(), " "),
	)
}

func join(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
