package models

import "masjid/internal/sanitize"

// UnknownGovernorate replaces a missing governorate on canonical records.
const UnknownGovernorate = "Unknown"

// Canonical re-sanitizes every field of d to the canonical storage limits.
// Missing coordinates become 0.0; non-finite ones become nil.
func Canonical(d Details) Details {
	out := Details{
		ArabicName:       sanitize.Text(d.ArabicName, sanitize.MaxName),
		Type:             sanitize.OptionalText(d.Type, sanitize.MaxType),
		Governorate:      sanitize.Text(d.Governorate, sanitize.MaxRegion),
		Delegation:       sanitize.OptionalText(d.Delegation, sanitize.MaxRegion),
		City:             sanitize.OptionalText(d.City, sanitize.MaxRegion),
		Address:          sanitize.OptionalText(d.Address, sanitize.MaxAddress),
		Latitude:         coordinate(d.Latitude),
		Longitude:        coordinate(d.Longitude),
		Facilities:       sanitize.Facilities(BoolsToAny(d.Facilities)),
		IqamaTimes:       sanitize.PrayerTimes(StringsToAny(d.IqamaTimes), sanitize.ContextEdit),
		JumuahTime:       sanitize.OptionalText(d.JumuahTime, sanitize.MaxJumuah),
		EidInfo:          sanitize.OptionalText(d.EidInfo, sanitize.MaxEidInfo),
		MuazzinName:      sanitize.OptionalText(d.MuazzinName, sanitize.MaxStaff),
		Imam5PrayersName: sanitize.OptionalText(d.Imam5PrayersName, sanitize.MaxStaff),
		ImamJumuaName:    sanitize.OptionalText(d.ImamJumuaName, sanitize.MaxStaff),
		ImageURL:         sanitize.OptionalText(d.ImageURL, sanitize.MaxImageURL),
	}
	if out.Governorate == "" {
		out.Governorate = UnknownGovernorate
	}
	return out
}

func coordinate(f *float64) *float64 {
	if f == nil {
		zero := 0.0
		return &zero
	}
	return sanitize.Finite(f)
}

func BoolsToAny(m map[string]bool) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func StringsToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
