package models

import (
	"sort"

	"masjid/internal/sanitize"
)

// Editable patch keys.
const (
	KeyAddress          = "address"
	KeyFacilities       = "facilities"
	KeyIqamaTimes       = "iqama_times"
	KeyJumuahTime       = "jumuah_time"
	KeyEidInfo          = "eid_info"
	KeyImageURL         = "image_url"
	KeyMuazzinName      = "muazzin_name"
	KeyImam5PrayersName = "imam_5_prayers_name"
	KeyImamJumuaName    = "imam_jumua_name"
)

// SanitizePatch keeps the editable keys of raw. Unknown keys are dropped, a
// jumuah time that is not HH:MM is dropped, and text is trimmed to the
// canonical limits.
func SanitizePatch(raw map[string]any) Patch {
	var p Patch
	p.Address = text(raw, KeyAddress, sanitize.MaxAddress)
	if v, ok := raw[KeyFacilities].(map[string]any); ok {
		p.Facilities = sanitize.Facilities(v)
	}
	if v, ok := raw[KeyIqamaTimes].(map[string]any); ok {
		p.IqamaTimes = sanitize.PrayerTimes(v, sanitize.ContextEdit)
	}
	if v, ok := raw[KeyJumuahTime].(string); ok {
		if t, valid := sanitize.ValidTime(v); valid {
			p.JumuahTime = &t
		}
	}
	p.EidInfo = text(raw, KeyEidInfo, sanitize.MaxEidInfo)
	p.ImageURL = text(raw, KeyImageURL, sanitize.MaxImageURL)
	p.MuazzinName = text(raw, KeyMuazzinName, sanitize.MaxStaff)
	p.Imam5PrayersName = text(raw, KeyImam5PrayersName, sanitize.MaxStaff)
	p.ImamJumuaName = text(raw, KeyImamJumuaName, sanitize.MaxStaff)
	return p
}

func text(raw map[string]any, key string, max int) *string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	s, _ := sanitize.StringOf(v)
	out := sanitize.Text(s, max)
	return &out
}

// Keys returns the present keys in sorted order.
func (p Patch) Keys() []string {
	var keys []string
	add := func(present bool, key string) {
		if present {
			keys = append(keys, key)
		}
	}
	add(p.Address != nil, KeyAddress)
	add(p.Facilities != nil, KeyFacilities)
	add(p.IqamaTimes != nil, KeyIqamaTimes)
	add(p.JumuahTime != nil, KeyJumuahTime)
	add(p.EidInfo != nil, KeyEidInfo)
	add(p.ImageURL != nil, KeyImageURL)
	add(p.MuazzinName != nil, KeyMuazzinName)
	add(p.Imam5PrayersName != nil, KeyImam5PrayersName)
	add(p.ImamJumuaName != nil, KeyImamJumuaName)
	sort.Strings(keys)
	return keys
}

// Empty reports whether no editable key survived sanitization.
func (p Patch) Empty() bool {
	return len(p.Keys()) == 0
}
