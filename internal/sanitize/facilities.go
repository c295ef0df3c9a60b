// Package sanitize whitelists and coerces the structured sub-documents that
// travel on mosques, submissions and reviews. Every function here is total
// and idempotent: unknown keys are dropped and bad values are discarded,
// never reported.
package sanitize

import (
	"math"
	"strings"
)

// FacilityOption is one selectable facility flag.
type FacilityOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var facilityOptions = []FacilityOption{
	{Key: "women_section", Label: "Women's Section"},
	{Key: "wudu", Label: "Wudu Area"},
	{Key: "men_bathrooms", Label: "Men's Bathrooms"},
	{Key: "women_bathrooms", Label: "Women's Bathrooms"},
	{Key: "parking", Label: "Parking"},
	{Key: "accessibility", Label: "Accessible"},
	{Key: "ac", Label: "A/C"},
	{Key: "library", Label: "Library"},
	{Key: "quran_school", Label: "Quran School"},
	{Key: "daily_prayers", Label: "Daily Prayers"},
	{Key: "jumua_prayer", Label: "Jumuah Prayer"},
	{Key: "morgue", Label: "Funeral Prayer"},
}

var facilityKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(facilityOptions))
	for _, o := range facilityOptions {
		m[o.Key] = struct{}{}
	}
	return m
}()

// FacilityOptions returns a copy of the facility whitelist in display order.
func FacilityOptions() []FacilityOption {
	return append([]FacilityOption(nil), facilityOptions...)
}

// IsFacilityKey reports whether key is a known facility.
func IsFacilityKey(key string) bool {
	_, ok := facilityKeys[key]
	return ok
}

// Facilities keeps the whitelisted keys present in in and coerces each value
// to a boolean.
func Facilities(in map[string]any) map[string]bool {
	out := make(map[string]bool)
	for k, v := range in {
		if !IsFacilityKey(k) {
			continue
		}
		out[k] = Truthy(v)
	}
	return out
}

// Truthy coerces loosely typed client values to a boolean. Strings are read
// as words ("yes", "off", ...); any other non-empty string counts as true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "0", "no", "n", "off", "false":
			return false
		default:
			return true
		}
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case uint:
		return t != 0
	case uint64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}
