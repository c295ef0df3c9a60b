package sanitize

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

var criteriaKeys = []string{
	"cleanliness",
	"accessibility",
	"women_section",
	"wudu_area",
	"parking",
	"audio_quality",
	"air_conditioning",
}

var criteriaSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(criteriaKeys))
	for _, k := range criteriaKeys {
		m[k] = struct{}{}
	}
	return m
}()

// CriteriaKeys returns the review criteria whitelist.
func CriteriaKeys() []string {
	return append([]string(nil), criteriaKeys...)
}

// Criteria keeps whitelisted (trimmed) keys whose value reads as an integer,
// clamped to 0..5. When several raw keys trim to the same criterion, an exact
// key wins over padded ones, and padded ones resolve in sorted order.
func Criteria(in map[string]any) map[string]int {
	out := make(map[string]int)
	exact := make(map[string]bool)
	for _, k := range slices.Sorted(maps.Keys(in)) {
		key := strings.TrimSpace(k)
		if _, ok := criteriaSet[key]; !ok {
			continue
		}
		if exact[key] {
			continue
		}
		n, ok := toInt(in[k])
		if !ok {
			continue
		}
		if key == k {
			exact[key] = true
		} else if _, seen := out[key]; seen {
			continue
		}
		out[key] = clamp(n, 0, 5)
	}
	return out
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(math.Max(math.Min(math.Trunc(t), 1e6), -1e6)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
