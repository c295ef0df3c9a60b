package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

var timeRe = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

var prayerKeys = []string{"fajr", "dhuhr", "asr", "maghrib", "isha"}

// PrayerKeys returns the five canonical prayer names in daily order.
func PrayerKeys() []string {
	return append([]string(nil), prayerKeys...)
}

// Context selects the prayer-time grammar.
type Context int

const (
	// ContextRecord accepts only HH:MM.
	ContextRecord Context = iota
	// ContextEdit also accepts a bare count of minutes, which older clients send.
	ContextEdit
)

// PrayerTimes keeps the five prayer keys whose value is a valid time string.
func PrayerTimes(in map[string]any, c Context) map[string]string {
	out := make(map[string]string)
	for _, k := range prayerKeys {
		v, ok := in[k]
		if !ok {
			continue
		}
		if s, ok := prayerValue(v, c); ok {
			out[k] = s
		}
	}
	return out
}

// MergePrayerTimes overlays patch onto base. Keys missing from patch survive.
func MergePrayerTimes(base, patch map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func prayerValue(v any, c Context) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if timeRe.MatchString(s) {
			return s, true
		}
		if c == ContextEdit && isDigits(s) {
			n, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return "", false
			}
			return strconv.FormatUint(n, 10), true
		}
	case float64:
		if c == ContextEdit && t >= 0 && t == float64(int64(t)) && t <= 1<<31 {
			return strconv.FormatInt(int64(t), 10), true
		}
	case int:
		if c == ContextEdit && t >= 0 {
			return strconv.Itoa(t), true
		}
	case int64:
		if c == ContextEdit && t >= 0 {
			return strconv.FormatInt(t, 10), true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidTime returns the trimmed value when it is a 24-hour HH:MM time.
func ValidTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !timeRe.MatchString(s) {
		return "", false
	}
	return s, true
}
