package sanitize

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Storage limits, in characters, of the canonical text columns.
const (
	MaxName     = 255
	MaxType     = 50
	MaxRegion   = 120
	MaxAddress  = 255
	MaxJumuah   = 20
	MaxEidInfo  = 255
	MaxStaff    = 120
	MaxImageURL = 500
	MaxComment  = 1000
)

// Text trims, NFC-normalises and truncates s to max characters.
func Text(s string, max int) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return strings.TrimSpace(Truncate(s, max))
}

// Truncate cuts s to at most max runes without splitting a character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// OptionalText is Text for nullable columns: an empty result becomes nil.
func OptionalText(s *string, max int) *string {
	if s == nil {
		return nil
	}
	out := Text(*s, max)
	if out == "" {
		return nil
	}
	return &out
}

// Finite drops NaN and infinities.
func Finite(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	v := *f
	return &v
}

// StringOf renders a loosely typed scalar as text. Non-scalars yield "".
func StringOf(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}
