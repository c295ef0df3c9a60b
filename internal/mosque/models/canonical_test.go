package models

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCanonical_Defaults(t *testing.T) {
	out := Canonical(Details{ArabicName: "  جامع الزيتونة  "})

	assert.Equal(t, "جامع الزيتونة", out.ArabicName)
	assert.Equal(t, UnknownGovernorate, out.Governorate)
	require.NotNil(t, out.Latitude)
	require.NotNil(t, out.Longitude)
	assert.Zero(t, *out.Latitude)
	assert.Zero(t, *out.Longitude)
	assert.NotNil(t, out.Facilities)
	assert.NotNil(t, out.IqamaTimes)
}

func TestCanonical_NonFiniteCoordinatesBecomeNil(t *testing.T) {
	out := Canonical(Details{Latitude: ptr(math.NaN()), Longitude: ptr(math.Inf(1))})
	assert.Nil(t, out.Latitude)
	assert.Nil(t, out.Longitude)
}

func TestCanonical_TruncatesAndFilters(t *testing.T) {
	out := Canonical(Details{
		Governorate: strings.Repeat("ب", 300),
		Type:        ptr(strings.Repeat("x", 80)),
		Address:     ptr("   "),
		Facilities:  map[string]bool{"wudu": true, "pool": true},
		IqamaTimes:  map[string]string{"fajr": "05:00", "dhuhr": "25:00", "sunrise": "06:00"},
	})

	assert.Equal(t, 120, utf8.RuneCountInString(out.Governorate))
	assert.Len(t, *out.Type, 50)
	assert.Nil(t, out.Address)
	assert.Equal(t, map[string]bool{"wudu": true}, out.Facilities)
	assert.Equal(t, map[string]string{"fajr": "05:00"}, out.IqamaTimes)
}

func TestCanonical_Idempotent(t *testing.T) {
	in := Details{
		ArabicName:  strings.Repeat("م", 400) + "  ",
		Governorate: "Sfax",
		Latitude:    ptr(34.74),
		Facilities:  map[string]bool{"parking": false, "ac": true},
		IqamaTimes:  map[string]string{"asr": "15:30"},
		EidInfo:     ptr(" 07:00 "),
	}
	once := Canonical(in)
	assert.Equal(t, once, Canonical(once))
}
