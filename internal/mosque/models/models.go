package models

import (
	"maps"
	"time"

	"masjid/pkg/domain"
)

// Details is the field shape shared by a mosque and a new-entry suggestion.
type Details struct {
	ArabicName       string            `json:"arabic_name"`
	Type             *string           `json:"type"`
	Governorate      string            `json:"governorate"`
	Delegation       *string           `json:"delegation"`
	City             *string           `json:"city"`
	Address          *string           `json:"address"`
	Latitude         *float64          `json:"latitude"`
	Longitude        *float64          `json:"longitude"`
	Facilities       map[string]bool   `json:"facilities"`
	IqamaTimes       map[string]string `json:"iqama_times"`
	JumuahTime       *string           `json:"jumuah_time"`
	EidInfo          *string           `json:"eid_info"`
	MuazzinName      *string           `json:"muazzin_name"`
	Imam5PrayersName *string           `json:"imam_5_prayers_name"`
	ImamJumuaName    *string           `json:"imam_jumua_name"`
	ImageURL         *string           `json:"image_url"`
}

// Clone returns a copy that shares no maps with d.
func (d Details) Clone() Details {
	out := d
	out.Facilities = maps.Clone(d.Facilities)
	out.IqamaTimes = maps.Clone(d.IqamaTimes)
	if out.Facilities == nil {
		out.Facilities = map[string]bool{}
	}
	if out.IqamaTimes == nil {
		out.IqamaTimes = map[string]string{}
	}
	return out
}

// Mosque is the canonical, publicly served record.
type Mosque struct {
	ID domain.MosqueID `json:"id"`
	Details
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy.
func (m Mosque) Clone() Mosque {
	out := m
	out.Details = m.Details.Clone()
	return out
}

// ListFilter narrows the public listing. Governorate and City match
// case-insensitive substrings, Type matches exactly and Query searches names.
type ListFilter struct {
	Governorate string
	City        string
	Type        string
	Query       string
	Limit       int
	Offset      int
}

// BoundingBox is an inclusive latitude/longitude window.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// NearbyQuery is a proximity search.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
}

// NearbyResult is a mosque with its great-circle distance from the query point.
type NearbyResult struct {
	Mosque
	DistanceKm float64 `json:"distance_km"`
}
