package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"masjid/internal/mosque/models"
)

// DetailColumns lists the columns shared by mosques and mosque_suggestions, in
// the order used by DetailValues and DetailsDest.Targets.
var DetailColumns = []string{
	"arabic_name", "type", "governorate", "delegation", "city", "address",
	"latitude", "longitude", "facilities", "iqama_times", "jumuah_time",
	"eid_info", "muazzin_name", "imam_5_prayers_name", "imam_jumua_name", "image_url",
}

// DetailValues returns bind values matching DetailColumns.
func DetailValues(d models.Details) ([]any, error) {
	facilities, err := json.Marshal(nonNilBool(d.Facilities))
	if err != nil {
		return nil, fmt.Errorf("marshal facilities: %w", err)
	}
	iqama, err := json.Marshal(nonNilString(d.IqamaTimes))
	if err != nil {
		return nil, fmt.Errorf("marshal iqama times: %w", err)
	}
	return []any{
		d.ArabicName, NullString(d.Type), d.Governorate, NullString(d.Delegation),
		NullString(d.City), NullString(d.Address), nullFloat(d.Latitude), nullFloat(d.Longitude),
		facilities, iqama, NullString(d.JumuahTime), NullString(d.EidInfo),
		NullString(d.MuazzinName), NullString(d.Imam5PrayersName), NullString(d.ImamJumuaName),
		NullString(d.ImageURL),
	}, nil
}

// DetailsDest receives a scanned Details row.
type DetailsDest struct {
	arabicName, governorate                     string
	typ, delegation, city, address, jumuah, eid sql.NullString
	muazzin, imam5, imamJumua, imageURL         sql.NullString
	lat, lng                                    sql.NullFloat64
	facilities, iqama                           []byte
}

// Targets returns scan destinations matching DetailColumns.
func (d *DetailsDest) Targets() []any {
	return []any{
		&d.arabicName, &d.typ, &d.governorate, &d.delegation, &d.city, &d.address,
		&d.lat, &d.lng, &d.facilities, &d.iqama, &d.jumuah, &d.eid,
		&d.muazzin, &d.imam5, &d.imamJumua, &d.imageURL,
	}
}

// Details converts the scanned row.
func (d *DetailsDest) Details() (models.Details, error) {
	out := models.Details{
		ArabicName:       d.arabicName,
		Type:             StringPtr(d.typ),
		Governorate:      d.governorate,
		Delegation:       StringPtr(d.delegation),
		City:             StringPtr(d.city),
		Address:          StringPtr(d.address),
		Latitude:         floatPtr(d.lat),
		Longitude:        floatPtr(d.lng),
		JumuahTime:       StringPtr(d.jumuah),
		EidInfo:          StringPtr(d.eid),
		MuazzinName:      StringPtr(d.muazzin),
		Imam5PrayersName: StringPtr(d.imam5),
		ImamJumuaName:    StringPtr(d.imamJumua),
		ImageURL:         StringPtr(d.imageURL),
		Facilities:       map[string]bool{},
		IqamaTimes:       map[string]string{},
	}
	if len(d.facilities) > 0 {
		if err := json.Unmarshal(d.facilities, &out.Facilities); err != nil {
			return models.Details{}, fmt.Errorf("unmarshal facilities: %w", err)
		}
	}
	if len(d.iqama) > 0 {
		if err := json.Unmarshal(d.iqama, &out.IqamaTimes); err != nil {
			return models.Details{}, fmt.Errorf("unmarshal iqama times: %w", err)
		}
	}
	return out, nil
}

func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func nonNilBool(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

func nonNilString(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
