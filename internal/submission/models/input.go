package models

import (
	mosquemodels "masjid/internal/mosque/models"
	"masjid/internal/sanitize"
	dErrors "masjid/pkg/domain-errors"
)

// SuggestionInput is a new-entry proposal as received from a client. Nested
// maps arrive loosely typed and are sanitized by Details.
type SuggestionInput struct {
	ArabicName       string
	Type             *string
	Governorate      string
	Delegation       *string
	City             *string
	Address          *string
	Latitude         *float64
	Longitude        *float64
	Facilities       map[string]any
	IqamaTimes       map[string]any
	JumuahTime       *string
	EidInfo          *string
	MuazzinName      *string
	Imam5PrayersName *string
	ImamJumuaName    *string
	ImageURL         *string
}

// Details sanitizes the input into suggestion fields. Unlike promotion it
// keeps nil coordinates and requires both the name and the governorate.
func (in SuggestionInput) Details() (mosquemodels.Details, error) {
	d := mosquemodels.Details{
		ArabicName:       sanitize.Text(in.ArabicName, sanitize.MaxName),
		Type:             sanitize.OptionalText(in.Type, sanitize.MaxType),
		Governorate:      sanitize.Text(in.Governorate, sanitize.MaxRegion),
		Delegation:       sanitize.OptionalText(in.Delegation, sanitize.MaxRegion),
		City:             sanitize.OptionalText(in.City, sanitize.MaxRegion),
		Address:          sanitize.OptionalText(in.Address, sanitize.MaxAddress),
		Latitude:         sanitize.Finite(in.Latitude),
		Longitude:        sanitize.Finite(in.Longitude),
		Facilities:       sanitize.Facilities(in.Facilities),
		IqamaTimes:       sanitize.PrayerTimes(in.IqamaTimes, sanitize.ContextRecord),
		JumuahTime:       sanitize.OptionalText(in.JumuahTime, sanitize.MaxJumuah),
		EidInfo:          sanitize.OptionalText(in.EidInfo, sanitize.MaxEidInfo),
		MuazzinName:      sanitize.OptionalText(in.MuazzinName, sanitize.MaxStaff),
		Imam5PrayersName: sanitize.OptionalText(in.Imam5PrayersName, sanitize.MaxStaff),
		ImamJumuaName:    sanitize.OptionalText(in.ImamJumuaName, sanitize.MaxStaff),
		ImageURL:         sanitize.OptionalText(in.ImageURL, sanitize.MaxImageURL),
	}
	if d.ArabicName == "" {
		return mosquemodels.Details{}, dErrors.New(dErrors.CodeValidation, "arabic_name is required")
	}
	if d.Governorate == "" {
		return mosquemodels.Details{}, dErrors.New(dErrors.CodeValidation, "governorate is required")
	}
	return d, nil
}
