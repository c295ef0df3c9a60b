package handler

import (
	"masjid/internal/submission/models"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/httputil"
)

// CreateSuggestionRequest is the body of POST /suggestions/mosques.
// Text fields longer than their column are truncated by the service, not
// rejected here.
type CreateSuggestionRequest struct {
	ArabicName       string         `json:"arabic_name" validate:"required"`
	Type             *string        `json:"type"`
	Governorate      string         `json:"governorate" validate:"required"`
	Delegation       *string        `json:"delegation"`
	City             *string        `json:"city"`
	Address          *string        `json:"address"`
	Latitude         *float64       `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64       `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Facilities       map[string]any `json:"facilities"`
	IqamaTimes       map[string]any `json:"iqama_times"`
	JumuahTime       *string        `json:"jumuah_time"`
	EidInfo          *string        `json:"eid_info"`
	MuazzinName      *string        `json:"muazzin_name"`
	Imam5PrayersName *string        `json:"imam_5_prayers_name"`
	ImamJumuaName    *string        `json:"imam_jumua_name"`
	ImageURL         *string        `json:"image_url" validate:"omitempty,max=500"`
}

// Validate implements httputil.Validatable.
func (r *CreateSuggestionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return httputil.ValidateStruct(r)
}

func (r *CreateSuggestionRequest) Input() models.SuggestionInput {
	return models.SuggestionInput{
		ArabicName:       r.ArabicName,
		Type:             r.Type,
		Governorate:      r.Governorate,
		Delegation:       r.Delegation,
		City:             r.City,
		Address:          r.Address,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Facilities:       r.Facilities,
		IqamaTimes:       r.IqamaTimes,
		JumuahTime:       r.JumuahTime,
		EidInfo:          r.EidInfo,
		MuazzinName:      r.MuazzinName,
		Imam5PrayersName: r.Imam5PrayersName,
		ImamJumuaName:    r.ImamJumuaName,
		ImageURL:         r.ImageURL,
	}
}

// CreateEditRequest is the body of POST /suggestions/mosques/{id}/edits.
// The patch stays loosely typed so that key presence survives decoding.
type CreateEditRequest struct {
	Patch map[string]any `json:"patch" validate:"required"`
}

func (r *CreateEditRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return httputil.ValidateStruct(r)
}
