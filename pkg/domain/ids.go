// Package domain holds identifier and principal types shared across modules.
package domain

import (
	"strconv"

	dErrors "masjid/pkg/domain-errors"
)

// Typed identifiers. Every persisted row uses a positive 64-bit serial key.
type (
	UserID       int64
	MosqueID     int64
	SuggestionID int64
	EditID       int64
	ReviewID     int64
)

const maxIDDigits = 19

func parsePositive(raw, kind string) (int64, error) {
	if raw == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, kind+" is required")
	}
	if len(raw) > maxIDDigits {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	return n, nil
}

func ParseUserID(s string) (UserID, error) {
	n, err := parsePositive(s, "user id")
	return UserID(n), err
}

func ParseMosqueID(s string) (MosqueID, error) {
	n, err := parsePositive(s, "mosque id")
	return MosqueID(n), err
}

func ParseSuggestionID(s string) (SuggestionID, error) {
	n, err := parsePositive(s, "suggestion id")
	return SuggestionID(n), err
}

func ParseEditID(s string) (EditID, error) {
	n, err := parsePositive(s, "edit id")
	return EditID(n), err
}

func ParseReviewID(s string) (ReviewID, error) {
	n, err := parsePositive(s, "review id")
	return ReviewID(n), err
}

func (id UserID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id MosqueID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id SuggestionID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id EditID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id ReviewID) String() string     { return strconv.FormatInt(int64(id), 10) }
