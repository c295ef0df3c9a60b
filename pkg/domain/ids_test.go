package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "masjid/pkg/domain-errors"
)

func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseMosqueID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := ParseSuggestionID("0")
		require.Error(t, err)
	})

	t.Run("accepts positive integer", func(t *testing.T) {
		id, err := ParseEditID("42")
		require.NoError(t, err)
		assert.Equal(t, EditID(42), id)
		assert.Equal(t, "42", id.String())
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "1; DROP TABLE mosques;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "12\x003", true},
		{"Oversized input", strings.Repeat("9", 40), true},
		{"Leading sign", "+7", true},
		{"Negative", "-7", true},
		{"Whitespace", " 7 ", true},
		{"Overflow", "9223372036854775808", true},
		{"Max int64", "9223372036854775807", false},
		{"Valid", "7", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReviewID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	for _, input := range []string{"", "x", "0", "15"} {
		_, errUser := ParseUserID(input)
		_, errMosque := ParseMosqueID(input)
		_, errSuggestion := ParseSuggestionID(input)
		_, errEdit := ParseEditID(input)
		_, errReview := ParseReviewID(input)

		want := errUser == nil
		assert.Equal(t, want, errMosque == nil, input)
		assert.Equal(t, want, errSuggestion == nil, input)
		assert.Equal(t, want, errEdit == nil, input)
		assert.Equal(t, want, errReview == nil, input)
	}
}

func TestRequire(t *testing.T) {
	user := Principal{UserID: 3, Role: RoleAuthenticated}
	mod := Principal{UserID: 4, Role: RoleModerator}

	assert.NoError(t, Require(Guest, RoleGuest))
	assert.True(t, dErrors.HasCode(Require(Guest, RoleAuthenticated), dErrors.CodeUnauthorized))
	assert.NoError(t, Require(user, RoleAuthenticated))
	assert.True(t, dErrors.HasCode(Require(user, RoleModerator), dErrors.CodeForbidden))
	assert.NoError(t, Require(mod, RoleModerator))
	assert.True(t, Principal{UserID: 1, Role: RoleAdmin}.IsPrivileged())
	assert.False(t, Principal{Role: RoleAdmin}.IsAuthenticated(), "role without identity")
}
