package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masjid/internal/mosque/models"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sfax", "%Sfax%"},
		{"100%", `%100\%%`},
		{"bab_souika", `%bab\_souika%`},
		{`a\b`, `%a\\b%`},
		{`\%_`, `%\\\%\_%`},
		{"جامع", "%جامع%"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, containsPattern(c.in))
		})
	}
}

func TestListSelectBindsEscapedPatterns(t *testing.T) {
	query, args := listSelect(models.ListFilter{
		Governorate: "Tu_nis",
		City:        "50%",
		Type:        "masjid",
		Query:       "Ennour",
		Limit:       10,
	}).Build()

	assert.Contains(t, query, "governorate ILIKE $2")
	assert.Contains(t, query, "city ILIKE $3")
	assert.Contains(t, query, "arabic_name ILIKE $5")
	require.GreaterOrEqual(t, len(args), 5)
	assert.Equal(t, true, args[0])
	assert.Equal(t, `%Tu\_nis%`, args[1])
	assert.Equal(t, `%50\%%`, args[2])
	assert.Equal(t, "masjid", args[3])
	assert.Equal(t, "%Ennour%", args[4])
}
