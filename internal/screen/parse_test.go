package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		res, err := parseResponse(`{"decision":"valid","labels":["gemini","ok"],"reason":""}`, false)
		require.NoError(t, err)
		assert.Equal(t, DecisionValid, res.Decision)
		assert.Equal(t, []string{"gemini", "ok"}, res.Labels)
	})

	t.Run("json inside prose", func(t *testing.T) {
		res, err := parseResponse("Sure!\n```json\n{\"decision\":\"rejected\",\"labels\":[],\"reason\":\"spam\"}\n```", false)
		require.NoError(t, err)
		assert.Equal(t, DecisionRejected, res.Decision)
		assert.Equal(t, []string{"gemini"}, res.Labels)
		assert.Equal(t, "spam", res.Reason)
	})

	t.Run("safety stop fills reason", func(t *testing.T) {
		res, err := parseResponse(`{"decision":"rejected"}`, true)
		require.NoError(t, err)
		assert.Equal(t, "blocked_by_safety", res.Reason)
	})

	t.Run("unknown decision is malformed", func(t *testing.T) {
		_, err := parseResponse(`{"decision":"maybe"}`, false)
		var df *DependencyFailure
		require.ErrorAs(t, err, &df)
		assert.Equal(t, FailureMalformed, df.Kind)
	})

	t.Run("no json is malformed", func(t *testing.T) {
		_, err := parseResponse("I cannot help with that", false)
		var df *DependencyFailure
		require.ErrorAs(t, err, &df)
	})
}
