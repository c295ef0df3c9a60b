package screen

import (
	"context"
	"net/http"
	"regexp"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedGemini(t *testing.T, status int, body string) *GeminiClassifier {
	t.Helper()
	transport := httpmock.NewMockTransport()
	transport.RegisterRegexpResponder(http.MethodPost, regexp.MustCompile(`generateContent`),
		httpmock.NewStringResponder(status, body).HeaderSet(http.Header{"Content-Type": []string{"application/json"}}))

	g, err := NewGeminiClassifier(context.Background(), "test-key", "",
		WithHTTPClient(&http.Client{Transport: transport}),
		WithBaseURL("https://gemini.test/"),
	)
	require.NoError(t, err)
	return g
}

func TestGeminiClassifierParsesVerdict(t *testing.T) {
	g := newMockedGemini(t, http.StatusOK, `{
		"candidates": [{
			"content": {"role": "model", "parts": [{"text": "{\"decision\":\"rejected\",\"labels\":[\"spam\"],\"reason\":\"advertising\"}"}]},
			"finishReason": "STOP"
		}]
	}`)

	res, err := g.Classify(context.Background(), "buy now")
	require.NoError(t, err)
	assert.Equal(t, DecisionRejected, res.Decision)
	assert.Equal(t, []string{"spam"}, res.Labels)
	assert.Equal(t, "advertising", res.Reason)
	assert.Equal(t, SourceRemote, res.Source)
}

func TestGeminiClassifierServerErrorIsTransportFailure(t *testing.T) {
	g := newMockedGemini(t, http.StatusInternalServerError, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)

	_, err := g.Classify(context.Background(), "Masjid Ennour")
	var df *DependencyFailure
	require.ErrorAs(t, err, &df)
	assert.Equal(t, FailureTransport, df.Kind)
}

func TestGeminiClassifierRequiresKey(t *testing.T) {
	_, err := NewGeminiClassifier(context.Background(), "", "")
	var df *DependencyFailure
	require.ErrorAs(t, err, &df)
	assert.Equal(t, FailureNotConfigured, df.Kind)
}
