package screen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const systemPrompt = `You are a strict content moderation tool for community submissions about mosques in Tunisia.
Classify the INPUT as either 'rejected' or 'valid'.
Respond ONLY with a single minified JSON object with keys: decision, labels, reason.
- decision: 'valid' or 'rejected'
- labels: array of short tags (e.g., ['gemini'])
- reason: concise explanation if rejected, otherwise empty string
Example: {"decision":"valid","labels":["gemini"],"reason":""}`

// GeminiClassifier calls the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// GeminiOption configures the classifier.
type GeminiOption func(*genai.ClientConfig)

// WithHTTPClient routes API calls through hc.
func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = hc
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) GeminiOption {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = u
	}
}

// NewGeminiClassifier builds a classifier. An empty key is a configuration
// failure so callers can fall back to the heuristic.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, &DependencyFailure{Kind: FailureNotConfigured, Err: errors.New("GEMINI_API_KEY is empty")}
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClassifier{client: client, model: model}, nil
}

// Classify sends text as the user turn and parses the JSON verdict.
func (g *GeminiClassifier) Classify(ctx context.Context, text string) (Result, error) {
	contents := []*genai.Content{
		genai.NewContentFromText("INPUT:\n"+text, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, &DependencyFailure{Kind: FailureTimeout, Err: err}
		}
		return Result{}, &DependencyFailure{Kind: FailureTransport, Err: err}
	}

	safety := false
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		safety = true
	}
	return parseResponse(resp.Text(), safety)
}
