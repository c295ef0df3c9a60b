package models

import "time"

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassRead covers public directory reads.
	ClassRead EndpointClass = "read"
	// ClassWrite covers submissions, confirmations and reviews.
	ClassWrite EndpointClass = "write"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	return c == ClassRead || c == ClassWrite
}

// Policy is the request budget for one endpoint class.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicies returns the per-class budgets used when none are configured.
func DefaultPolicies() map[EndpointClass]Policy {
	return map[EndpointClass]Policy{
		ClassRead:  {Limit: 300, Window: time.Minute},
		ClassWrite: {Limit: 30, Window: time.Minute},
	}
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RateLimitExceededResponse is the API response when a caller runs out of budget.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// ServiceOverloadedResponse is the API response when the global throttle is hit.
type ServiceOverloadedResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Key builds the bucket key for a caller and endpoint class.
func Key(class EndpointClass, subject string) string {
	return "ratelimit:" + string(class) + ":" + subject
}
