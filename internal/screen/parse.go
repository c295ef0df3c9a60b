package screen

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var objectRe = regexp.MustCompile(`\{[\s\S]*\}`)

type wireResult struct {
	Decision string   `json:"decision"`
	Labels   []string `json:"labels"`
	Reason   string   `json:"reason"`
}

// parseResponse decodes the classifier reply. When the body is not pure JSON
// the outermost {...} block is tried. safetyStop marks a reply truncated by
// the provider's safety filter.
func parseResponse(raw string, safetyStop bool) (Result, error) {
	raw = strings.TrimSpace(raw)
	var w wireResult
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		block := objectRe.FindString(raw)
		if block == "" {
			return Result{}, &DependencyFailure{Kind: FailureMalformed, Err: errors.New("response is not JSON")}
		}
		if err := json.Unmarshal([]byte(block), &w); err != nil {
			return Result{}, &DependencyFailure{Kind: FailureMalformed, Err: err}
		}
	}

	var d Decision
	switch Decision(w.Decision) {
	case DecisionValid, DecisionRejected:
		d = Decision(w.Decision)
	default:
		return Result{}, &DependencyFailure{Kind: FailureMalformed, Err: errors.New("missing or unknown decision")}
	}

	labels := w.Labels
	if len(labels) == 0 {
		labels = []string{"gemini"}
	}
	reason := w.Reason
	if reason == "" && safetyStop {
		reason = "blocked_by_safety"
	}
	return Result{Decision: d, Labels: labels, Reason: reason, Source: SourceRemote}, nil
}
