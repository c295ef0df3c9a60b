// Package screen classifies submission text as valid or rejected. A remote
// classifier is consulted first; any failure falls back to a local heuristic.
package screen

import (
	"context"
	"fmt"
)

// Decision is the screen verdict.
type Decision string

const (
	DecisionValid    Decision = "valid"
	DecisionRejected Decision = "rejected"
)

// Source records which classifier produced a result.
type Source string

const (
	SourceRemote    Source = "remote"
	SourceHeuristic Source = "heuristic"
)

// Result is the classifier output.
type Result struct {
	Decision Decision `json:"decision"`
	Labels   []string `json:"labels"`
	Reason   string   `json:"reason,omitempty"`
	Source   Source   `json:"-"`
}

// Valid reports whether the text passed.
func (r Result) Valid() bool {
	return r.Decision == DecisionValid
}

// Classifier is an external text classifier.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// FailureKind names why the remote classifier could not be used.
type FailureKind string

const (
	FailureNotConfigured FailureKind = "not_configured"
	FailureTimeout       FailureKind = "timeout"
	FailureTransport     FailureKind = "transport"
	FailureMalformed     FailureKind = "malformed"
	FailureCircuitOpen   FailureKind = "circuit_open"
)

// DependencyFailure is the typed error every Classifier returns on failure.
type DependencyFailure struct {
	Kind FailureKind
	Err  error
}

func (e *DependencyFailure) Error() string {
	if e.Err == nil {
		return "classifier " + string(e.Kind)
	}
	return fmt.Sprintf("classifier %s: %v", e.Kind, e.Err)
}

func (e *DependencyFailure) Unwrap() error { return e.Err }
