package screen

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

const minTextRunes = 5

var rejectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)free money|click here|subscribe|http[s]?://`),
	regexp.MustCompile(`(?i)kill|hate|racist|sexist|violent|terror|bomb`),
	regexp.MustCompile(`^[^A-Za-z0-9\s]{10,}$`),
}

// Heuristic is the deterministic local classifier.
type Heuristic struct{}

// Classify never fails.
func (Heuristic) Classify(_ context.Context, text string) (Result, error) {
	return Heuristic{}.Evaluate(text), nil
}

// Evaluate rejects spam, hate and symbol-only noise, then anything shorter
// than five characters once trimmed.
func (Heuristic) Evaluate(text string) Result {
	for _, re := range rejectPatterns {
		if re.MatchString(text) {
			return Result{Decision: DecisionRejected, Labels: []string{"heuristic"}, Source: SourceHeuristic}
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextRunes {
		return Result{Decision: DecisionRejected, Labels: []string{"empty"}, Source: SourceHeuristic}
	}
	return Result{Decision: DecisionValid, Labels: []string{"heuristic"}, Source: SourceHeuristic}
}
