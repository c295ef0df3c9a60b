package screen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"masjid/pkg/platform/circuit"
)

const defaultTimeout = 5 * time.Second

var tracer = otel.Tracer("masjid/screen")

// Screen runs the remote classifier once under a timeout and absorbs every
// failure into the heuristic verdict. Classify never returns an error.
type Screen struct {
	primary   Classifier
	heuristic Heuristic
	breaker   *circuit.Breaker
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *Metrics
}

type Option func(*Screen)

func WithTimeout(d time.Duration) Option {
	return func(s *Screen) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Screen) {
		s.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Screen) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Screen) {
		s.metrics = m
	}
}

// New builds a screen. A nil primary means the heuristic always decides.
func New(primary Classifier, opts ...Option) *Screen {
	s := &Screen{
		primary: primary,
		breaker: circuit.New("screen", circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second)),
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify returns the verdict for text.
func (s *Screen) Classify(ctx context.Context, text string) Result {
	ctx, span := tracer.Start(ctx, "screen.Classify")
	defer span.End()

	start := time.Now()
	res, failure := s.classifyPrimary(ctx, text)
	if failure != nil {
		res = s.heuristic.Evaluate(text)
		if res.Decision == DecisionRejected {
			res.Reason = res.Labels[0]
		}
		s.logger.WarnContext(ctx, "content screen fell back to heuristic",
			"failure", string(failure.Kind),
			"error", failure.Err,
			"decision", res.Decision,
			"labels", res.Labels,
		)
		s.metrics.IncFallback(failure.Kind)
	}
	s.metrics.ObserveDecision(res.Source, res.Decision, time.Since(start))
	span.SetAttributes(
		attribute.String("screen.source", string(res.Source)),
		attribute.String("screen.decision", string(res.Decision)),
	)
	return res
}

func (s *Screen) classifyPrimary(ctx context.Context, text string) (Result, *DependencyFailure) {
	if s.primary == nil {
		return Result{}, &DependencyFailure{Kind: FailureNotConfigured}
	}
	if s.breaker != nil && !s.breaker.Allow() {
		return Result{}, &DependencyFailure{Kind: FailureCircuitOpen}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.primary.Classify(callCtx, text)
	if err == nil && callCtx.Err() != nil {
		err = &DependencyFailure{Kind: FailureTimeout, Err: callCtx.Err()}
	}
	if err != nil {
		if s.breaker != nil {
			if _, change := s.breaker.RecordFailure(); change.Opened {
				s.logger.WarnContext(ctx, "content screen circuit opened", "breaker", s.breaker.Name())
			}
		}
		var df *DependencyFailure
		if !errors.As(err, &df) {
			kind := FailureTransport
			if errors.Is(err, context.DeadlineExceeded) {
				kind = FailureTimeout
			}
			df = &DependencyFailure{Kind: kind, Err: err}
		}
		return Result{}, df
	}
	if s.breaker != nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "content screen circuit closed", "breaker", s.breaker.Name())
		}
	}
	if res.Source == "" {
		res.Source = SourceRemote
	}
	return res, nil
}
