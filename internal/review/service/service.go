// Package service runs mosque reviews. Reviews skip the screen and the
// confirmation ledger: they start pending and only a moderator decides.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"masjid/internal/lifecycle"
	mosquemodels "masjid/internal/mosque/models"
	"masjid/internal/review/models"
	"masjid/internal/sanitize"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/audit"
	"masjid/pkg/platform/sentinel"
	"masjid/pkg/platform/tx"
	"masjid/pkg/requestcontext"
)

var tracer = otel.Tracer("masjid/review")

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Store interface {
	Create(ctx context.Context, r *models.Review) error
	FindByID(ctx context.Context, id domain.ReviewID) (*models.Review, error)
	FindByIDForUpdate(ctx context.Context, id domain.ReviewID) (*models.Review, error)
	List(ctx context.Context, f models.ListFilter) ([]models.Review, error)
	SetStatus(ctx context.Context, id domain.ReviewID, status lifecycle.Status, at time.Time) error
	Delete(ctx context.Context, id domain.ReviewID) error
}

type MosqueReader interface {
	FindByID(ctx context.Context, id domain.MosqueID) (*mosquemodels.Mosque, error)
}

// Input is a review as submitted. Criteria arrive loosely typed.
type Input struct {
	Rating   int
	Criteria map[string]any
	Comment  *string
}

type Service struct {
	store   Store
	mosques MosqueReader
	tx      tx.Runner
	audit   audit.Store
	logger  *slog.Logger
}

type Option func(*Service)

func WithAudit(a audit.Store) Option {
	return func(s *Service) { s.audit = a }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, mosques MosqueReader, runner tx.Runner, opts ...Option) *Service {
	s := &Service{store: store, mosques: mosques, tx: runner}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create stores a pending review of an approved mosque. Guests may review.
func (s *Service) Create(ctx context.Context, p domain.Principal, mosqueID domain.MosqueID, in Input) (*models.Review, error) {
	ctx, span := tracer.Start(ctx, "review.Create")
	defer span.End()
	span.SetAttributes(attribute.Int64("mosque.id", int64(mosqueID)))

	if in.Rating < 1 || in.Rating > 5 {
		return nil, dErrors.New(dErrors.CodeValidation, "rating must be between 1 and 5")
	}
	if err := s.requireApprovedMosque(ctx, mosqueID); err != nil {
		return nil, err
	}
	r := &models.Review{
		MosqueID: mosqueID,
		Rating:   in.Rating,
		Criteria: sanitize.Criteria(in.Criteria),
		Comment:  sanitize.OptionalText(in.Comment, sanitize.MaxComment),
		Status:   lifecycle.StatusPending,
	}
	if p.IsAuthenticated() {
		uid := p.UserID
		r.UserID = &uid
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		r.CreatedAt, r.UpdatedAt = now, now
		if err := s.store.Create(ctx, r); err != nil {
			return wrapErr(err, "mosque not found")
		}
		return s.appendAudit(ctx, audit.NewEvent(ctx, audit.ActionReviewCreated, "review", int64(r.ID)).By(p))
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "review created", "review_id", r.ID, "mosque_id", mosqueID)
	return r, nil
}

// ListApproved is the public review listing of one mosque, newest first.
// Unlike mosque listings an out-of-range limit is an error.
func (s *Service) ListApproved(ctx context.Context, mosqueID domain.MosqueID, limit, offset int) ([]models.Review, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 100")
	}
	if offset < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "offset must be non-negative")
	}
	if err := s.requireApprovedMosque(ctx, mosqueID); err != nil {
		return nil, err
	}
	items, err := s.store.List(ctx, models.ListFilter{MosqueID: mosqueID, Status: lifecycle.StatusApproved, Limit: limit, Offset: offset})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviews")
	}
	return items, nil
}

// ListByStatus is the moderation queue; status defaults to pending.
func (s *Service) ListByStatus(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Review, error) {
	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return nil, err
	}
	if f.Offset < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "offset must be non-negative")
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Status == "" {
		f.Status = lifecycle.StatusPending
	}
	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviews")
	}
	return items, nil
}

func (s *Service) Approve(ctx context.Context, p domain.Principal, id domain.ReviewID) (*models.Review, error) {
	return s.decide(ctx, p, id, "review.Approve", lifecycle.Approve, audit.ActionReviewApproved)
}

// Reject follows the submission policy: rejecting an approved review is a
// conflict and rejecting a rejected one changes nothing.
func (s *Service) Reject(ctx context.Context, p domain.Principal, id domain.ReviewID) (*models.Review, error) {
	return s.decide(ctx, p, id, "review.Reject", lifecycle.Reject, audit.ActionReviewRejected)
}

func (s *Service) decide(ctx context.Context, p domain.Principal, id domain.ReviewID, span string,
	transition func(lifecycle.Status) (lifecycle.Transition, error), action audit.Action) (*models.Review, error) {
	ctx, sp := tracer.Start(ctx, span)
	defer sp.End()
	sp.SetAttributes(attribute.Int64("review.id", int64(id)))

	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return nil, err
	}
	var out *models.Review
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		r, err := s.store.FindByIDForUpdate(ctx, id)
		if err != nil {
			return wrapErr(err, "review not found")
		}
		tr, err := transition(r.Status)
		if err != nil {
			return err
		}
		out = r
		if tr.Noop {
			return nil
		}
		now := requestcontext.Now(ctx)
		if err := s.store.SetStatus(ctx, id, tr.To, now); err != nil {
			return wrapErr(err, "review not found")
		}
		out.Status, out.UpdatedAt = tr.To, now
		return s.appendAudit(ctx, audit.NewEvent(ctx, action, "review", int64(id)).By(p).WithDetail(string(tr.From)))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, p domain.Principal, id domain.ReviewID) error {
	ctx, span := tracer.Start(ctx, "review.Delete")
	defer span.End()

	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, id); err != nil {
			return wrapErr(err, "review not found")
		}
		return s.appendAudit(ctx, audit.NewEvent(ctx, audit.ActionReviewDeleted, "review", int64(id)).By(p))
	})
}

func (s *Service) requireApprovedMosque(ctx context.Context, id domain.MosqueID) error {
	m, err := s.mosques.FindByID(ctx, id)
	if err != nil {
		return wrapErr(err, "mosque not found")
	}
	if !m.Approved {
		return dErrors.New(dErrors.CodeNotFound, "mosque not found")
	}
	return nil
}

func (s *Service) appendAudit(ctx context.Context, ev audit.Event) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.Append(ctx, ev); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func wrapErr(err error, notFound string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "review store failure")
}
