// Package service runs the community submission lifecycle: screening on
// create, the confirmation ledger, threshold promotion and moderator
// decisions. Every state change happens inside one unit of work together
// with its audit event.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"masjid/internal/lifecycle"
	mosquemodels "masjid/internal/mosque/models"
	"masjid/internal/screen"
	"masjid/internal/submission/metrics"
	"masjid/internal/submission/models"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/audit"
	"masjid/pkg/platform/sentinel"
	"masjid/pkg/platform/tx"
	"masjid/pkg/requestcontext"
)

var tracer = otel.Tracer("masjid/submission")

const (
	DefaultThreshold = 3
	DefaultListLimit = 20
	MaxListLimit     = 100

	triggerThreshold = "threshold"
	triggerModerator = "moderator"
)

type Store interface {
	CreateSuggestion(ctx context.Context, s *models.Suggestion) error
	FindSuggestion(ctx context.Context, id domain.SuggestionID) (*models.Suggestion, error)
	ListSuggestions(ctx context.Context, f models.ListFilter) ([]models.Suggestion, error)
	MarkSuggestionApproved(ctx context.Context, id domain.SuggestionID, mosqueID domain.MosqueID, at time.Time) error

	CreateEdit(ctx context.Context, e *models.Edit) error
	FindEdit(ctx context.Context, id domain.EditID) (*models.Edit, error)
	ListEdits(ctx context.Context, f models.ListFilter) ([]models.Edit, error)

	LockState(ctx context.Context, kind models.Kind, id int64) (models.State, error)
	InsertConfirmation(ctx context.Context, kind models.Kind, id int64, userID domain.UserID, at time.Time) error
	IncrementConfirmations(ctx context.Context, kind models.Kind, id int64, at time.Time) (int, error)
	SetStatus(ctx context.Context, kind models.Kind, id int64, status lifecycle.Status, at time.Time) error
	Delete(ctx context.Context, kind models.Kind, id int64) error
}

// Screener classifies submission text. It absorbs its own failures.
type Screener interface {
	Classify(ctx context.Context, text string) screen.Result
}

type MosqueReader interface {
	FindByID(ctx context.Context, id domain.MosqueID) (*mosquemodels.Mosque, error)
	FindByIDForUpdate(ctx context.Context, id domain.MosqueID) (*mosquemodels.Mosque, error)
}

type Promoter interface {
	PromoteSuggestion(ctx context.Context, s *models.Suggestion, now time.Time) (*mosquemodels.Mosque, error)
	ApplyEdit(ctx context.Context, ed *models.Edit, now time.Time) (*mosquemodels.Mosque, error)
}

// Invalidator drops cached public reads of a mosque after it changes.
type Invalidator interface {
	Invalidate(ctx context.Context, id domain.MosqueID)
}

type Service struct {
	store       Store
	mosques     MosqueReader
	promoter    Promoter
	screen      Screener
	tx          tx.Runner
	audit       audit.Store
	invalidator Invalidator
	metrics     *metrics.Metrics
	logger      *slog.Logger

	threshold      int
	allowAnonymous bool
}

type Option func(*Service)

// WithThreshold sets how many confirmations promote a submission.
func WithThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// WithAnonymousSubmissions lets guests create new-entry suggestions.
func WithAnonymousSubmissions(allow bool) Option {
	return func(s *Service) { s.allowAnonymous = allow }
}

func WithAudit(a audit.Store) Option {
	return func(s *Service) { s.audit = a }
}

func WithInvalidator(i Invalidator) Option {
	return func(s *Service) { s.invalidator = i }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, mosques MosqueReader, promoter Promoter, screener Screener, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:     store,
		mosques:   mosques,
		promoter:  promoter,
		screen:    screener,
		tx:        runner,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CreateSuggestion screens and stores a new-entry proposal. A screen verdict
// of rejected is stored, not returned as an error.
func (s *Service) CreateSuggestion(ctx context.Context, p domain.Principal, in models.SuggestionInput) (*models.Suggestion, error) {
	ctx, span := tracer.Start(ctx, "submission.CreateSuggestion")
	defer span.End()
	defer s.observe("create_suggestion", time.Now())

	if !s.allowAnonymous {
		if err := domain.Require(p, domain.RoleAuthenticated); err != nil {
			return nil, err
		}
	}
	details, err := in.Details()
	if err != nil {
		return nil, err
	}
	sug := &models.Suggestion{Details: details, Status: lifecycle.StatusPendingScreen}
	if p.IsAuthenticated() {
		uid := p.UserID
		sug.CreatedByUserID = &uid
	}

	verdict := s.screen.Classify(ctx, sug.ScreenText())
	sug.Status = lifecycle.AfterScreen(verdict.Valid())
	sug.ScreenLabels = verdict.Labels
	sug.ScreenReason = verdict.Reason

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		sug.CreatedAt, sug.UpdatedAt = now, now
		if err := s.store.CreateSuggestion(ctx, sug); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create suggestion")
		}
		return s.appendAudit(ctx, audit.NewEvent(ctx, audit.ActionSuggestionCreated, string(models.KindNewEntry), int64(sug.ID)).
			By(p).WithDetail(string(sug.Status)))
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("submission.id", int64(sug.ID)), attribute.String("submission.status", string(sug.Status)))
	s.metrics.IncrementCreated(string(models.KindNewEntry), string(sug.Status))
	s.logger.InfoContext(ctx, "suggestion created",
		"suggestion_id", sug.ID,
		"status", sug.Status,
		"screen_source", verdict.Source,
	)
	return sug, nil
}

// CreateEdit screens and stores a patch against an approved mosque. Unknown
// keys are dropped; a patch with nothing left is a validation error.
func (s *Service) CreateEdit(ctx context.Context, p domain.Principal, mosqueID domain.MosqueID, raw map[string]any) (*models.Edit, error) {
	ctx, span := tracer.Start(ctx, "submission.CreateEdit")
	defer span.End()
	defer s.observe("create_edit", time.Now())
	span.SetAttributes(attribute.Int64("mosque.id", int64(mosqueID)))

	if err := domain.Require(p, domain.RoleAuthenticated); err != nil {
		return nil, err
	}
	patch := models.SanitizePatch(raw)
	if patch.Empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "patch contains no editable fields")
	}
	target, err := s.mosques.FindByID(ctx, mosqueID)
	if err != nil {
		return nil, wrapMosqueErr(err)
	}
	if !target.Approved {
		return nil, dErrors.New(dErrors.CodeNotFound, "mosque not found")
	}

	verdict := s.screen.Classify(ctx, patch.ScreenText())
	uid := p.UserID
	ed := &models.Edit{
		MosqueID:        mosqueID,
		Patch:           patch,
		Status:          lifecycle.AfterScreen(verdict.Valid()),
		CreatedByUserID: &uid,
		ScreenLabels:    verdict.Labels,
		ScreenReason:    verdict.Reason,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.mosques.FindByIDForUpdate(ctx, mosqueID); err != nil {
			return wrapMosqueErr(err)
		}
		now := requestcontext.Now(ctx)
		ed.CreatedAt, ed.UpdatedAt = now, now
		if err := s.store.CreateEdit(ctx, ed); err != nil {
			return wrapMosqueErr(err)
		}
		return s.appendAudit(ctx, audit.NewEvent(ctx, audit.ActionEditCreated, string(models.KindEdit), int64(ed.ID)).
			By(p).WithDetail(string(ed.Status)))
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("submission.id", int64(ed.ID)), attribute.String("submission.status", string(ed.Status)))
	s.metrics.IncrementCreated(string(models.KindEdit), string(ed.Status))
	s.logger.InfoContext(ctx, "edit created",
		"edit_id", ed.ID,
		"mosque_id", mosqueID,
		"status", ed.Status,
		"screen_source", verdict.Source,
	)
	return ed, nil
}

// Confirm records one vote from p. The insert, the count increment and a
// threshold promotion commit together or not at all.
func (s *Service) Confirm(ctx context.Context, p domain.Principal, kind models.Kind, id int64) (*models.Outcome, error) {
	ctx, span := startSpan(ctx, "submission.Confirm", kind, id)
	defer span.End()
	defer s.observe("confirm", time.Now())

	if err := domain.Require(p, domain.RoleAuthenticated); err != nil {
		return nil, err
	}
	var out *models.Outcome
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		st, err := s.store.LockState(ctx, kind, id)
		if err != nil {
			return wrapSubmissionErr(kind, err)
		}
		if err := lifecycle.CanConfirm(st.Status); err != nil {
			return err
		}
		if err := s.store.InsertConfirmation(ctx, kind, id, p.UserID, now); err != nil {
			if errors.Is(err, sentinel.ErrDuplicate) {
				return dErrors.New(dErrors.CodeDuplicateConfirmation, "you already confirmed this submission")
			}
			return wrapSubmissionErr(kind, err)
		}
		count, err := s.store.IncrementConfirmations(ctx, kind, id, now)
		if err != nil {
			return wrapSubmissionErr(kind, err)
		}
		if err := s.appendAudit(ctx, audit.NewEvent(ctx, actionsFor(kind).confirmed, string(kind), id).By(p)); err != nil {
			return err
		}
		out = &models.Outcome{Kind: kind, ID: id, Status: st.Status, ConfirmationsCount: count}
		if !lifecycle.ReachedThreshold(count, s.threshold) {
			return nil
		}
		mosqueID, err := s.promote(ctx, p, kind, id, now, triggerThreshold)
		if err != nil {
			return err
		}
		out.Status = lifecycle.StatusApproved
		out.Promoted = true
		out.MosqueID = &mosqueID
		return nil
	})
	if err != nil {
		switch {
		case dErrors.HasCode(err, dErrors.CodeDuplicateConfirmation):
			s.metrics.IncrementConfirmation(string(kind), "duplicate")
			s.logger.InfoContext(ctx, "duplicate confirmation", "kind", kind, "submission_id", id, "user_id", p.UserID)
		case dErrors.HasCode(err, dErrors.CodeConflict):
			s.metrics.IncrementConfirmation(string(kind), "conflict")
		}
		return nil, err
	}
	s.metrics.IncrementConfirmation(string(kind), "accepted")
	if out.Promoted {
		s.metrics.IncrementPromotion(string(kind), triggerThreshold)
		s.logger.InfoContext(ctx, "submission promoted",
			"kind", kind,
			"submission_id", id,
			"mosque_id", *out.MosqueID,
			"trigger", triggerThreshold,
		)
	}
	span.SetAttributes(attribute.Int("submission.confirmations", out.ConfirmationsCount), attribute.Bool("submission.promoted", out.Promoted))
	return out, nil
}

// Approve promotes a pending submission on a moderator's authority.
// Approving an approved submission changes nothing.
func (s *Service) Approve(ctx context.Context, p domain.Principal, kind models.Kind, id int64) (*models.Outcome, error) {
	ctx, span := startSpan(ctx, "submission.Approve", kind, id)
	defer span.End()
	defer s.observe("approve", time.Now())

	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return nil, err
	}
	var out *models.Outcome
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		st, err := s.store.LockState(ctx, kind, id)
		if err != nil {
			return wrapSubmissionErr(kind, err)
		}
		tr, err := lifecycle.Approve(st.Status)
		if err != nil {
			return err
		}
		out = &models.Outcome{Kind: kind, ID: id, Status: tr.To, ConfirmationsCount: st.ConfirmationsCount}
		if tr.Noop {
			out.MosqueID, err = s.approvedMosque(ctx, kind, id)
			return err
		}
		mosqueID, err := s.promote(ctx, p, kind, id, requestcontext.Now(ctx), triggerModerator)
		if err != nil {
			return err
		}
		out.Promoted = true
		out.MosqueID = &mosqueID
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Promoted {
		s.metrics.IncrementPromotion(string(kind), triggerModerator)
		s.logger.InfoContext(ctx, "submission approved",
			"kind", kind,
			"submission_id", id,
			"mosque_id", *out.MosqueID,
			"actor_id", p.UserID,
		)
	}
	return out, nil
}

// Reject closes a submission. Rejecting a rejected submission changes
// nothing; rejecting an approved one is a conflict.
func (s *Service) Reject(ctx context.Context, p domain.Principal, kind models.Kind, id int64) (*models.Outcome, error) {
	ctx, span := startSpan(ctx, "submission.Reject", kind, id)
	defer span.End()
	defer s.observe("reject", time.Now())

	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return nil, err
	}
	var out *models.Outcome
	var changed bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		st, err := s.store.LockState(ctx, kind, id)
		if err != nil {
			return wrapSubmissionErr(kind, err)
		}
		tr, err := lifecycle.Reject(st.Status)
		if err != nil {
			return err
		}
		out = &models.Outcome{Kind: kind, ID: id, Status: tr.To, ConfirmationsCount: st.ConfirmationsCount}
		if tr.Noop {
			return nil
		}
		if err := s.store.SetStatus(ctx, kind, id, tr.To, requestcontext.Now(ctx)); err != nil {
			return wrapSubmissionErr(kind, err)
		}
		changed = true
		return s.appendAudit(ctx, audit.NewEvent(ctx, actionsFor(kind).rejected, string(kind), id).
			By(p).WithDetail(string(tr.From)))
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.metrics.IncrementRejection(string(kind))
		s.logger.InfoContext(ctx, "submission rejected", "kind", kind, "submission_id", id, "actor_id", p.UserID)
	}
	return out, nil
}

// Delete removes a submission and its confirmations from any state.
func (s *Service) Delete(ctx context.Context, p domain.Principal, kind models.Kind, id int64) error {
	ctx, span := startSpan(ctx, "submission.Delete", kind, id)
	defer span.End()

	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return err
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, kind, id); err != nil {
			return wrapSubmissionErr(kind, err)
		}
		return s.appendAudit(ctx, audit.NewEvent(ctx, actionsFor(kind).deleted, string(kind), id).By(p))
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "submission deleted", "kind", kind, "submission_id", id, "actor_id", p.UserID)
	return nil
}

// MySuggestions lists the suggestions p created, newest first.
func (s *Service) MySuggestions(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Suggestion, error) {
	if err := domain.Require(p, domain.RoleAuthenticated); err != nil {
		return nil, err
	}
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	uid := p.UserID
	f.CreatedBy = &uid
	items, err := s.store.ListSuggestions(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list suggestions")
	}
	return items, nil
}

func (s *Service) MyEdits(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Edit, error) {
	if err := domain.Require(p, domain.RoleAuthenticated); err != nil {
		return nil, err
	}
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	uid := p.UserID
	f.CreatedBy = &uid
	items, err := s.store.ListEdits(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list edits")
	}
	return items, nil
}

// SuggestionsByStatus is the moderation queue. The status defaults to
// pending_approval.
func (s *Service) SuggestionsByStatus(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Suggestion, error) {
	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return nil, err
	}
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	if f.Status == "" {
		f.Status = lifecycle.StatusPendingApproval
	}
	items, err := s.store.ListSuggestions(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list suggestions")
	}
	return items, nil
}

func (s *Service) EditsByStatus(ctx context.Context, p domain.Principal, f models.ListFilter) ([]models.Edit, error) {
	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return nil, err
	}
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	if f.Status == "" {
		f.Status = lifecycle.StatusPendingApproval
	}
	items, err := s.store.ListEdits(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list edits")
	}
	return items, nil
}

// promote moves the submission to approved and writes the canonical change.
// It must run inside the caller's unit of work.
func (s *Service) promote(ctx context.Context, p domain.Principal, kind models.Kind, id int64, now time.Time, trigger string) (domain.MosqueID, error) {
	var mosque *mosquemodels.Mosque
	var mosqueAction audit.Action
	switch kind {
	case models.KindNewEntry:
		sug, err := s.store.FindSuggestion(ctx, domain.SuggestionID(id))
		if err != nil {
			return 0, wrapSubmissionErr(kind, err)
		}
		if mosque, err = s.promoter.PromoteSuggestion(ctx, sug, now); err != nil {
			return 0, err
		}
		if err := s.store.MarkSuggestionApproved(ctx, sug.ID, mosque.ID, now); err != nil {
			return 0, wrapSubmissionErr(kind, err)
		}
		mosqueAction = audit.ActionMosqueCreated
	case models.KindEdit:
		ed, err := s.store.FindEdit(ctx, domain.EditID(id))
		if err != nil {
			return 0, wrapSubmissionErr(kind, err)
		}
		if mosque, err = s.promoter.ApplyEdit(ctx, ed, now); err != nil {
			return 0, err
		}
		if err := s.store.SetStatus(ctx, kind, id, lifecycle.StatusApproved, now); err != nil {
			return 0, wrapSubmissionErr(kind, err)
		}
		mosqueAction = audit.ActionMosqueUpdated
		mosqueID := mosque.ID
		if s.invalidator != nil {
			tx.AfterCommit(ctx, func(ctx context.Context) { s.invalidator.Invalidate(ctx, mosqueID) })
		}
	default:
		return 0, wrapSubmissionErr(kind, sentinel.ErrInvalidState)
	}

	if err := s.appendAudit(ctx, audit.NewEvent(ctx, actionsFor(kind).approved, string(kind), id).By(p).WithDetail(trigger)); err != nil {
		return 0, err
	}
	if err := s.appendAudit(ctx, audit.NewEvent(ctx, mosqueAction, "mosque", int64(mosque.ID)).By(p).WithDetail(string(kind))); err != nil {
		return 0, err
	}
	return mosque.ID, nil
}

func (s *Service) approvedMosque(ctx context.Context, kind models.Kind, id int64) (*domain.MosqueID, error) {
	switch kind {
	case models.KindNewEntry:
		sug, err := s.store.FindSuggestion(ctx, domain.SuggestionID(id))
		if err != nil {
			return nil, wrapSubmissionErr(kind, err)
		}
		return sug.ApprovedMosqueID, nil
	case models.KindEdit:
		ed, err := s.store.FindEdit(ctx, domain.EditID(id))
		if err != nil {
			return nil, wrapSubmissionErr(kind, err)
		}
		mosqueID := ed.MosqueID
		return &mosqueID, nil
	}
	return nil, wrapSubmissionErr(kind, sentinel.ErrInvalidState)
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

func (s *Service) observe(operation string, start time.Time) {
	s.metrics.ObserveLatency(operation, time.Since(start))
}

func startSpan(ctx context.Context, name string, kind models.Kind, id int64) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("submission.kind", string(kind)),
		attribute.Int64("submission.id", id),
	))
}

func normalizeFilter(f models.ListFilter) (models.ListFilter, error) {
	if f.Offset < 0 {
		return f, dErrors.New(dErrors.CodeValidation, "offset must be non-negative")
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return f, nil
}

type kindActions struct {
	confirmed audit.Action
	approved  audit.Action
	rejected  audit.Action
	deleted   audit.Action
}

func actionsFor(kind models.Kind) kindActions {
	if kind == models.KindEdit {
		return kindActions{audit.ActionEditConfirmed, audit.ActionEditApproved, audit.ActionEditRejected, audit.ActionEditDeleted}
	}
	return kindActions{audit.ActionSuggestionConfirmed, audit.ActionSuggestionApproved, audit.ActionSuggestionRejected, audit.ActionSuggestionDeleted}
}

func wrapSubmissionErr(kind models.Kind, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, string(kind)+" not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeBadRequest, "unknown submission kind")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "submission store failure")
}

func wrapMosqueErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "mosque not found")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "mosque store failure")
}
