package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"masjid/internal/mosque/cache"
	"masjid/internal/mosque/models"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	"masjid/pkg/platform/audit"
	"masjid/pkg/platform/sentinel"
	"masjid/pkg/platform/tx"
	"masjid/pkg/requestcontext"
)

var tracer = otel.Tracer("masjid/mosque")

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	DefaultRadiusKm = 5.0
	MaxRadiusKm     = 50.0
	DefaultNearby   = 50
)

type Store interface {
	Create(ctx context.Context, m *models.Mosque) error
	FindByID(ctx context.Context, id domain.MosqueID) (*models.Mosque, error)
	FindByIDForUpdate(ctx context.Context, id domain.MosqueID) (*models.Mosque, error)
	Update(ctx context.Context, m *models.Mosque) error
	Delete(ctx context.Context, id domain.MosqueID) error
	CountPendingEdits(ctx context.Context, id domain.MosqueID) (int, error)
	List(ctx context.Context, f models.ListFilter) ([]models.Mosque, error)
	ListInBox(ctx context.Context, box models.BoundingBox) ([]models.Mosque, error)
}

// Service serves the public directory and the privileged record operations.
type Service struct {
	store  Store
	tx     tx.Runner
	cache  cache.Cache
	audit  audit.Store
	logger *slog.Logger
}

type Option func(*Service)

func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithAudit(a audit.Store) Option {
	return func(s *Service) { s.audit = a }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, runner tx.Runner, opts ...Option) *Service {
	s := &Service{store: store, tx: runner}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// List returns approved mosques. Limit defaults to 20 and is capped at 100.
func (s *Service) List(ctx context.Context, f models.ListFilter) ([]models.Mosque, error) {
	if f.Offset < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "offset must be non-negative")
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list mosques")
	}
	return items, nil
}

// Get returns one approved mosque.
func (s *Service) Get(ctx context.Context, id domain.MosqueID) (*models.Mosque, error) {
	if s.cache != nil {
		if m, ok := s.cache.Get(ctx, id); ok {
			return m, nil
		}
	}
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapMosqueErr(err)
	}
	if !m.Approved {
		return nil, dErrors.New(dErrors.CodeNotFound, "mosque not found")
	}
	if s.cache != nil {
		s.cache.Set(ctx, *m)
	}
	return m, nil
}

// Nearby returns approved mosques within the radius, nearest first.
func (s *Service) Nearby(ctx context.Context, q models.NearbyQuery) ([]models.NearbyResult, error) {
	if math.IsNaN(q.Lat) || q.Lat < -90 || q.Lat > 90 {
		return nil, dErrors.New(dErrors.CodeValidation, "lat must be between -90 and 90")
	}
	if math.IsNaN(q.Lng) || q.Lng < -180 || q.Lng > 180 {
		return nil, dErrors.New(dErrors.CodeValidation, "lng must be between -180 and 180")
	}
	if math.IsNaN(q.RadiusKm) || q.RadiusKm < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "radius must be positive")
	}
	if q.RadiusKm == 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	q.RadiusKm = math.Min(q.RadiusKm, MaxRadiusKm)
	if q.Limit <= 0 || q.Limit > MaxListLimit {
		q.Limit = DefaultNearby
	}

	candidates, err := s.store.ListInBox(ctx, boundingBox(q.Lat, q.Lng, q.RadiusKm))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search mosques")
	}

	out := make([]models.NearbyResult, 0, len(candidates))
	for _, m := range candidates {
		if m.Latitude == nil || m.Longitude == nil {
			continue
		}
		d := haversineKm(q.Lat, q.Lng, *m.Latitude, *m.Longitude)
		if d <= q.RadiusKm {
			out = append(out, models.NearbyResult{Mosque: m, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Delete removes a mosque and everything hanging off it. A mosque with edits
// still awaiting confirmation cannot be deleted.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id domain.MosqueID) error {
	ctx, span := tracer.Start(ctx, "mosque.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("mosque.id", int64(id)))

	if err := domain.Require(p, domain.RoleModerator); err != nil {
		return err
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.FindByIDForUpdate(ctx, id); err != nil {
			return wrapMosqueErr(err)
		}
		pending, err := s.store.CountPendingEdits(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check pending edits")
		}
		if pending > 0 {
			return dErrors.New(dErrors.CodeConflict, "mosque has pending edit suggestions")
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return wrapMosqueErr(err)
		}
		if err := s.appendAudit(ctx, audit.NewEvent(ctx, audit.ActionMosqueDeleted, "mosque", int64(id)).By(p)); err != nil {
			return err
		}
		tx.AfterCommit(ctx, func(ctx context.Context) { s.Invalidate(ctx, id) })
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "mosque deleted", "mosque_id", id, "actor_id", p.UserID)
	return nil
}

// Import inserts trusted, approved records after canonicalizing them.
func (s *Service) Import(ctx context.Context, p domain.Principal, records []models.Details) ([]domain.MosqueID, error) {
	ctx, span := tracer.Start(ctx, "mosque.Import")
	defer span.End()
	span.SetAttributes(attribute.Int("mosque.count", len(records)))

	if err := domain.Require(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	ids := make([]domain.MosqueID, 0, len(records))
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		for i, d := range records {
			m := &models.Mosque{
				Details:   models.Canonical(d),
				Approved:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if m.ArabicName == "" {
				return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("record %d: arabic_name is required", i))
			}
			if err := s.store.Create(ctx, m); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to import mosque")
			}
			if err := s.appendAudit(ctx, audit.NewEvent(ctx, audit.ActionMosqueImported, "mosque", int64(m.ID)).By(p)); err != nil {
				return err
			}
			ids = append(ids, m.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Invalidate drops a cached record.
func (s *Service) Invalidate(ctx context.Context, id domain.MosqueID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
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
