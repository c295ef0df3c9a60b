package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"masjid/internal/lifecycle"
	"masjid/internal/mosque/cache"
	"masjid/internal/mosque/models"
	"masjid/internal/mosque/store"
	"masjid/internal/storage"
	submissionmodels "masjid/internal/submission/models"
	"masjid/pkg/domain"
	dErrors "masjid/pkg/domain-errors"
	auditmemory "masjid/pkg/platform/audit/store/memory"
)

var (
	moderator = domain.Principal{UserID: 90, Role: domain.RoleModerator}
	admin     = domain.Principal{UserID: 91, Role: domain.RoleAdmin}
	member    = domain.Principal{UserID: 5, Role: domain.RoleAuthenticated}
)

type MosqueServiceSuite struct {
	suite.Suite
	ctx     context.Context
	mem     *storage.Memory
	audit   *auditmemory.InMemoryStore
	service *Service
}

func TestMosqueServiceSuite(t *testing.T) {
	suite.Run(t, new(MosqueServiceSuite))
}

func (s *MosqueServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.mem = storage.NewMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(store.NewInMemory(s.mem), s.mem,
		WithCache(cache.NewLocal(time.Minute)),
		WithAudit(s.audit),
	)
}

func ptr[T any](v T) *T { return &v }

func (s *MosqueServiceSuite) seed(name, governorate string, lat, lng float64, approved bool) domain.MosqueID {
	m := &models.Mosque{
		Details:  models.Canonical(models.Details{ArabicName: name, Governorate: governorate, Latitude: ptr(lat), Longitude: ptr(lng)}),
		Approved: approved,
	}
	require.NoError(s.T(), store.NewInMemory(s.mem).Create(s.ctx, m))
	return m.ID
}

func (s *MosqueServiceSuite) TestListOnlyApprovedAndFilters() {
	s.seed("Zitouna", "Tunis", 36.79, 10.17, true)
	s.seed("Okba", "Kairouan", 35.68, 10.10, true)
	s.seed("Hidden", "Tunis", 36.80, 10.18, false)

	all, err := s.service.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	tunis, err := s.service.List(s.ctx, models.ListFilter{Governorate: "tun"})
	s.Require().NoError(err)
	s.Require().Len(tunis, 1)
	s.Equal("Zitouna", tunis[0].ArabicName)

	byName, err := s.service.List(s.ctx, models.ListFilter{Query: "OKB"})
	s.Require().NoError(err)
	s.Len(byName, 1)
}

func (s *MosqueServiceSuite) TestListPagination() {
	for i := 0; i < 130; i++ {
		s.seed(fmt.Sprintf("m%d", i), "Sfax", 0, 0, true)
	}
	items, err := s.service.List(s.ctx, models.ListFilter{Limit: 500})
	s.Require().NoError(err)
	s.Len(items, MaxListLimit)

	items, err = s.service.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Len(items, DefaultListLimit)

	items, err = s.service.List(s.ctx, models.ListFilter{Offset: 120})
	s.Require().NoError(err)
	s.Len(items, 10)

	_, err = s.service.List(s.ctx, models.ListFilter{Offset: -1})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *MosqueServiceSuite) TestGetHidesUnapproved() {
	visible := s.seed("A", "Tunis", 0, 0, true)
	hidden := s.seed("B", "Tunis", 0, 0, false)

	m, err := s.service.Get(s.ctx, visible)
	s.Require().NoError(err)
	s.Equal("A", m.ArabicName)

	_, err = s.service.Get(s.ctx, hidden)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.Get(s.ctx, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *MosqueServiceSuite) TestNearbyOrdersByDistanceWithinRadius() {
	s.seed("far", "Tunis", 36.90, 10.30, true)   // ~15 km
	s.seed("near", "Tunis", 36.801, 10.181, true) // ~0.15 km
	s.seed("mid", "Tunis", 36.82, 10.20, true)    // ~2.9 km

	res, err := s.service.Nearby(s.ctx, models.NearbyQuery{Lat: 36.80, Lng: 10.18})
	s.Require().NoError(err)
	s.Require().Len(res, 2)
	s.Equal("near", res[0].ArabicName)
	s.Equal("mid", res[1].ArabicName)
	s.Less(res[0].DistanceKm, res[1].DistanceKm)

	res, err = s.service.Nearby(s.ctx, models.NearbyQuery{Lat: 36.80, Lng: 10.18, RadiusKm: 1000})
	s.Require().NoError(err)
	s.Len(res, 3, "radius is capped at 50 km")

	_, err = s.service.Nearby(s.ctx, models.NearbyQuery{Lat: 91, Lng: 0})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *MosqueServiceSuite) TestDeleteRequiresModerator() {
	id := s.seed("A", "Tunis", 0, 0, true)
	err := s.service.Delete(s.ctx, member, id)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	err = s.service.Delete(s.ctx, domain.Guest, id)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *MosqueServiceSuite) TestDeleteRefusedWithPendingEdits() {
	id := s.seed("A", "Tunis", 0, 0, true)
	s.addEdit(id, lifecycle.StatusPendingApproval)

	err := s.service.Delete(s.ctx, moderator, id)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.Get(s.ctx, id)
	s.NoError(err)
}

func (s *MosqueServiceSuite) TestDeleteCascades() {
	id := s.seed("A", "Tunis", 0, 0, true)
	editID := s.addEdit(id, lifecycle.StatusApproved)

	_, err := s.service.Get(s.ctx, id) // warm the cache
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, moderator, id))

	_, err = s.service.Get(s.ctx, id)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "cache must be invalidated after commit")

	s.Require().NoError(s.mem.Do(s.ctx, func(d *storage.Dataset) error {
		s.NotContains(d.Edits, editID)
		s.Empty(d.EditConfirmations)
		return nil
	}))
	events, _ := s.audit.ListBySubject(s.ctx, "mosque", int64(id))
	s.Len(events, 1)
}

func (s *MosqueServiceSuite) TestImportCanonicalizes() {
	ids, err := s.service.Import(s.ctx, admin, []models.Details{
		{ArabicName: " جامع ", Facilities: map[string]bool{"wudu": true, "spa": true}},
	})
	s.Require().NoError(err)
	s.Require().Len(ids, 1)

	m, err := s.service.Get(s.ctx, ids[0])
	s.Require().NoError(err)
	s.Equal("جامع", m.ArabicName)
	s.Equal(models.UnknownGovernorate, m.Governorate)
	s.Equal(map[string]bool{"wudu": true}, m.Facilities)
}

func (s *MosqueServiceSuite) TestImportIsAllOrNothing() {
	_, err := s.service.Import(s.ctx, admin, []models.Details{
		{ArabicName: "ok"},
		{ArabicName: "   "},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	items, err := s.service.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Empty(items)

	_, err = s.service.Import(s.ctx, moderator, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *MosqueServiceSuite) addEdit(mosqueID domain.MosqueID, status lifecycle.Status) domain.EditID {
	var id domain.EditID
	s.Require().NoError(s.mem.Do(s.ctx, func(d *storage.Dataset) error {
		id = domain.EditID(d.NextID())
		d.Edits[id] = submissionmodels.Edit{ID: id, MosqueID: mosqueID, Status: status}
		d.EditConfirmations[storage.ConfirmationKey{SubmissionID: int64(id), UserID: 1}] = time.Now()
		return nil
	}))
	return id
}

func TestHaversine(t *testing.T) {
	// Tunis to Sfax, roughly 230 km.
	d := haversineKm(36.8065, 10.1815, 34.7406, 10.7603)
	assert.InDelta(t, 236, d, 10)
	assert.InDelta(t, 0, haversineKm(1, 1, 1, 1), 1e-9)
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	box := boundingBox(36.8, 10.18, 5)
	assert.True(t, box.Contains(36.8+5/111.0-1e-6, 10.18))
	assert.False(t, box.Contains(36.8+5/111.0+1e-3, 10.18))
}
