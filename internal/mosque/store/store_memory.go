package store

import (
	"context"
	"sort"
	"strings"

	"masjid/internal/lifecycle"
	"masjid/internal/mosque/models"
	"masjid/internal/storage"
	"masjid/pkg/domain"
	"masjid/pkg/platform/sentinel"
)

// InMemoryStore keeps mosques in the shared in-memory dataset.
type InMemoryStore struct {
	mem *storage.Memory
}

func NewInMemory(mem *storage.Memory) *InMemoryStore {
	return &InMemoryStore{mem: mem}
}

func (s *InMemoryStore) Create(ctx context.Context, m *models.Mosque) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		if m.ID == 0 {
			m.ID = domain.MosqueID(d.NextID())
		} else if _, exists := d.Mosques[m.ID]; exists {
			return sentinel.ErrDuplicate
		}
		d.Mosques[m.ID] = m.Clone()
		return nil
	})
}

func (s *InMemoryStore) FindByID(ctx context.Context, id domain.MosqueID) (*models.Mosque, error) {
	var out *models.Mosque
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		m, ok := d.Mosques[id]
		if !ok {
			return sentinel.ErrNotFound
		}
		c := m.Clone()
		out = &c
		return nil
	})
	return out, err
}

// FindByIDForUpdate is FindByID; the dataset lock already serializes writers.
func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, id domain.MosqueID) (*models.Mosque, error) {
	return s.FindByID(ctx, id)
}

func (s *InMemoryStore) Update(ctx context.Context, m *models.Mosque) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		if _, ok := d.Mosques[m.ID]; !ok {
			return sentinel.ErrNotFound
		}
		d.Mosques[m.ID] = m.Clone()
		return nil
	})
}

// Delete removes the mosque together with its edits, their confirmations and
// its reviews. Suggestions that produced it keep their row and lose the link.
func (s *InMemoryStore) Delete(ctx context.Context, id domain.MosqueID) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		if _, ok := d.Mosques[id]; !ok {
			return sentinel.ErrNotFound
		}
		delete(d.Mosques, id)
		for editID, e := range d.Edits {
			if e.MosqueID != id {
				continue
			}
			delete(d.Edits, editID)
			for key := range d.EditConfirmations {
				if key.SubmissionID == int64(editID) {
					delete(d.EditConfirmations, key)
				}
			}
		}
		for reviewID, r := range d.Reviews {
			if r.MosqueID == id {
				delete(d.Reviews, reviewID)
			}
		}
		for sid, sug := range d.Suggestions {
			if sug.ApprovedMosqueID != nil && *sug.ApprovedMosqueID == id {
				sug.ApprovedMosqueID = nil
				d.Suggestions[sid] = sug
			}
		}
		return nil
	})
}

func (s *InMemoryStore) CountPendingEdits(ctx context.Context, id domain.MosqueID) (int, error) {
	var n int
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		for _, e := range d.Edits {
			if e.MosqueID == id && e.Status == lifecycle.StatusPendingApproval {
				n++
			}
		}
		return nil
	})
	return n, err
}

// List returns approved mosques matching the filter, ordered by id.
func (s *InMemoryStore) List(ctx context.Context, f models.ListFilter) ([]models.Mosque, error) {
	var out []models.Mosque
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		for _, m := range d.Mosques {
			if m.Approved && matches(m, f) {
				out = append(out, m.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), nil
}

func (s *InMemoryStore) ListInBox(ctx context.Context, box models.BoundingBox) ([]models.Mosque, error) {
	var out []models.Mosque
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		for _, m := range d.Mosques {
			if !m.Approved || m.Latitude == nil || m.Longitude == nil {
				continue
			}
			if box.Contains(*m.Latitude, *m.Longitude) {
				out = append(out, m.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func matches(m models.Mosque, f models.ListFilter) bool {
	if f.Governorate != "" && !containsFold(m.Governorate, f.Governorate) {
		return false
	}
	if f.City != "" && (m.City == nil || !containsFold(*m.City, f.City)) {
		return false
	}
	if f.Type != "" && (m.Type == nil || *m.Type != f.Type) {
		return false
	}
	if f.Query != "" && !containsFold(m.ArabicName, f.Query) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
