package store

import (
	"context"
	"sort"
	"time"

	"masjid/internal/lifecycle"
	"masjid/internal/review/models"
	"masjid/internal/storage"
	"masjid/pkg/domain"
	"masjid/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mem *storage.Memory
}

func NewInMemory(mem *storage.Memory) *InMemoryStore {
	return &InMemoryStore{mem: mem}
}

func (s *InMemoryStore) Create(ctx context.Context, r *models.Review) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		if _, ok := d.Mosques[r.MosqueID]; !ok {
			return sentinel.ErrNotFound
		}
		r.ID = domain.ReviewID(d.NextID())
		d.Reviews[r.ID] = r.Clone()
		return nil
	})
}

// FindByID also serves FindByIDForUpdate: the dataset lock held by the
// surrounding transaction already serializes writers.
func (s *InMemoryStore) FindByID(ctx context.Context, id domain.ReviewID) (*models.Review, error) {
	var out *models.Review
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		r, ok := d.Reviews[id]
		if !ok {
			return sentinel.ErrNotFound
		}
		c := r.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (s *InMemoryStore) FindByIDForUpdate(ctx context.Context, id domain.ReviewID) (*models.Review, error) {
	return s.FindByID(ctx, id)
}

func (s *InMemoryStore) List(ctx context.Context, f models.ListFilter) ([]models.Review, error) {
	var out []models.Review
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		for _, r := range d.Reviews {
			if f.MosqueID != 0 && r.MosqueID != f.MosqueID {
				continue
			}
			if f.Status != "" && r.Status != f.Status {
				continue
			}
			out = append(out, r.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset >= len(out) {
		return []models.Review{}, err
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

func (s *InMemoryStore) SetStatus(ctx context.Context, id domain.ReviewID, status lifecycle.Status, at time.Time) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		r, ok := d.Reviews[id]
		if !ok {
			return sentinel.ErrNotFound
		}
		r.Status = status
		r.UpdatedAt = at
		d.Reviews[id] = r
		return nil
	})
}

func (s *InMemoryStore) Delete(ctx context.Context, id domain.ReviewID) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		if _, ok := d.Reviews[id]; !ok {
			return sentinel.ErrNotFound
		}
		delete(d.Reviews, id)
		return nil
	})
}
