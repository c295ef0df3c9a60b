package store

import (
	"context"
	"sort"
	"time"

	"masjid/internal/lifecycle"
	"masjid/internal/storage"
	"masjid/internal/submission/models"
	"masjid/pkg/domain"
	"masjid/pkg/platform/sentinel"
)

// InMemoryStore keeps submissions and their confirmations in the shared
// in-memory dataset. The (submission, user) key of the confirmation maps
// plays the part of the unique constraint.
type InMemoryStore struct {
	mem *storage.Memory
}

func NewInMemory(mem *storage.Memory) *InMemoryStore {
	return &InMemoryStore{mem: mem}
}

func (s *InMemoryStore) CreateSuggestion(ctx context.Context, sug *models.Suggestion) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		sug.ID = domain.SuggestionID(d.NextID())
		d.Suggestions[sug.ID] = sug.Clone()
		return nil
	})
}

func (s *InMemoryStore) FindSuggestion(ctx context.Context, id domain.SuggestionID) (*models.Suggestion, error) {
	var out *models.Suggestion
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		sug, ok := d.Suggestions[id]
		if !ok {
			return sentinel.ErrNotFound
		}
		c := sug.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (s *InMemoryStore) ListSuggestions(ctx context.Context, f models.ListFilter) ([]models.Suggestion, error) {
	var out []models.Suggestion
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		for _, sug := range d.Suggestions {
			if matchesFilter(f, sug.Status, sug.CreatedByUserID, nil) {
				out = append(out, sug.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, int64(out[i].ID), int64(out[j].ID)) })
	return page(out, f.Offset, f.Limit), err
}

func (s *InMemoryStore) MarkSuggestionApproved(ctx context.Context, id domain.SuggestionID, mosqueID domain.MosqueID, at time.Time) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		sug, ok := d.Suggestions[id]
		if !ok {
			return sentinel.ErrNotFound
		}
		sug.Status = lifecycle.StatusApproved
		sug.ApprovedMosqueID = &mosqueID
		sug.UpdatedAt = at
		d.Suggestions[id] = sug
		return nil
	})
}

func (s *InMemoryStore) CreateEdit(ctx context.Context, e *models.Edit) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		if _, ok := d.Mosques[e.MosqueID]; !ok {
			return sentinel.ErrNotFound
		}
		e.ID = domain.EditID(d.NextID())
		d.Edits[e.ID] = e.Clone()
		return nil
	})
}

func (s *InMemoryStore) FindEdit(ctx context.Context, id domain.EditID) (*models.Edit, error) {
	var out *models.Edit
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		e, ok := d.Edits[id]
		if !ok {
			return sentinel.ErrNotFound
		}
		c := e.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (s *InMemoryStore) ListEdits(ctx context.Context, f models.ListFilter) ([]models.Edit, error) {
	var out []models.Edit
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		for _, e := range d.Edits {
			mosqueID := e.MosqueID
			if matchesFilter(f, e.Status, e.CreatedByUserID, &mosqueID) {
				out = append(out, e.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, int64(out[i].ID), int64(out[j].ID)) })
	return page(out, f.Offset, f.Limit), err
}

// LockState reads the lifecycle state. The dataset lock held by the
// surrounding transaction serializes concurrent confirmers.
func (s *InMemoryStore) LockState(ctx context.Context, kind models.Kind, id int64) (models.State, error) {
	var st models.State
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		switch kind {
		case models.KindNewEntry:
			sug, ok := d.Suggestions[domain.SuggestionID(id)]
			if !ok {
				return sentinel.ErrNotFound
			}
			st = models.State{Kind: kind, ID: id, Status: sug.Status, ConfirmationsCount: sug.ConfirmationsCount}
		case models.KindEdit:
			e, ok := d.Edits[domain.EditID(id)]
			if !ok {
				return sentinel.ErrNotFound
			}
			st = models.State{Kind: kind, ID: id, Status: e.Status, ConfirmationsCount: e.ConfirmationsCount}
		default:
			return sentinel.ErrInvalidState
		}
		return nil
	})
	return st, err
}

func (s *InMemoryStore) InsertConfirmation(ctx context.Context, kind models.Kind, id int64, userID domain.UserID, at time.Time) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		ledger, err := confirmations(d, kind)
		if err != nil {
			return err
		}
		key := storage.ConfirmationKey{SubmissionID: id, UserID: userID}
		if _, exists := ledger[key]; exists {
			return sentinel.ErrDuplicate
		}
		ledger[key] = at
		return nil
	})
}

func (s *InMemoryStore) IncrementConfirmations(ctx context.Context, kind models.Kind, id int64, at time.Time) (int, error) {
	var count int
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		switch kind {
		case models.KindNewEntry:
			sug, ok := d.Suggestions[domain.SuggestionID(id)]
			if !ok {
				return sentinel.ErrNotFound
			}
			sug.ConfirmationsCount++
			sug.UpdatedAt = at
			d.Suggestions[sug.ID] = sug
			count = sug.ConfirmationsCount
		case models.KindEdit:
			e, ok := d.Edits[domain.EditID(id)]
			if !ok {
				return sentinel.ErrNotFound
			}
			e.ConfirmationsCount++
			e.UpdatedAt = at
			d.Edits[e.ID] = e
			count = e.ConfirmationsCount
		default:
			return sentinel.ErrInvalidState
		}
		return nil
	})
	return count, err
}

func (s *InMemoryStore) CountConfirmations(ctx context.Context, kind models.Kind, id int64) (int, error) {
	var n int
	err := s.mem.Do(ctx, func(d *storage.Dataset) error {
		ledger, err := confirmations(d, kind)
		if err != nil {
			return err
		}
		for key := range ledger {
			if key.SubmissionID == id {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *InMemoryStore) SetStatus(ctx context.Context, kind models.Kind, id int64, status lifecycle.Status, at time.Time) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		switch kind {
		case models.KindNewEntry:
			sug, ok := d.Suggestions[domain.SuggestionID(id)]
			if !ok {
				return sentinel.ErrNotFound
			}
			sug.Status, sug.UpdatedAt = status, at
			d.Suggestions[sug.ID] = sug
		case models.KindEdit:
			e, ok := d.Edits[domain.EditID(id)]
			if !ok {
				return sentinel.ErrNotFound
			}
			e.Status, e.UpdatedAt = status, at
			d.Edits[e.ID] = e
		default:
			return sentinel.ErrInvalidState
		}
		return nil
	})
}

// Delete removes the submission and its confirmations.
func (s *InMemoryStore) Delete(ctx context.Context, kind models.Kind, id int64) error {
	return s.mem.Do(ctx, func(d *storage.Dataset) error {
		switch kind {
		case models.KindNewEntry:
			if _, ok := d.Suggestions[domain.SuggestionID(id)]; !ok {
				return sentinel.ErrNotFound
			}
			delete(d.Suggestions, domain.SuggestionID(id))
		case models.KindEdit:
			if _, ok := d.Edits[domain.EditID(id)]; !ok {
				return sentinel.ErrNotFound
			}
			delete(d.Edits, domain.EditID(id))
		default:
			return sentinel.ErrInvalidState
		}
		ledger, _ := confirmations(d, kind)
		for key := range ledger {
			if key.SubmissionID == id {
				delete(ledger, key)
			}
		}
		return nil
	})
}

func confirmations(d *storage.Dataset, kind models.Kind) (map[storage.ConfirmationKey]time.Time, error) {
	switch kind {
	case models.KindNewEntry:
		return d.SuggestionConfirmations, nil
	case models.KindEdit:
		return d.EditConfirmations, nil
	}
	return nil, sentinel.ErrInvalidState
}

func matchesFilter(f models.ListFilter, status lifecycle.Status, createdBy *domain.UserID, mosqueID *domain.MosqueID) bool {
	if f.Status != "" && status != f.Status {
		return false
	}
	if f.CreatedBy != nil && (createdBy == nil || *createdBy != *f.CreatedBy) {
		return false
	}
	if f.MosqueID != nil && (mosqueID == nil || *mosqueID != *f.MosqueID) {
		return false
	}
	return true
}

func newerFirst(a, b time.Time, aID, bID int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
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
