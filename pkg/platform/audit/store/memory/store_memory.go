package memory

import (
	"context"
	"sync"

	"masjid/pkg/platform/audit"
	"masjid/pkg/platform/tx"
)

// InMemoryStore keeps audit events in process. Appends made inside a unit of
// work only become visible after it commits.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	tx.AfterCommit(ctx, func(context.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.events = append(s.events, event)
	})
	return nil
}

// ListAll returns events in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

// ListBySubject returns the events recorded against one subject.
func (s *InMemoryStore) ListBySubject(_ context.Context, subjectType string, subjectID int64) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, ev := range s.events {
		if ev.SubjectType == subjectType && ev.SubjectID == subjectID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
