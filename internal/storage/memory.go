package storage

import (
	"context"
	"sync"

	"masjid/pkg/platform/tx"
)

type txKey struct{ m *Memory }

// Memory is the in-memory backend. A transaction holds the single lock for its
// whole duration and restores a snapshot when fn fails, which gives the same
// all-or-nothing outcome as a database transaction at serializable isolation.
type Memory struct {
	mu   sync.Mutex
	data *Dataset
}

func NewMemory() *Memory {
	return &Memory{data: NewDataset()}
}

// RunInTx implements tx.Runner. Nested calls join the outer transaction.
func (m *Memory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if m.inTx(ctx) {
		return fn(ctx)
	}

	m.mu.Lock()
	snapshot := m.data.Clone()
	txCtx := context.WithValue(ctx, txKey{m}, true)
	txCtx, hooks := tx.WithHooks(txCtx)

	committed := false
	defer func() {
		if !committed {
			m.data = snapshot
			m.mu.Unlock()
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	if err = fn(txCtx); err != nil {
		return err
	}

	committed = true
	m.mu.Unlock()
	hooks.Run(ctx)
	return nil
}

// Do runs fn against the dataset. Inside a transaction of this Memory the lock
// is already held, so fn runs directly.
func (m *Memory) Do(ctx context.Context, fn func(d *Dataset) error) error {
	if m.inTx(ctx) {
		return fn(m.data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.data)
}

// Reset drops all data.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = NewDataset()
}

func (m *Memory) inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{m}).(bool)
	return v
}
