package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store for tests and local development. It keeps
// the same contract as the PostgreSQL store: fn works on a copy, and only a
// created record or a write=true return is kept.
type MemStore struct {
	mu      sync.Mutex
	records map[uuid.UUID][]*DailyUsage // sorted by day, oldest first
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[uuid.UUID][]*DailyUsage)}
}

func (m *MemStore) Mutate(ctx context.Context, userID uuid.UUID, day time.Time, fn func(rec *DailyUsage) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.find(userID, day)
	created := false
	if rec == nil {
		carried := NewPageSet()
		if rows := m.records[userID]; len(rows) > 0 {
			carried = rows[len(rows)-1].EverPages.Clone()
		}
		now := time.Now().UTC()
		rec = &DailyUsage{
			ID:          uuid.New(),
			UserID:      userID,
			Day:         day,
			WindowPages: NewPageSet(),
			EverPages:   carried,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		m.records[userID] = append(m.records[userID], rec)
		created = true
	}

	work := rec.Clone()
	write, err := fn(work)
	if err != nil {
		if created {
			// Mirror the transactional store: a failed fn rolls the
			// creation back too.
			rows := m.records[userID]
			m.records[userID] = rows[:len(rows)-1]
		}
		return err
	}

	if write || created {
		work.UpdatedAt = time.Now().UTC()
		*rec = *work
	}
	return nil
}

func (m *MemStore) Get(ctx context.Context, userID uuid.UUID, day time.Time) (*DailyUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.find(userID, day)
	if rec == nil {
		return nil, nil
	}
	return rec.Clone(), nil
}

// find assumes m.mu is held. Records per user stay sorted because days only
// ever grow and Mutate appends.
func (m *MemStore) find(userID uuid.UUID, day time.Time) *DailyUsage {
	for _, rec := range m.records[userID] {
		if rec.Day.Equal(day) {
			return rec
		}
	}
	return nil
}
