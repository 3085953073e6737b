package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Record is one violation observed at one step of a session.
type Record struct {
	ID        int64
	Session   string
	Step      uint64
	Invariant string
	Kind      string
	Message   string
	Snapshot  []byte // the checked snapshot, protojson encoded
	At        time.Time
}

// Store defines the interface for violation storage.
type Store interface {
	// Record appends a violation and returns its assigned ID.
	Record(ctx context.Context, rec Record) (int64, error)
	// List returns the records of a session ordered by step then ID.
	// An empty session lists every record.
	List(ctx context.Context, session string) ([]Record, error)
	// Close releases the underlying resources.
	Close() error
}

// InMemoryStore is an in-memory implementation of Store.
// It's thread-safe.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

// Record appends a violation.
func (s *InMemoryStore) Record(ctx context.Context, rec Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if rec.Invariant == "" {
		return 0, fmt.Errorf("record requires an invariant name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	rec.Snapshot = append([]byte(nil), rec.Snapshot...)
	s.records = append(s.records, rec)
	return rec.ID, nil
}

// List returns copies of the stored records so callers cannot modify them.
func (s *InMemoryStore) List(ctx context.Context, session string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if session != "" && rec.Session != session {
			continue
		}
		rec.Snapshot = append([]byte(nil), rec.Snapshot...)
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Step != out[j].Step {
			return out[i].Step < out[j].Step
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
