package ledger

import (
	"context"
	"sync"

	dErrors "attestra/pkg/domain-errors"
)

// InMemoryStore keeps the chain in process memory. It is the default store
// and the workhorse for tests; swap in the Postgres store when the chain must
// survive restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.entries); n > 0 && entry.EntryID <= s.entries[n-1].EntryID {
		return dErrors.Newf(dErrors.CodeInternal, "entry id %d is not strictly increasing", entry.EntryID)
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...), nil
}

func (s *InMemoryStore) Last(_ context.Context) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Entry{}, false, nil
	}
	return s.entries[len(s.entries)-1], true, nil
}
