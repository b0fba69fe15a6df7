package session

import "sync"

// MemoryStore keeps records in process memory. It is the default store and
// forgets everything when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Get returns a copy of the record under key, or ErrNotFound.
func (s *MemoryStore) Get(key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Set stores rec under key, replacing any previous record.
func (s *MemoryStore) Set(key string, rec Record) error {
	s.mu.Lock()
	s.records[key] = rec
	s.mu.Unlock()
	return nil
}

// Remove deletes the record under key. Removing a missing key is not an error.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}
