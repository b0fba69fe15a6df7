package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	pebble "github.com/cockroachdb/pebble"
)

const keyPrefix = "session:"

// PebbleStore keeps records in a pebble database on disk. Writes are synced
// before Set or Remove returns.
type PebbleStore struct {
	db *pebble.DB
}

// OpenPebbleStore opens (creating if needed) a pebble database in dir.
func OpenPebbleStore(dir string) (*PebbleStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open session db %s: %w", dir, err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the underlying database. It is safe to call on a nil store.
func (s *PebbleStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get decodes the record under key, or returns ErrNotFound.
func (s *PebbleStore) Get(key string) (*Record, error) {
	v, closer, err := s.db.Get([]byte(keyPrefix + key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(v, &rec); err != nil {
		return nil, fmt.Errorf("decode session record %q: %w", key, err)
	}
	return &rec, nil
}

// Set encodes rec as JSON and writes it under key.
func (s *PebbleStore) Set(key string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Set([]byte(keyPrefix+key), b, pebble.Sync)
}

// Remove deletes the record under key. Removing a missing key is not an error.
func (s *PebbleStore) Remove(key string) error {
	return s.db.Delete([]byte(keyPrefix+key), pebble.Sync)
}
