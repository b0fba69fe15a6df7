// Package session persists the credentials of the locally authenticated user.
package session

import (
	"errors"
)

// DefaultKey is the key under which the local user's record is stored.
const DefaultKey = "pymments-user"

// ErrNotFound is returned by Get when no record is stored under the key.
var ErrNotFound = errors.New("session: record not found")

// Record is the persisted form of the local user.
type Record struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Store is a durable key/value store for session records. Set replaces any
// previous record for the key in a single write.
type Store interface {
	Get(key string) (*Record, error)
	Set(key string, rec Record) error
	Remove(key string) error
}
