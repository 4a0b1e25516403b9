// Package progress persists the resume index of a vocabulary read-through.
//
// A single value is kept under Key. Reads are bounds-checked against the
// currently loaded list so stale progress from a list of a different size
// never yields an out-of-range resume point.
package progress

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Key is the fixed key the resume index is stored under.
const Key = "germanVocabProgress"

// ErrNotFound is returned by a Backend when a key has no value.
var ErrNotFound = errors.New("key not found")

// Record is a stored value with the time it was written.
type Record struct {
	Value     string
	UpdatedAt time.Time
}

// Backend is persistent key/value storage.
type Backend interface {
	Get(key string) (Record, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Store keeps the resume index for a list of a given length.
type Store struct {
	backend Backend

	mu     sync.Mutex
	length int
}

// New returns a store over backend. SetLength must be called once the list
// is known; until then every Save is a no-op and Load reports absent.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// SetLength sets the bounds used by Save and Load.
func (s *Store) SetLength(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	s.length = n
}

// Length returns the current bound.
func (s *Store) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

// Save stores index if 0 <= index < length and does nothing otherwise.
func (s *Store) Save(index int) error {
	if !s.inBounds(index) {
		return nil
	}
	return s.backend.Set(Key, strconv.Itoa(index))
}

// Load returns the stored index if it is still within bounds.
func (s *Store) Load() (int, bool) {
	rec, ok := s.get()
	if !ok {
		return -1, false
	}
	index, err := strconv.Atoi(rec.Value)
	if err != nil || !s.inBounds(index) {
		return -1, false
	}
	return index, true
}

// SavedAt returns when the resumable index was written.
func (s *Store) SavedAt() (time.Time, bool) {
	if _, ok := s.Load(); !ok {
		return time.Time{}, false
	}
	rec, ok := s.get()
	if !ok {
		return time.Time{}, false
	}
	return rec.UpdatedAt, true
}

// Clear removes the stored value.
func (s *Store) Clear() error {
	return s.backend.Delete(Key)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) get() (Record, bool) {
	rec, err := s.backend.Get(Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn("could not read progress", "error", err)
		}
		return Record{}, false
	}
	return rec, true
}

func (s *Store) inBounds(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return index >= 0 && index < s.length
}
