// Package store holds the in-memory collection of tracked applications.
package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jonathan/jobtrack/internal/types"
)

// ErrRecordNotFound indicates no record has the requested id.
type ErrRecordNotFound struct {
	ID int64
}

func (e *ErrRecordNotFound) Error() string {
	return fmt.Sprintf("application not found: %d", e.ID)
}

// Store is an ordered, in-memory collection of application records.
// Ids come from a monotonic counter and are never reused, so deleting a
// record cannot make a later Add collide with a surviving one.
type Store struct {
	mu      sync.RWMutex
	records []types.ApplicationRecord
	lastID  int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Add appends rec under a freshly assigned id and returns the stored copy.
// Any id set on rec is ignored.
func (s *Store) Add(rec types.ApplicationRecord) types.ApplicationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	rec.ID = s.lastID
	s.records = append(s.records, rec)
	return rec
}

// Restore inserts rec keeping its id, and advances the counter past it.
// Used for seeding from fixtures.
func (s *Store) Restore(rec types.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID <= 0 {
		return fmt.Errorf("restore: id must be positive, got %d", rec.ID)
	}
	if s.indexOf(rec.ID) >= 0 {
		return fmt.Errorf("restore: duplicate id %d", rec.ID)
	}
	s.records = append(s.records, rec)
	s.lastID = max(s.lastID, rec.ID)
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id int64) (types.ApplicationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.ApplicationRecord{}, &ErrRecordNotFound{ID: id}
	}
	return s.records[i], nil
}

// Update shallow-merges patch into the record with the given id and returns
// the result.
func (s *Store) Update(id int64, patch types.RecordPatch) (types.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.ApplicationRecord{}, &ErrRecordNotFound{ID: id}
	}
	s.records[i] = patch.Apply(s.records[i])
	return s.records[i], nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &ErrRecordNotFound{ID: id}
	}
	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

// List returns a copy of every record in insertion order.
func (s *Store) List() []types.ApplicationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ApplicationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// caller holds mu
func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.records, func(r types.ApplicationRecord) bool { return r.ID == id })
}
