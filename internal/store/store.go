// Package store implements the primary record store: per-family persistence
// of record collections on the kv medium. Each operation loads the current
// collection, computes the full next-state slice in memory, and persists it
// with a single overwriting save, so no reader ever observes a partially
// applied change.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lifelog-dev/lifelog/internal/kv"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

// Store persists one family's record collection under a stable storage key.
type Store[T types.Record] struct {
	kv  *kv.Store
	key string
	log *slog.Logger
}

// New returns a Store over the given medium and storage key.
func New[T types.Record](medium *kv.Store, key string, log *slog.Logger) *Store[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Store[T]{kv: medium, key: key, log: log}
}

// Key returns the storage key the collection is persisted under.
func (s *Store[T]) Key() string { return s.key }

// Load returns the current collection. A missing key or a document that no
// longer parses yields an empty collection: storage corruption is logged
// and treated as "no data", never as a fatal condition.
func (s *Store[T]) Load() []T {
	data, ok := s.kv.Get(s.key)
	if !ok {
		return []T{}
	}
	var recs []T
	if err := json.Unmarshal(data, &recs); err != nil {
		s.log.Warn("corrupt collection treated as empty",
			"key", s.key, "error", err)
		return []T{}
	}
	if recs == nil {
		recs = []T{}
	}
	return recs
}

// Encode marshals the collection exactly as Save would persist it.
// Callers that need to commit several collections under one quota check
// pass the result to the medium's SetMulti keyed by Key().
func (s *Store[T]) Encode(recs []T) ([]byte, error) {
	if recs == nil {
		recs = []T{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", s.key, err)
	}
	return data, nil
}

// Save overwrites the whole collection.
func (s *Store[T]) Save(recs []T) error {
	data, err := s.Encode(recs)
	if err != nil {
		return err
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("saving %s: %w", s.key, err)
	}
	return nil
}

// Add inserts a record and persists the collection in canonical order.
func (s *Store[T]) Add(rec T) error {
	recs := append(s.Load(), rec)
	types.SortCanonical(recs)
	return s.Save(recs)
}

// Update replaces the record with the same id. Returns types.ErrNotFound
// if no record carries that id.
func (s *Store[T]) Update(rec T) error {
	recs := s.Load()
	for i := range recs {
		if recs[i].RecordID() == rec.RecordID() {
			recs[i] = rec
			types.SortCanonical(recs)
			return s.Save(recs)
		}
	}
	return fmt.Errorf("updating %s in %s: %w", rec.RecordID(), s.key, types.ErrNotFound)
}

// Delete removes the record with the given id. Returns types.ErrNotFound
// if no record carries that id.
func (s *Store[T]) Delete(id string) error {
	recs := s.Load()
	for i := range recs {
		if recs[i].RecordID() == id {
			recs = append(recs[:i], recs[i+1:]...)
			return s.Save(recs)
		}
	}
	return fmt.Errorf("deleting %s from %s: %w", id, s.key, types.ErrNotFound)
}

// Get returns the record with the given id.
func (s *Store[T]) Get(id string) (T, error) {
	for _, rec := range s.Load() {
		if rec.RecordID() == id {
			return rec, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("getting %s from %s: %w", id, s.key, types.ErrNotFound)
}

// Clear removes every record and returns how many were removed.
func (s *Store[T]) Clear() (int, error) {
	n := len(s.Load())
	if err := s.Save(nil); err != nil {
		return 0, err
	}
	return n, nil
}
