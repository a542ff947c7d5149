// Package blob provides the per-invocation in-memory byte store that pipeline
// stages use to hand large payloads to each other without touching disk.
package blob

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no payload exists under a key.
var ErrNotFound = errors.New("blob: not found")

// Store maps opaque keys to fully materialized byte buffers. A Store is scoped
// to a single clip invocation and must never be shared across invocations.
//
// The store carries no locking: the pipeline guarantees that no two stages
// touch the same key concurrently (each key has exactly one producer and one
// consumer, strictly sequenced). Callers introducing new concurrency must
// preserve that invariant.
type Store struct {
	entries map[string][]byte
}

// NewStore creates an empty store for one invocation.
func NewStore() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Put creates or overwrites the payload under key.
func (s *Store) Put(key string, data []byte) {
	s.entries[key] = data
}

// Get returns the payload under key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	data, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, nil
}

// Delete removes the payload under key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	delete(s.entries, key)
}

// Len returns the number of stored payloads.
func (s *Store) Len() int {
	return len(s.entries)
}

// Sink is an io.Writer that appends everything written to it to a single
// store key. It stands in for a file when a producer (e.g. an encoder's
// stdout) should land in memory instead of on disk.
type Sink struct {
	store *Store
	key   string
}

// NewSink creates the key with empty content and returns a writer appending to it.
func NewSink(store *Store, key string) *Sink {
	store.Put(key, nil)
	return &Sink{store: store, key: key}
}

// Write appends p to the sink's key.
func (w *Sink) Write(p []byte) (int, error) {
	w.store.entries[w.key] = append(w.store.entries[w.key], p...)
	return len(p), nil
}
