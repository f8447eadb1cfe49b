// Package stash holds variable-length host payloads until the guest pulls
// them into its own memory.
package stash

import (
	"sync"

	"github.com/moshez/ward/domain/entities"
)

// Stash is a take-once table of byte payloads keyed by monotonically
// increasing ids.
type Stash struct {
	mu      sync.Mutex
	next    entities.StashID
	entries map[entities.StashID][]byte
}

// New returns an empty stash. The first id it mints is 1.
func New() *Stash {
	return &Stash{entries: make(map[entities.StashID][]byte)}
}

// Put stores data and returns its id. The stash keeps data as given; callers
// must not modify it afterwards.
func (s *Stash) Put(data []byte) entities.StashID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.entries[s.next] = data
	return s.next
}

// Take returns and removes the entry for id.
func (s *Stash) Take(id entities.StashID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	return data, ok
}

// Pull evicts the entry for id and returns at most n of its bytes. A missing
// id yields nil.
func (s *Stash) Pull(id entities.StashID, n int) []byte {
	data, ok := s.Take(id)
	if !ok || n <= 0 {
		return nil
	}
	if n < len(data) {
		data = data[:n]
	}
	return data
}

// Len returns the number of entries not yet taken.
func (s *Stash) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Reset drops every entry. Ids keep increasing.
func (s *Stash) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
}
