// Package store keeps analysis results addressable by id for the server
// lifetime. The cache is capacity-bounded with least-recently-used
// eviction so sustained traffic cannot grow memory without bound, and is
// injected as a dependency rather than held as a package singleton.
package store

import (
	"container/list"
	"errors"
	"sync"

	"github.com/atelierlab/groundfinder/internal/analysis"
)

// ErrNotFound marks an unknown analysis id.
var ErrNotFound = errors.New("analysis not found")

// DefaultCapacity bounds the number of retained results. Each result
// carries the full original image plus the analysis arrays.
const DefaultCapacity = 64

// Store is a mutex-guarded LRU map from analysis id to result. Entries
// are immutable once inserted; they are only inserted or removed
// wholesale, so a single lock suffices.
type Store struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
}

type entry struct {
	id  string
	res *analysis.Result
}

// New returns a store bounded to capacity results. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Put inserts res under its id, evicting the least recently used entry
// when the store is full. Re-inserting an id replaces the old result.
func (s *Store) Put(res *analysis.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[res.ID]; ok {
		el.Value = entry{id: res.ID, res: res}
		s.order.MoveToFront(el)
		return
	}
	for s.order.Len() >= s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(entry).id)
	}
	s.items[res.ID] = s.order.PushFront(entry{id: res.ID, res: res})
}

// Get returns the result stored under id, marking it recently used.
func (s *Store) Get(id string) (*analysis.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.order.MoveToFront(el)
	return el.Value.(entry).res, nil
}

// Remove evicts id if present.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[id]; ok {
		s.order.Remove(el)
		delete(s.items, id)
	}
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
