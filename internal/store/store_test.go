package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierlab/groundfinder/internal/analysis"
)

func result(id string) *analysis.Result {
	return &analysis.Result{ID: id}
}

func TestPutGet(t *testing.T) {
	s := New(4)
	res := result("a")
	s.Put(res)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Same(t, res, got)
	assert.Equal(t, 1, s.Len())
}

func TestGetUnknown(t *testing.T) {
	s := New(4)
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	s := New(4)
	s.Put(result("a"))
	s.Remove("a")

	_, err := s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())

	// Removing an unknown id is a no-op.
	s.Remove("missing")
}

func TestReplaceSameID(t *testing.T) {
	s := New(4)
	s.Put(result("a"))
	newer := result("a")
	s.Put(newer)

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Same(t, newer, got)
	assert.Equal(t, 1, s.Len())
}

func TestEvictionOrder(t *testing.T) {
	s := New(2)
	s.Put(result("a"))
	s.Put(result("b"))

	// Touch "a" so "b" becomes the eviction candidate.
	_, err := s.Get("a")
	require.NoError(t, err)

	s.Put(result("c"))
	assert.Equal(t, 2, s.Len())

	_, err = s.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("a")
	assert.NoError(t, err)
	_, err = s.Get("c")
	assert.NoError(t, err)
}

func TestCapacityFallback(t *testing.T) {
	s := New(0)
	for i := 0; i < DefaultCapacity+10; i++ {
		s.Put(result(fmt.Sprintf("id-%d", i)))
	}
	assert.Equal(t, DefaultCapacity, s.Len())

	// Oldest entries were evicted first.
	_, err := s.Get("id-0")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(fmt.Sprintf("id-%d", DefaultCapacity+9))
	assert.NoError(t, err)
}

func TestConcurrentAccess(t *testing.T) {
	s := New(16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("g%d-%d", g, i%4)
				s.Put(result(id))
				_, _ = s.Get(id)
				if i%10 == 0 {
					s.Remove(id)
				}
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 16)
}
