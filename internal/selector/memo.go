package selector

import (
	"sync"

	"github.com/sakashimaa/storefront/internal/store"
)

// Source is satisfied by every store container.
type Source[T any] interface {
	State() store.Snapshot[T]
	Version() uint64
}

// Memo caches fn's result per snapshot version: an unchanged version returns the cached value
// without calling fn again.
type Memo[T, V any] struct {
	mu      sync.Mutex
	fn      func(T) V
	version uint64
	value   V
	valid   bool
}

func NewMemo[T, V any](fn func(T) V) *Memo[T, V] {
	return &Memo[T, V]{fn: fn}
}

func (m *Memo[T, V]) Get(src Source[T]) V {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && src.Version() == m.version {
		return m.value
	}

	snap := src.State()
	m.value = m.fn(snap.Value)
	m.version = snap.Version
	m.valid = true
	return m.value
}
