package store

import (
	"errors"
	"sync"

	"github.com/sakashimaa/storefront/internal/domain"
)

var ErrItemPending = errors.New("item has a request in flight")

// Snapshot is the read-only view of a container. Version grows on every state change.
type Snapshot[T any] struct {
	Value   T
	Loading bool
	Error   string
	Version uint64
}

// container holds one value behind a mutex and notifies subscribers after each change.
type container[T any] struct {
	mu        sync.RWMutex
	value     T
	inflight  int
	err       string
	version   uint64
	clone     func(T) T
	listeners map[uint64]func()
	nextID    uint64
}

func newContainer[T any](initial T, clone func(T) T) *container[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}

	return &container[T]{
		value:     initial,
		clone:     clone,
		listeners: make(map[uint64]func()),
	}
}

func (c *container[T]) State() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot[T]{
		Value:   c.clone(c.value),
		Loading: c.inflight > 0,
		Error:   c.err,
		Version: c.version,
	}
}

func (c *container[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.version
}

// Subscribe registers fn and returns the function that removes it.
func (c *container[T]) Subscribe(fn func()) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// update applies fn under the lock, bumps the version and notifies outside the lock.
// Loading is owned by startLoading; changes fn makes to it are ignored.
func (c *container[T]) update(fn func(s *Snapshot[T])) {
	c.mu.Lock()
	s := Snapshot[T]{Value: c.value, Loading: c.inflight > 0, Error: c.err}
	fn(&s)
	c.value = s.Value
	c.err = s.Error
	c.version++

	listeners := make([]func(), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}

// startLoading marks one call in flight and returns the func that ends it. Loading stays
// true until every started call has ended.
func (c *container[T]) startLoading() (done func()) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	c.update(func(s *Snapshot[T]) {
		s.Error = ""
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.inflight--
			c.mu.Unlock()

			c.update(func(*Snapshot[T]) {})
		})
	}
}

func (c *container[T]) fail(msg string) {
	c.update(func(s *Snapshot[T]) {
		s.Error = msg
	})
}

func (c *container[T]) set(value T) {
	c.update(func(s *Snapshot[T]) {
		s.Value = value
		s.Error = ""
	})
}

func (c *container[T]) ClearError() {
	c.update(func(s *Snapshot[T]) {
		s.Error = ""
	})
}

// clonePage copies p and its items; item deep-copies one element when non-nil.
func clonePage[T any](p *domain.Page[T], item func(T) T) *domain.Page[T] {
	if p == nil {
		return nil
	}

	out := *p
	if p.Items != nil {
		out.Items = make([]T, len(p.Items))
		for i, v := range p.Items {
			if item != nil {
				v = item(v)
			}
			out.Items[i] = v
		}
	}
	return &out
}

func clonePtr[T any](v *T, clone func(T) T) *T {
	if v == nil {
		return nil
	}

	out := clone(*v)
	return &out
}
