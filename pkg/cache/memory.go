package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	deadline time.Time
	value    V
	key      string
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.deadline.IsZero() && !now.Before(it.deadline)
}

// Memory is an in-process Cache with optional LRU capacity.
// The front of lru holds the most recently used entry.
type Memory[V any] struct {
	items  map[string]*list.Element
	lru    *list.List
	stop   chan struct{}
	opts   options
	mu     sync.Mutex
	closed bool
}

// NewMemory returns an empty cache and starts its sweeper when a cleanup
// interval is set.
func NewMemory[V any](opts ...Option) *Memory[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		stop:  make(chan struct{}),
		opts:  o,
	}
	if o.cleanupInterval > 0 {
		go m.sweep(o.cleanupInterval)
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return zero, ErrClosed
	}
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	it := el.Value.(*item[V])
	if it.expired(m.opts.now()) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return it.value, nil
}

func (m *Memory[V]) Put(_ context.Context, key string, value V, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	el, ok := m.items[key]
	if !expiresAt.IsZero() && !m.opts.now().Before(expiresAt) {
		if ok {
			m.remove(el)
		}
		return nil
	}
	if ok {
		it := el.Value.(*item[V])
		it.value, it.deadline = value, expiresAt
		m.lru.MoveToFront(el)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
			if m.opts.onEvict != nil {
				m.opts.onEvict(oldest.Value.(*item[V]).key)
			}
		}
	}
	m.items[key] = m.lru.PushFront(&item[V]{key: key, value: value, deadline: expiresAt})
	return nil
}

// Update rewrites a live entry in place under the cache lock. fn receives the
// current value and returns the replacement and its new deadline. Missing or
// expired keys return ErrNotFound and are never created. An error from fn
// leaves the entry untouched.
func (m *Memory[V]) Update(_ context.Context, key string, fn func(V) (V, time.Time, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	el, ok := m.items[key]
	if !ok {
		return ErrNotFound
	}
	it := el.Value.(*item[V])
	now := m.opts.now()
	if it.expired(now) {
		m.remove(el)
		return ErrNotFound
	}

	value, deadline, err := fn(it.value)
	if err != nil {
		return err
	}
	if !deadline.IsZero() && !now.Before(deadline) {
		m.remove(el)
		return nil
	}
	it.value, it.deadline = value, deadline
	m.lru.MoveToFront(el)
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	now := m.opts.now()
	n := 0
	for _, el := range m.items {
		if !el.Value.(*item[V]).expired(now) {
			n++
		}
	}
	return n, nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	clear(m.items)
	m.lru.Init()
	return nil
}

// Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

func (m *Memory[V]) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

// removeExpired walks from the least recently used end.
func (m *Memory[V]) removeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.now()
	n := 0
	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*item[V]).expired(now) {
			m.remove(el)
			n++
		}
		el = prev
	}
	return n
}

// remove requires m.mu.
func (m *Memory[V]) remove(el *list.Element) {
	m.lru.Remove(el)
	delete(m.items, el.Value.(*item[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
