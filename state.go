package sessionstore

import (
	"context"
	"sync"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// State is the backend readiness of a Store.
type State int

const (
	StateInit State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// terminal reports whether no further transitions can leave s.
// connected may still move to disconnected on Close.
func (s State) terminal() bool { return s == StateDisconnected }

// settled reports whether waiters on the connecting phase can be released.
func (s State) settled() bool { return s == StateConnected || s == StateDisconnected }

// subscriberBuffer covers every transition a store can make, so delivery never blocks.
const subscriberBuffer = 4

// connection tracks the backend handle and its readiness.
type connection struct {
	coll    orm.Collection
	err     error
	ready   chan struct{}
	subs    map[int]chan State
	hooks   []func(State)
	state   State
	nextSub int
	mu      sync.Mutex
}

func newConnection(hooks []func(State)) *connection {
	return &connection{
		ready: make(chan struct{}),
		subs:  make(map[int]chan State),
		hooks: hooks,
		state: StateInit,
	}
}

// announce reports the initial state to hooks. Subscribers cannot exist yet.
func (c *connection) announce() {
	c.mu.Lock()
	state, hooks := c.state, c.hooks
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(state)
	}
}

// snapshot returns the current state together with the ready channel.
func (c *connection) snapshot() (State, orm.Collection, <-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.coll, c.ready, c.err
}

// transition moves to next. Transitions out of disconnected are ignored.
// It reports whether the transition happened.
func (c *connection) transition(next State, coll orm.Collection, err error) bool {
	c.mu.Lock()
	if c.state.terminal() || c.state == next {
		c.mu.Unlock()
		return false
	}

	prevSettled := c.state.settled()
	c.state = next
	if coll != nil {
		c.coll = coll
	}
	if err != nil {
		c.err = err
	}
	if next.settled() && !prevSettled {
		close(c.ready)
	}

	for id, ch := range c.subs {
		ch <- next
		if next.terminal() {
			close(ch)
			delete(c.subs, id)
		}
	}
	hooks := c.hooks
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(next)
	}
	return true
}

// subscribe returns a channel receiving every later transition. The channel
// is closed after disconnected or when cancel is called.
func (c *connection) subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, subscriberBuffer)
	if c.state.terminal() {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// wait blocks until the connecting phase is over or ctx is done.
func (c *connection) wait(ctx context.Context) error {
	_, _, ready, _ := c.snapshot()
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
