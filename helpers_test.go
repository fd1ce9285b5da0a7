package sessionstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionstore"
	"github.com/dmitrymomot/sessionstore/pkg/orm"
	"github.com/dmitrymomot/sessionstore/pkg/orm/memory"
)

// clock is a manually advanced time source.
type clock struct {
	now time.Time
	mu  sync.Mutex
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newStore returns a connected store over a fresh memory collection.
func newStore(t *testing.T, payload orm.PayloadType, opts ...sessionstore.Option) (*sessionstore.Store, *memory.Collection) {
	t.Helper()

	coll := memory.NewCollection(orm.DefaultModel("", payload))
	opts = append([]sessionstore.Option{
		sessionstore.WithCollection(coll),
		sessionstore.WithAutoRemove(sessionstore.AutoRemoveNone),
	}, opts...)

	s, err := sessionstore.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.Equal(t, sessionstore.StateConnected, s.State())
	return s, coll
}

func record(t *testing.T, coll *memory.Collection, sid string) *orm.Record {
	t.Helper()
	rec, err := coll.FindOne(context.Background(), orm.Eq(orm.FieldSID, sid))
	require.NoError(t, err)
	return rec
}

// gateAdapter blocks Define until release is closed.
type gateAdapter struct {
	release chan struct{}
	err     error
	coll    *memory.Collection
}

func newGateAdapter(err error) *gateAdapter {
	return &gateAdapter{
		release: make(chan struct{}),
		err:     err,
		coll:    memory.NewCollection(orm.DefaultModel("", orm.PayloadText)),
	}
}

func (g *gateAdapter) Name() string { return "gate" }

func (g *gateAdapter) Defaults() orm.Connection { return orm.Connection{Adapter: "gate"} }

func (g *gateAdapter) Define(ctx context.Context, _ orm.Connection, _ orm.Model) (orm.Collection, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.coll, nil
}

func (g *gateAdapter) Close() error { return nil }

func gateOptions(g *gateAdapter, opts ...sessionstore.Option) []sessionstore.Option {
	return append([]sessionstore.Option{
		sessionstore.WithAdapters(g),
		sessionstore.WithConnections(map[string]orm.Connection{
			orm.DefaultConnection: {Adapter: "gate"},
		}),
		sessionstore.WithAutoRemove(sessionstore.AutoRemoveNone),
	}, opts...)
}
