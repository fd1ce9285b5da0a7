package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionstore/pkg/cache"
)

// fakeClock is safe for concurrent reads from the sweeper goroutine.
type fakeClock struct {
	now atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.now.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time { return time.Unix(0, c.now.Load()).UTC() }

func (c *fakeClock) Advance(d time.Duration) { c.now.Add(int64(d)) }

func (c *fakeClock) In(d time.Duration) time.Time { return c.Now().Add(d) }

func TestMemory_PutGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		_, err := c.Get(ctx, "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("live until the deadline", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := cache.NewMemory[int](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Put(ctx, "k", 42, clock.In(time.Minute)))

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, 42, v)

		clock.Advance(time.Minute)
		_, err = c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound, "an entry is dead at its deadline")
	})

	t.Run("zero deadline never expires", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := cache.NewMemory[string](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Put(ctx, "k", "v", time.Time{}))
		clock.Advance(100 * 365 * 24 * time.Hour)

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", v)
	})

	t.Run("past deadline removes the key", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := cache.NewMemory[string](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Put(ctx, "k", "v", time.Time{}))
		require.NoError(t, c.Put(ctx, "k", "v2", clock.In(-time.Second)))

		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("overwrite replaces value and deadline", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := cache.NewMemory[string](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Put(ctx, "k", "old", clock.In(time.Second)))
		require.NoError(t, c.Put(ctx, "k", "new", clock.In(time.Hour)))
		clock.Advance(time.Minute)

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "new", v)
	})
}

func TestMemory_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bump := func(deadline time.Time) func(int) (int, time.Time, error) {
		return func(v int) (int, time.Time, error) { return v + 1, deadline, nil }
	}

	t.Run("missing key is not created", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0))
		defer c.Close()

		require.ErrorIs(t, c.Update(ctx, "k", bump(time.Time{})), cache.ErrNotFound)
		_, err := c.Get(ctx, "k")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("expired key is not revived", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := cache.NewMemory[int](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Put(ctx, "k", 1, clock.In(time.Second)))
		clock.Advance(time.Second)
		require.ErrorIs(t, c.Update(ctx, "k", bump(clock.In(time.Hour))), cache.ErrNotFound)
	})

	t.Run("live key gets value and deadline", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		c := cache.NewMemory[int](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Put(ctx, "k", 1, clock.In(time.Second)))
		require.NoError(t, c.Update(ctx, "k", bump(clock.In(time.Hour))))
		clock.Advance(time.Minute)

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, 2, v)
	})

	t.Run("error leaves the entry alone", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0))
		defer c.Close()

		boom := errors.New("boom")
		require.NoError(t, c.Put(ctx, "k", 1, time.Time{}))
		require.ErrorIs(t, c.Update(ctx, "k", func(int) (int, time.Time, error) { return 0, time.Time{}, boom }), boom)

		v, err := c.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, 1, v)
	})

	t.Run("concurrent delete wins", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0))
		defer c.Close()

		for i := range 200 {
			key := fmt.Sprintf("k%d", i)
			require.NoError(t, c.Put(ctx, key, 0, time.Time{}))

			var g errgroup.Group
			g.Go(func() error {
				if err := c.Update(ctx, key, bump(time.Time{})); err != nil && !errors.Is(err, cache.ErrNotFound) {
					return err
				}
				return nil
			})
			g.Go(func() error { return c.Delete(ctx, key) })
			require.NoError(t, g.Wait())

			_, err := c.Get(ctx, key)
			require.ErrorIs(t, err, cache.ErrNotFound)
		}
	})
}

func TestMemory_DeleteClearLen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	c := cache.NewMemory[string](cache.WithClock(clock.Now), cache.WithCleanupInterval(0))
	defer c.Close()

	require.NoError(t, c.Put(ctx, "a", "1", time.Time{}))
	require.NoError(t, c.Put(ctx, "b", "2", clock.In(time.Minute)))
	require.NoError(t, c.Put(ctx, "c", "3", clock.In(time.Hour)))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	clock.Advance(2 * time.Minute)
	n, err = c.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n, "expired entries are not counted")

	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "never-existed"))
	n, _ = c.Len(ctx)
	require.Equal(t, 1, n)

	require.NoError(t, c.Clear(ctx))
	n, _ = c.Len(ctx)
	require.Zero(t, n)
}

func TestMemory_MaxEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var evicted []string
	c := cache.NewMemory[int](
		cache.WithCleanupInterval(0),
		cache.WithMaxEntries(2),
		cache.WithEvictCallback(func(key string) { evicted = append(evicted, key) }),
	)
	defer c.Close()

	require.NoError(t, c.Put(ctx, "a", 1, time.Time{}))
	require.NoError(t, c.Put(ctx, "b", 2, time.Time{}))

	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Put(ctx, "c", 3, time.Time{}))
	require.Equal(t, []string{"b"}, evicted, "least recently used entry is dropped")

	_, err = c.Get(ctx, "b")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Put(ctx, "a", 10, time.Time{}))
	require.Equal(t, []string{"b"}, evicted, "overwriting does not evict")

	require.NoError(t, c.Delete(ctx, "c"))
	require.Equal(t, []string{"b"}, evicted, "deletes are not evictions")
}

func TestMemory_Sweeper(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()

	var evicted atomic.Int32
	c := cache.NewMemory[string](
		cache.WithClock(clock.Now),
		cache.WithCleanupInterval(5*time.Millisecond),
		cache.WithMaxEntries(1),
		cache.WithEvictCallback(func(string) { evicted.Add(1) }),
	)
	defer c.Close()

	require.NoError(t, c.Put(ctx, "k", "v", clock.In(time.Second)))
	clock.Advance(time.Hour)

	// Once swept, the slot is free again and the next Put evicts nothing.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, c.Put(ctx, "other", "v", time.Time{}))
	require.Zero(t, evicted.Load())
}

func TestMemory_Close(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[string]()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrClosed)
	require.ErrorIs(t, c.Put(ctx, "k", "v", time.Time{}), cache.ErrClosed)
	require.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
	require.ErrorIs(t, c.Update(ctx, "k", func(v string) (string, time.Time, error) { return v, time.Time{}, nil }), cache.ErrClosed)
	require.ErrorIs(t, c.Clear(ctx), cache.ErrClosed)
	_, err = c.Len(ctx)
	require.ErrorIs(t, err, cache.ErrClosed)
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[int](cache.WithMaxEntries(64), cache.WithCleanupInterval(time.Millisecond))
	defer c.Close()

	var g errgroup.Group
	for w := range 8 {
		g.Go(func() error {
			for i := range 200 {
				key := fmt.Sprintf("k%d", (w*200+i)%100)
				if err := c.Put(ctx, key, i, time.Now().Add(time.Minute)); err != nil {
					return err
				}
				if _, err := c.Get(ctx, key); err != nil && !errors.Is(err, cache.ErrNotFound) {
					return err
				}
				if i%10 == 0 {
					if err := c.Delete(ctx, key); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	n, err := c.Len(ctx)
	require.NoError(t, err)
	require.LessOrEqual(t, n, 64)
}
