// Package cache provides a generic in-process cache keyed by string with
// absolute expiry deadlines and optional LRU capacity. It backs the
// in-memory session store.
//
// An entry is live while now is before its deadline, the same rule the
// persistent backends apply to session records. A zero deadline never
// expires:
//
//	c := cache.NewMemory[[]byte](
//	    cache.WithCleanupInterval(30*time.Second),
//	    cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
//
//	_ = c.Put(ctx, sid, payload, cookieExpires)
//	n, _ := c.Len(ctx)
//
// [ErrNotFound] is returned for missing or expired keys and [ErrClosed]
// after Close.
package cache
