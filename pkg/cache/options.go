package cache

import "time"

// Option configures a Memory cache.
type Option func(*options)

type options struct {
	now             func() time.Time
	onEvict         func(key string)
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultOptions() options {
	return options{
		now:             time.Now,
		cleanupInterval: time.Minute,
	}
}

// WithCleanupInterval sets how often expired entries are swept.
// Zero disables the sweeper; expired entries are then dropped lazily on access.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.cleanupInterval = d
		}
	}
}

// WithMaxEntries caps the number of entries. When full, Put drops the least
// recently used entry. Zero means unlimited.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxEntries = n
		}
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEvictCallback registers fn for entries dropped to respect WithMaxEntries.
// It runs with the cache lock held and must not call back into the cache.
func WithEvictCallback(fn func(key string)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}
