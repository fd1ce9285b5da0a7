package sessionstore

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// AutoRemove selects how expired sessions are purged.
type AutoRemove string

const (
	// AutoRemoveInterval runs the reaper on a fixed interval.
	AutoRemoveInterval AutoRemove = "interval"
	// AutoRemoveNative asks the database to expire rows. Not supported.
	AutoRemoveNative AutoRemove = "native"
	// AutoRemoveNone leaves expired rows in place; Get still ignores them.
	AutoRemoveNone AutoRemove = "none"
)

// Defaults applied when the matching option is not given.
const (
	DefaultTableName          = orm.DefaultTableName
	DefaultTTL                = 14 * 24 * time.Hour
	DefaultAutoRemoveInterval = 10 * time.Minute
)

type hashConfig struct {
	salt      string
	algorithm HashAlgorithm
}

// config is built once per store and never mutated afterwards.
type config struct {
	collection         orm.Collection
	adapters           map[string]orm.Adapter
	connections        map[string]orm.Connection
	logger             *slog.Logger
	now                func() time.Time
	serialize          Serializer
	unserialize        Unserializer
	hash               *hashConfig
	stateHooks         []func(State)
	tableName          string
	autoRemove         AutoRemove
	memoryLimit        int
	ttl                time.Duration
	autoRemoveInterval time.Duration
	touchAfter         time.Duration
	stringify          bool
	stringifySet       bool
	fallbackMemory     bool
}

func defaultConfig() *config {
	return &config{
		tableName:          DefaultTableName,
		stringify:          true,
		ttl:                DefaultTTL,
		autoRemove:         AutoRemoveInterval,
		autoRemoveInterval: DefaultAutoRemoveInterval,
		now:                time.Now,
	}
}

// Option configures a Store.
type Option func(*config)

// WithTableName sets the backing table or collection name.
// Defaults to "sessions".
func WithTableName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.tableName = name
		}
	}
}

// WithStringify chooses JSON text (true, the default) or structured storage.
// Passing it explicitly also keeps text storage when custom codecs are set.
func WithStringify(stringify bool) Option {
	return func(c *config) {
		c.stringify = stringify
		c.stringifySet = true
	}
}

// WithSerializer overrides how sessions are encoded for storage.
func WithSerializer(fn Serializer) Option {
	return func(c *config) {
		c.serialize = fn
	}
}

// WithUnserializer overrides how stored payloads are decoded.
func WithUnserializer(fn Unserializer) Option {
	return func(c *config) {
		c.unserialize = fn
	}
}

// WithHash stores a digest of salt+id instead of the raw id.
// Empty arguments fall back to DefaultHashSalt and DefaultHashAlgorithm.
func WithHash(salt string, algorithm HashAlgorithm) Option {
	return func(c *config) {
		if salt == "" {
			salt = DefaultHashSalt
		}
		if algorithm == "" {
			algorithm = DefaultHashAlgorithm
		}
		c.hash = &hashConfig{salt: salt, algorithm: algorithm}
	}
}

// WithTTL sets the lifetime of sessions without an explicit cookie expiry.
// Defaults to 14 days.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithAutoRemove selects the expired-session purge strategy.
// Defaults to AutoRemoveInterval.
func WithAutoRemove(mode AutoRemove) Option {
	return func(c *config) {
		c.autoRemove = mode
	}
}

// WithAutoRemoveInterval sets the reaper period. Must be at least one second.
// Defaults to 10 minutes.
func WithAutoRemoveInterval(d time.Duration) Option {
	return func(c *config) {
		c.autoRemoveInterval = d
	}
}

// WithTouchAfter limits touch-driven writes to one per d and enables
// lastModified tracking. Zero (the default) writes on every touch.
func WithTouchAfter(d time.Duration) Option {
	return func(c *config) {
		c.touchAfter = d
	}
}

// WithCollection adopts an already initialized collection, skipping
// adapter initialization.
func WithCollection(coll orm.Collection) Option {
	return func(c *config) {
		c.collection = coll
	}
}

// WithAdapters registers adapters available to WithConnections.
func WithAdapters(adapters ...orm.Adapter) Option {
	return func(c *config) {
		if c.adapters == nil {
			c.adapters = map[string]orm.Adapter{}
		}
		for _, a := range adapters {
			if a != nil {
				c.adapters[a.Name()] = a
			}
		}
	}
}

// WithConnections sets the connection descriptors used to build a new
// collection. The bundled model uses the "sessionstore" connection.
func WithConnections(conns map[string]orm.Connection) Option {
	return func(c *config) {
		c.connections = conns
	}
}

// WithFallbackMemory makes NewStore return an in-memory store instead.
func WithFallbackMemory() Option {
	return func(c *config) {
		c.fallbackMemory = true
	}
}

// WithMemoryLimit caps the in-memory store at n sessions, evicting the
// least recently used. Zero means unlimited.
func WithMemoryLimit(n int) Option {
	return func(c *config) {
		c.memoryLimit = n
	}
}

// WithLogger sets the store logger. If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStateHook registers fn to be called synchronously with StateInit when
// the store is created and then on every state change.
func WithStateHook(fn func(State)) Option {
	return func(c *config) {
		if fn != nil {
			c.stateHooks = append(c.stateHooks, fn)
		}
	}
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func (c *config) validate() error {
	switch c.autoRemove {
	case AutoRemoveInterval:
		if c.autoRemoveInterval < time.Second {
			return invalidOption("auto-remove interval must be at least 1s")
		}
	case AutoRemoveNone:
	case AutoRemoveNative:
		return ErrNativeAutoRemove
	default:
		return invalidOption("unknown auto-remove mode " + string(c.autoRemove))
	}

	if c.ttl <= 0 {
		return invalidOption("ttl must be positive")
	}
	if c.touchAfter < 0 {
		return invalidOption("touchAfter must not be negative")
	}
	if c.collection == nil && len(c.connections) == 0 {
		return ErrMissingConnection
	}
	return nil
}
