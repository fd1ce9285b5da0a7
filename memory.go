package sessionstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionstore/pkg/cache"
	"github.com/dmitrymomot/sessionstore/pkg/logger"
	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

type memoryEntry struct {
	lastModified time.Time
	payload      any
}

// MemoryStore keeps sessions in process memory. It is meant for tests and
// single-instance deployments; sessions do not survive a restart.
type MemoryStore struct {
	cache  *cache.Memory[memoryEntry]
	log    *slog.Logger
	now    func() time.Time
	codec  codec
	ids    identifier
	policy expirationPolicy
}

// NewMemoryStore returns an in-memory store. Connection options are ignored.
func NewMemoryStore(opts ...Option) (*MemoryStore, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return newMemoryStore(cfg)
}

func newMemoryStore(cfg *config) (*MemoryStore, error) {
	if cfg.autoRemove == AutoRemoveNative {
		return nil, ErrNativeAutoRemove
	}
	if cfg.ttl <= 0 || cfg.touchAfter < 0 || cfg.memoryLimit < 0 {
		return nil, invalidOption("durations and memory limit out of range")
	}
	ids, err := newIdentifier(cfg.hash)
	if err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}
	log = log.With(slog.String("component", "sessionstore"), slog.String("backend", "memory"))

	cleanup := cfg.autoRemoveInterval
	if cfg.autoRemove == AutoRemoveNone {
		cleanup = 0
	}
	cacheOpts := []cache.Option{
		cache.WithClock(cfg.now),
		cache.WithCleanupInterval(cleanup),
		cache.WithMaxEntries(cfg.memoryLimit),
	}
	if cfg.memoryLimit > 0 {
		cacheOpts = append(cacheOpts, cache.WithEvictCallback(func(sid string) {
			log.Debug("session evicted", slog.String("sid", sid))
		}))
	}
	c := cache.NewMemory[memoryEntry](cacheOpts...)

	return &MemoryStore{
		cache:  c,
		log:    log,
		now:    cfg.now,
		codec:  resolveCodec(cfg),
		ids:    ids,
		policy: expirationPolicy{ttl: cfg.ttl, touchAfter: cfg.touchAfter},
	}, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	e, err := m.cache.Get(ctx, m.ids.normalize(id))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapCacheErr(err)
	}

	sess, err := m.codec.decodeSafe(e.payload)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to decode session", slog.Any("error", err))
		return nil, err
	}
	if m.policy.tracking() {
		sess.LastModified = e.lastModified
	}
	return sess, nil
}

func (m *MemoryStore) Set(ctx context.Context, id string, sess *Session) error {
	sess = sess.clone()
	sess.LastModified = time.Time{}

	payload, err := m.codec.encodeSafe(sess)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to encode session", slog.Any("error", err))
		return err
	}

	now := m.now()
	e := memoryEntry{payload: payload}
	if m.policy.tracking() {
		e.lastModified = *orm.Time(now)
	}
	return mapCacheErr(m.cache.Put(ctx, m.ids.normalize(id), e, m.policy.expiresAt(sess, now)))
}

func (m *MemoryStore) Touch(ctx context.Context, id string, sess *Session) error {
	now := m.now()
	if !m.policy.shouldTouch(sess, now) {
		return nil
	}

	// Only expiry and lastModified change; the payload written by the last Set stays.
	err := m.cache.Update(ctx, m.ids.normalize(id), func(e memoryEntry) (memoryEntry, time.Time, error) {
		if m.policy.tracking() {
			e.lastModified = *orm.Time(now)
		}
		return e, m.policy.expiresAt(sess, now), nil
	})
	if errors.Is(err, cache.ErrNotFound) {
		return ErrNotFound
	}
	return mapCacheErr(err)
}

func (m *MemoryStore) Destroy(ctx context.Context, id string) error {
	return mapCacheErr(m.cache.Delete(ctx, m.ids.normalize(id)))
}

func (m *MemoryStore) Length(ctx context.Context) (int64, error) {
	n, err := m.cache.Len(ctx)
	if err != nil {
		return 0, mapCacheErr(err)
	}
	return int64(n), nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	return mapCacheErr(m.cache.Clear(ctx))
}

// Close stops the expiry janitor. Later operations return ErrClosed.
func (m *MemoryStore) Close() error {
	return m.cache.Close()
}

func mapCacheErr(err error) error {
	if errors.Is(err, cache.ErrClosed) {
		return errors.Join(ErrClosed, err)
	}
	return err
}
