package sessionstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/sessionstore/pkg/logger"
	"github.com/dmitrymomot/sessionstore/pkg/orm"
	"github.com/dmitrymomot/sessionstore/pkg/orm/memory"
)

// SessionStore is the contract session middleware depends on.
// Get returns nil, nil when no live session exists for id.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, id string, s *Session) error
	Touch(ctx context.Context, id string, s *Session) error
	Destroy(ctx context.Context, id string) error
	Length(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
	Close() error
}

// Store persists sessions in an orm.Collection.
//
// Operations issued while the backend is still connecting wait for it.
// Once initialization fails every operation returns ErrNotConnected.
type Store struct {
	cfg      *config
	conn     *connection
	log      *slog.Logger
	ontology *orm.Ontology
	reaper   *reaper
	cancel   context.CancelFunc
	codec    codec
	ids      identifier
	policy   expirationPolicy
	mu       sync.Mutex
	closed   atomic.Bool
}

// New validates the options and starts connecting to the backend.
// Configuration errors are returned immediately; connection errors are
// reported by Ready, Err and every later operation.
func New(opts ...Option) (*Store, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ids, err := newIdentifier(cfg.hash)
	if err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		cfg:    cfg,
		conn:   newConnection(cfg.stateHooks),
		log:    log.With(slog.String("component", "sessionstore"), slog.String("table", cfg.tableName)),
		cancel: cancel,
		codec:  resolveCodec(cfg),
		ids:    ids,
		policy: expirationPolicy{ttl: cfg.ttl, touchAfter: cfg.touchAfter},
	}

	s.conn.announce()
	s.conn.transition(StateConnecting, nil, nil)

	if cfg.collection != nil {
		s.connected(cfg.collection, nil)
		return s, nil
	}

	go s.connect(ctx)
	return s, nil
}

// Open creates a store and waits until the backend is ready.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Ready(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// NewStore returns an in-memory store when WithFallbackMemory is given,
// and a collection-backed Store otherwise.
func NewStore(opts ...Option) (SessionStore, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.fallbackMemory {
		return newMemoryStore(cfg)
	}
	return New(opts...)
}

func (s *Store) connect(ctx context.Context) {
	adapters := make(map[string]orm.Adapter, len(s.cfg.adapters)+1)
	adapters[memory.AdapterName] = memory.New()
	for name, a := range s.cfg.adapters {
		adapters[name] = a
	}

	payload := orm.PayloadJSON
	if payloadText(s.cfg) {
		payload = orm.PayloadText
	}
	model := orm.DefaultModel(s.cfg.tableName, payload)

	onto, err := orm.Initialize(ctx, orm.Config{
		Adapters:    adapters,
		Connections: s.cfg.connections,
	}, model)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to initialize session backend", slog.Any("error", err))
		s.conn.transition(StateDisconnected, nil, err)
		return
	}

	coll, _ := onto.Collection(model.Identity)
	s.connected(coll, onto)
}

// connected stores the handle and starts the reaper unless the store was
// closed in the meantime.
func (s *Store) connected(coll orm.Collection, onto *orm.Ontology) {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		if onto != nil {
			_ = onto.Teardown()
		}
		s.conn.transition(StateDisconnected, nil, ErrClosed)
		return
	}
	s.ontology = onto
	if s.cfg.autoRemove == AutoRemoveInterval {
		r, err := startReaper(s, s.cfg.autoRemoveInterval)
		if err != nil {
			s.log.Warn("failed to schedule expired session cleanup", slog.Any("error", err))
		}
		s.reaper = r
	}
	s.mu.Unlock()

	s.log.Debug("session backend connected")
	s.conn.transition(StateConnected, coll, nil)
}

// Ready blocks until the backend is connected or failed.
func (s *Store) Ready(ctx context.Context) error {
	if err := s.conn.wait(ctx); err != nil {
		return err
	}
	state, _, _, err := s.conn.snapshot()
	if state == StateDisconnected {
		return errors.Join(ErrNotConnected, err)
	}
	return nil
}

// State returns the current backend state.
func (s *Store) State() State {
	state, _, _, _ := s.conn.snapshot()
	return state
}

// Err returns the error that moved the store to disconnected, if any.
func (s *Store) Err() error {
	_, _, _, err := s.conn.snapshot()
	return err
}

// Subscribe returns a channel receiving every later state change and a
// function to stop the subscription. The channel is closed after
// StateDisconnected.
func (s *Store) Subscribe() (<-chan State, func()) {
	return s.conn.subscribe()
}

// Close stops the reaper and releases backend connections owned by the
// store. A collection passed with WithCollection is left open.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()

	s.mu.Lock()
	r, onto := s.reaper, s.ontology
	s.reaper, s.ontology = nil, nil
	s.mu.Unlock()

	if r != nil {
		r.stop()
	}
	var err error
	if onto != nil {
		err = onto.Teardown()
	}
	s.conn.transition(StateDisconnected, nil, ErrClosed)
	return err
}

// collection returns the backend handle, waiting while connecting. All
// waiters are released by a single broadcast, in no particular order.
func (s *Store) collection(ctx context.Context) (orm.Collection, error) {
	for {
		if s.closed.Load() {
			return nil, ErrClosed
		}
		state, coll, ready, err := s.conn.snapshot()
		switch state {
		case StateConnected:
			return coll, nil
		case StateDisconnected:
			return nil, errors.Join(ErrNotConnected, err)
		}
		select {
		case <-ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

var (
	_ SessionStore = (*Store)(nil)
	_ SessionStore = (*MemoryStore)(nil)
)
