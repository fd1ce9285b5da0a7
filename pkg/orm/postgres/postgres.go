// Package postgres provides an orm adapter backed by PostgreSQL through pgx.
//
// Define connects a pool (see pkg/db), creates the bundled session table if
// missing and returns a [Collection]. An existing pool can be adopted with
// [NewCollection] instead.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessionstore/pkg/db"
	"github.com/dmitrymomot/sessionstore/pkg/logger"
	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// AdapterName is the name connections use to select this adapter.
const AdapterName = "postgres"

// Option configures the adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for migration output.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// Adapter opens one pool per defined model and closes them on Close.
type Adapter struct {
	logger    *slog.Logger
	shutdowns []func(context.Context) error
	mu        sync.Mutex
}

// New returns a postgres adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string { return AdapterName }

func (a *Adapter) Defaults() orm.Connection {
	return orm.Connection{
		Adapter:       AdapterName,
		RetryAttempts: 3,
		RetryInterval: 5 * time.Second,
		PoolSize:      10,
	}
}

func (a *Adapter) Define(ctx context.Context, conn orm.Connection, model orm.Model) (orm.Collection, error) {
	schema, err := db.SessionSchema(model.TableName, model.Payload == orm.PayloadJSON)
	if err != nil {
		return nil, err
	}

	cfg := db.DefaultConfig(conn.URL)
	cfg.RetryAttempts = conn.RetryAttempts
	cfg.RetryInterval = conn.RetryInterval
	if conn.PoolSize > 0 {
		cfg.MaxOpenConns = int32(conn.PoolSize)
		cfg.MinConns = min(cfg.MinConns, cfg.MaxOpenConns)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.MigrateSessions(ctx, pool, schema, a.logger); err != nil {
		pool.Close()
		return nil, err
	}

	a.mu.Lock()
	a.shutdowns = append(a.shutdowns, db.Shutdown(pool))
	a.mu.Unlock()

	coll := NewCollection(pool, model)
	coll.ping = db.Healthcheck(pool)
	return coll, nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for _, shutdown := range a.shutdowns {
		errs = append(errs, shutdown(context.Background()))
	}
	a.shutdowns = nil
	return errors.Join(errs...)
}

var _ orm.Adapter = (*Adapter)(nil)
