// Package redis provides an orm adapter backed by Redis.
//
// Each record is stored as JSON under "<prefix><table>:<sid>". Lookups pinned to
// a sid are single GETs; other conditions scan the table's keyspace and filter
// in memory, which is acceptable for the reaper and for administrative counts.
// Keys carry no Redis TTL: expiry is enforced by queries and the store's reaper.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisconn "github.com/dmitrymomot/sessionstore/pkg/redis"
	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// AdapterName is the name connections use to select this adapter.
const AdapterName = "redis"

// Adapter opens a client per defined model and closes them on Close.
type Adapter struct {
	clients []goredis.UniversalClient
	mu      sync.Mutex
}

// New returns a redis adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return AdapterName }

func (a *Adapter) Defaults() orm.Connection {
	return orm.Connection{
		Adapter:       AdapterName,
		KeyPrefix:     "sess:",
		RetryAttempts: 3,
		RetryInterval: time.Second,
		PoolSize:      10,
	}
}

func (a *Adapter) Define(ctx context.Context, conn orm.Connection, model orm.Model) (orm.Collection, error) {
	read, err := durationOption(conn.Options, "read_timeout")
	if err != nil {
		return nil, err
	}
	write, err := durationOption(conn.Options, "write_timeout")
	if err != nil {
		return nil, err
	}
	dial, err := durationOption(conn.Options, "dial_timeout")
	if err != nil {
		return nil, err
	}

	client, err := redisconn.Open(ctx, conn.URL,
		redisconn.WithPoolSize(conn.PoolSize),
		redisconn.WithRetry(conn.RetryAttempts, conn.RetryInterval),
		redisconn.WithTimeouts(read, write, dial),
	)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.clients = append(a.clients, client)
	a.mu.Unlock()

	return NewCollection(client, conn.KeyPrefix, model), nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for _, c := range a.clients {
		errs = append(errs, redisconn.Shutdown(c)(context.Background()))
	}
	a.clients = nil
	return errors.Join(errs...)
}

func durationOption(opts map[string]string, key string) (time.Duration, error) {
	v, ok := opts[key]
	if !ok || v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("redis: option %s: %w", key, err)
	}
	return d, nil
}

var _ orm.Adapter = (*Adapter)(nil)
