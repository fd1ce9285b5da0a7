// Package mongo provides an orm adapter backed by MongoDB.
//
// Define connects a client, ensures a unique index on sid and returns a
// [Collection]. The payload is stored as a string or an embedded document
// depending on the model's payload type. No TTL index is created.
package mongo

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// AdapterName is the name connections use to select this adapter.
const AdapterName = "mongo"

var (
	ErrFailedToConnect = errors.New("mongo: failed to connect")
	ErrCreateIndex     = errors.New("mongo: failed to create sid index")
)

// Adapter opens one client per defined model and disconnects them on Close.
type Adapter struct {
	clients []*mongo.Client
	mu      sync.Mutex
}

// New returns a mongo adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Name() string { return AdapterName }

func (a *Adapter) Defaults() orm.Connection {
	return orm.Connection{
		Adapter:       AdapterName,
		Database:      "sessionstore",
		RetryAttempts: 3,
		RetryInterval: 5 * time.Second,
		PoolSize:      100,
	}
}

func (a *Adapter) Define(ctx context.Context, conn orm.Connection, model orm.Model) (orm.Collection, error) {
	client, err := connect(ctx, conn)
	if err != nil {
		return nil, err
	}

	coll := client.Database(conn.Database).Collection(model.TableName)
	if err := EnsureIndexes(ctx, coll); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	a.mu.Lock()
	a.clients = append(a.clients, client)
	a.mu.Unlock()

	return NewCollection(coll, model), nil
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	for _, c := range a.clients {
		errs = append(errs, c.Disconnect(ctx))
	}
	a.clients = nil
	return errors.Join(errs...)
}

// EnsureIndexes creates the unique sid index used by every lookup.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: string(orm.FieldSID), Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Join(ErrCreateIndex, err)
	}
	return nil
}

// connect retries cold starts (Atlas can take several seconds) with linear backoff.
func connect(ctx context.Context, conn orm.Connection) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(conn.URL)
	if conn.PoolSize > 0 {
		opts.SetMaxPoolSize(uint64(conn.PoolSize))
	}

	var lastErr error
	attempts := max(conn.RetryAttempts, 1)
	for i := range attempts {
		client, err := mongo.Connect(opts)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * conn.RetryInterval):
		}
	}
	return nil, errors.Join(ErrFailedToConnect, lastErr)
}

var _ orm.Adapter = (*Adapter)(nil)
