// Package memory provides an in-process orm adapter.
//
// Records live in a map guarded by a mutex. It is meant for tests and
// single-node deployments where sessions may be lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

// AdapterName is the name connections use to select this adapter.
const AdapterName = "memory"

// Adapter creates in-memory collections. Each table gets its own collection;
// defining the same table twice returns the same collection.
type Adapter struct {
	tables map[string]*Collection
	mu     sync.Mutex
}

// New returns an empty memory adapter.
func New() *Adapter {
	return &Adapter{tables: map[string]*Collection{}}
}

func (a *Adapter) Name() string { return AdapterName }

func (a *Adapter) Defaults() orm.Connection {
	return orm.Connection{Adapter: AdapterName}
}

func (a *Adapter) Define(_ context.Context, _ orm.Connection, model orm.Model) (orm.Collection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.tables[model.TableName]; ok {
		return c, nil
	}
	c := NewCollection(model)
	a.tables[model.TableName] = c
	return c, nil
}

func (a *Adapter) Close() error { return nil }

// Collection is a map-backed orm.Collection.
type Collection struct {
	rows  map[string]orm.Record
	model orm.Model
	mu    sync.RWMutex
}

// NewCollection returns an empty collection for model.
func NewCollection(model orm.Model) *Collection {
	return &Collection{rows: map[string]orm.Record{}, model: model}
}

func (c *Collection) FindOne(ctx context.Context, where orm.Condition) (*orm.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if sid, ok := orm.SIDOf(where); ok {
		rec, found := c.rows[sid]
		if !found || !orm.Matches(where, rec) {
			return nil, nil
		}
		out := rec.Clone()
		return &out, nil
	}

	for _, sid := range c.sortedKeys() {
		if rec := c.rows[sid]; orm.Matches(where, rec) {
			out := rec.Clone()
			return &out, nil
		}
	}
	return nil, nil
}

func (c *Collection) Update(ctx context.Context, where orm.Condition, patch orm.Patch) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for sid, rec := range c.rows {
		if !orm.Matches(where, rec) {
			continue
		}
		patch.Apply(&rec)
		if err := c.model.BeforeValidate(&rec); err != nil {
			return n, err
		}
		c.rows[sid] = rec.Clone()
		n++
	}
	return n, nil
}

func (c *Collection) Create(ctx context.Context, rec orm.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.model.BeforeValidate(&rec); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.rows[rec.SID]; exists {
		return orm.ErrDuplicateSID
	}
	c.rows[rec.SID] = rec.Clone()
	return nil
}

func (c *Collection) Destroy(ctx context.Context, where orm.Condition) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for sid, rec := range c.rows {
		if orm.Matches(where, rec) {
			delete(c.rows, sid)
			n++
		}
	}
	return n, nil
}

func (c *Collection) Count(ctx context.Context, where orm.Condition) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, rec := range c.rows {
		if orm.Matches(where, rec) {
			n++
		}
	}
	return n, nil
}

func (c *Collection) Drop(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = map[string]orm.Record{}
	return nil
}

// Put stores rec as-is, bypassing the model hook. Tests use it to seed
// records that the store itself would never write.
func (c *Collection) Put(rec orm.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[rec.SID] = rec.Clone()
}

// sortedKeys gives scans a stable order. Caller must hold the lock.
func (c *Collection) sortedKeys() []string {
	keys := make([]string, 0, len(c.rows))
	for k := range c.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	_ orm.Adapter    = (*Adapter)(nil)
	_ orm.Collection = (*Collection)(nil)
)
