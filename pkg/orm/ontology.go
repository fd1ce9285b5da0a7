package orm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dario.cat/mergo"
)

// Config lists the adapters and connections available to Initialize.
type Config struct {
	Adapters    map[string]Adapter
	Connections map[string]Connection
}

// Ontology holds the collections defined by Initialize.
type Ontology struct {
	collections map[string]Collection
	adapters    []Adapter
	mu          sync.Mutex
	closed      bool
}

// Initialize defines every model on the adapter its connection names.
// Adapter defaults are merged under each connection descriptor; values set
// by the caller win.
func Initialize(ctx context.Context, cfg Config, models ...Model) (*Ontology, error) {
	o := &Ontology{collections: make(map[string]Collection, len(models))}
	used := map[string]bool{}

	for _, m := range models {
		conn, ok := cfg.Connections[m.Connection]
		if !ok {
			_ = o.Teardown()
			return nil, fmt.Errorf("%w: %q", ErrUnknownConnection, m.Connection)
		}
		adapter, ok := cfg.Adapters[conn.Adapter]
		if !ok || adapter == nil {
			_ = o.Teardown()
			return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, conn.Adapter)
		}

		if err := mergo.Merge(&conn, adapter.Defaults()); err != nil {
			_ = o.Teardown()
			return nil, errors.Join(ErrInvalidConnections, err)
		}

		if !used[conn.Adapter] {
			used[conn.Adapter] = true
			o.adapters = append(o.adapters, adapter)
		}

		coll, err := adapter.Define(ctx, conn, m)
		if err != nil {
			_ = o.Teardown()
			return nil, errors.Join(ErrDefineFailed, err)
		}
		o.collections[m.Identity] = coll
	}

	return o, nil
}

// Collection returns the collection registered under identity.
func (o *Ontology) Collection(identity string) (Collection, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.collections[identity]
	return c, ok
}

// Teardown closes every adapter used by the ontology. It is idempotent.
func (o *Ontology) Teardown() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true

	var errs []error
	for _, a := range o.adapters {
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}
