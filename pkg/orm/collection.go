package orm

import "context"

// Collection executes persistence operations for one model.
// Implementations must be safe for concurrent use.
type Collection interface {
	// FindOne returns the first record matching where, or nil, nil when
	// nothing matches.
	FindOne(ctx context.Context, where Condition) (*Record, error)

	// Update applies patch to every matching record and returns the number
	// of affected records.
	Update(ctx context.Context, where Condition, patch Patch) (int64, error)

	// Create inserts a new record.
	Create(ctx context.Context, rec Record) error

	// Destroy removes matching records and returns how many were removed.
	Destroy(ctx context.Context, where Condition) (int64, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, where Condition) (int64, error)

	// Drop removes every record of the collection.
	Drop(ctx context.Context) error
}

// Adapter builds collections for a backend.
type Adapter interface {
	// Name is the identifier connections refer to.
	Name() string

	// Defaults returns connection settings merged under user-provided ones.
	Defaults() Connection

	// Define prepares the backend for model and returns its collection.
	Define(ctx context.Context, conn Connection, model Model) (Collection, error)

	// Close releases backend resources acquired by Define.
	Close() error
}

// Pinger is implemented by collections that can verify backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
