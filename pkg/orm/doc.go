// Package orm defines the persistence contract the session store delegates to.
//
// The store never talks to a database directly. It asks an [Adapter] to define
// a [Collection] for the bundled session [Model] and then issues FindOne,
// Update, Create, Destroy, Count and Drop calls with backend-neutral
// [Condition] values.
//
// # Conditions
//
// Conditions are built from comparisons and boolean groups:
//
//	live := orm.And(
//		orm.Eq(orm.FieldSID, sid),
//		orm.Or(orm.Eq(orm.FieldHasExpires, false), orm.Gt(orm.FieldExpires, now)),
//	)
//
// Every condition can be evaluated in memory with Match. SQL and document
// adapters translate them into native filters.
//
// # Initialization
//
// [Initialize] wires models to adapters through named connections:
//
//	ont, err := orm.Initialize(ctx, orm.Config{
//		Adapters: map[string]orm.Adapter{"postgres": postgres.New()},
//		Connections: map[string]orm.Connection{
//			"sessionstore": {Adapter: "postgres", URL: os.Getenv("DATABASE_URL")},
//		},
//	}, orm.DefaultModel("sessions", orm.PayloadText))
//
// Connection descriptors may also be loaded from YAML with [LoadConnections].
// Adapter defaults are merged under descriptors, so only overrides need to be
// spelled out.
//
// # Adapters
//
// Implementations live in subpackages: memory, postgres, redis and mongo.
package orm
