// Package sessionstore persists web sessions through a pluggable ORM
// collection. It provides the get/set/touch/destroy/length/clear contract
// session middleware expects.
//
// A Store is created with adapter connections or an existing collection:
//
//	store, err := sessionstore.Open(ctx,
//	    sessionstore.WithAdapters(postgres.New()),
//	    sessionstore.WithConnections(map[string]orm.Connection{
//	        orm.DefaultConnection: {Adapter: postgres.AdapterName, URL: dsn},
//	    }),
//	    sessionstore.WithTouchAfter(time.Hour),
//	)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
// New returns as soon as the options are valid and connects in the
// background. Operations issued meanwhile wait for the backend; if it fails
// they return ErrNotConnected joined with the cause. Subscribe and
// WithStateHook report the init, connecting, connected and disconnected
// states.
//
// # Serialization
//
// Sessions are stored as JSON text by default. WithStringify(false) stores
// them as structured documents, with a CanonicalCookie reduced to its
// persisted fields. WithSerializer and WithUnserializer replace either half.
//
// # Expiration
//
// A session expires at its cookie's expiry, or after the TTL (14 days by
// default). Touch slides the expiry; WithTouchAfter skips touches issued
// sooner than the interval after the last write. Expired sessions are
// invisible to Get and removed by a background reaper every ten minutes
// unless WithAutoRemove(AutoRemoveNone) is given.
//
// # Identifiers
//
// WithHash stores a salted digest of each session id instead of the id.
package sessionstore
