// Package db provides PostgreSQL utilities for the session backend.
//
// This package wraps [github.com/jackc/pgx/v5/pgxpool] for connection pooling
// and [github.com/pressly/goose/v3] for creating the bundled session table.
//
// # Configuration
//
// [Config] can be filled from the environment:
//
//	DATABASE_URL                - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection retry attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//
// # Usage
//
//	pool, err := db.Connect(ctx, db.DefaultConfig(os.Getenv("DATABASE_URL")))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	schema, err := db.SessionSchema("sessions", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := db.MigrateSessions(ctx, pool, schema, logger); err != nil {
//		log.Fatal(err)
//	}
//
// The session table is versioned in its own goose table (<table>_schema_version),
// so stores using different table names never share migration state.
//
// # Error Handling
//
// Errors are wrapped with [errors.Join] around sentinel values such as
// [ErrFailedToOpenDBConnection] and [ErrApplyMigrations].
package db
