package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,47}$`)

// Schema holds the DDL of the bundled session table.
type Schema struct {
	Table        string
	VersionTable string
	Up           string
	Down         string
}

// SessionSchema renders the session table DDL for table.
// jsonPayload selects a jsonb payload column instead of text.
func SessionSchema(table string, jsonPayload bool) (Schema, error) {
	if !tableNameRe.MatchString(table) {
		return Schema{}, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	payload := "text"
	if jsonPayload {
		payload = "jsonb"
	}
	ident := pgx.Identifier{table}.Sanitize()
	index := pgx.Identifier{table + "_expires_idx"}.Sanitize()

	return Schema{
		Table:        table,
		VersionTable: table + "_schema_version",
		Up: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	sid text PRIMARY KEY,
	session %s,
	expires timestamptz,
	has_expires boolean NOT NULL DEFAULT false,
	last_modified timestamptz
);
CREATE INDEX IF NOT EXISTS %s ON %s (expires);`, ident, payload, index, ident),
		Down: fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, ident),
	}, nil
}

// MigrateSessions creates the session table if it does not exist yet.
// Each table tracks its schema version separately, so several stores can
// share one database.
func MigrateSessions(ctx context.Context, pool *pgxpool.Pool, schema Schema, log *slog.Logger) error {
	// Shares the pool's connections; closing it would close the pool.
	db := stdlib.OpenDBFromPool(pool)

	store, err := database.NewStore(database.DialectPostgres, schema.VersionTable)
	if err != nil {
		return errors.Join(ErrCreateMigrator, err)
	}

	provider, err := goose.NewProvider("", db, nil,
		goose.WithStore(store),
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(goose.NewGoMigration(1,
			&goose.GoFunc{RunTx: execTx(schema.Up)},
			&goose.GoFunc{RunTx: execTx(schema.Down)},
		)),
	)
	if err != nil {
		return errors.Join(ErrCreateMigrator, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	if log != nil {
		for _, r := range results {
			log.InfoContext(ctx, "session schema migrated",
				slog.String("table", schema.Table),
				slog.Int64("version", r.Source.Version),
				slog.Duration("duration", r.Duration),
			)
		}
	}

	return nil
}

func execTx(query string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query)
		return err
	}
}
