package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

const uniqueViolation = "23505"

// Querier is the subset of pgx used by Collection.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Collection is an orm.Collection over one PostgreSQL table.
type Collection struct {
	q     Querier
	ping  func(context.Context) error
	model orm.Model
	table string
}

// NewCollection adopts an existing connection for model.
// The table must already exist; see db.MigrateSessions.
func NewCollection(q Querier, model orm.Model) *Collection {
	return &Collection{
		q:     q,
		model: model,
		table: pgx.Identifier{model.TableName}.Sanitize(),
	}
}

// Ping checks the pool behind a collection returned by Define.
// Collections built with NewCollection report healthy.
func (c *Collection) Ping(ctx context.Context) error {
	if c.ping == nil {
		return nil
	}
	return c.ping(ctx)
}

func (c *Collection) FindOne(ctx context.Context, where orm.Condition) (*orm.Record, error) {
	args := []any{}
	clause, err := whereClause(where, &args)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT sid, session, expires, has_expires, last_modified FROM %s WHERE %s LIMIT 1",
		c.table, clause,
	)

	var rec orm.Record
	err = c.q.QueryRow(ctx, query, args...).Scan(
		&rec.SID, &rec.Session, &rec.Expires, &rec.HasExpires, &rec.LastModified,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Collection) Update(ctx context.Context, where orm.Condition, patch orm.Patch) (int64, error) {
	set, args := setClause(patch)
	if set == "" {
		return c.Count(ctx, where)
	}

	clause, err := whereClause(where, &args)
	if err != nil {
		return 0, err
	}

	tag, err := c.q.Exec(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE %s", c.table, set, clause), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *Collection) Create(ctx context.Context, rec orm.Record) error {
	if err := c.model.BeforeValidate(&rec); err != nil {
		return err
	}

	_, err := c.q.Exec(ctx,
		fmt.Sprintf("INSERT INTO %s (sid, session, expires, has_expires, last_modified) VALUES ($1, $2, $3, $4, $5)", c.table),
		rec.SID, rec.Session, rec.Expires, rec.HasExpires, rec.LastModified,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(orm.ErrDuplicateSID, err)
	}
	return err
}

func (c *Collection) Destroy(ctx context.Context, where orm.Condition) (int64, error) {
	args := []any{}
	clause, err := whereClause(where, &args)
	if err != nil {
		return 0, err
	}

	tag, err := c.q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", c.table, clause), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *Collection) Count(ctx context.Context, where orm.Condition) (int64, error) {
	args := []any{}
	clause, err := whereClause(where, &args)
	if err != nil {
		return 0, err
	}

	var n int64
	err = c.q.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s WHERE %s", c.table, clause), args...).Scan(&n)
	return n, err
}

// Drop removes all rows but keeps the table, so the store stays usable.
func (c *Collection) Drop(ctx context.Context) error {
	_, err := c.q.Exec(ctx, fmt.Sprintf("DELETE FROM %s", c.table))
	return err
}

var _ orm.Collection = (*Collection)(nil)
