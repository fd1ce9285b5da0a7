package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

func TestWhereClause(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		cond     orm.Condition
		name     string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "nil matches all",
			cond:    nil,
			wantSQL: "TRUE",
		},
		{
			name:     "live lookup",
			cond:     orm.Live("abc", now),
			wantSQL:  "(sid = $1 AND (has_expires = $2 OR expires > $3))",
			wantArgs: []any{"abc", false, now},
		},
		{
			name:     "reaper",
			cond:     orm.Lt(orm.FieldExpires, now),
			wantSQL:  "expires < $1",
			wantArgs: []any{now},
		},
		{
			name:    "empty or",
			cond:    orm.Or(),
			wantSQL: "FALSE",
		},
		{
			name:    "empty and",
			cond:    orm.And(),
			wantSQL: "TRUE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var args []any
			sql, err := whereClause(tt.cond, &args)
			require.NoError(t, err)
			require.Equal(t, tt.wantSQL, sql)
			require.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestWhereClause_Unsupported(t *testing.T) {
	t.Parallel()

	var args []any
	_, err := whereClause(orm.Eq(orm.FieldSession, "x"), &args)
	require.ErrorIs(t, err, ErrUnsupportedCondition)

	_, err = whereClause(orm.And(orm.Compare{Field: orm.FieldSID, Op: "LIKE", Value: "a%"}), &args)
	require.ErrorIs(t, err, ErrUnsupportedCondition)
}

func TestSetClause(t *testing.T) {
	t.Parallel()

	exp := orm.Time(time.Unix(1000, 0))
	mod := orm.Time(time.Unix(500, 0))

	sql, args := setClause(orm.Patch{Session: "payload", Expires: exp, LastModified: mod})
	require.Equal(t, "session = $1, expires = $2, has_expires = $3, last_modified = $4", sql)
	require.Equal(t, []any{"payload", exp, true, mod}, args)

	sql, args = setClause(orm.Patch{LastModified: mod})
	require.Equal(t, "last_modified = $1", sql)
	require.Equal(t, []any{mod}, args)
}
