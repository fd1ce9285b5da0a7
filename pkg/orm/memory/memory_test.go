package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
	"github.com/dmitrymomot/sessionstore/pkg/orm/memory"
)

func TestCollection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	coll := memory.NewCollection(orm.DefaultModel("", orm.PayloadJSON))

	require.NoError(t, coll.Create(ctx, orm.Record{SID: "a", Session: map[string]any{"k": "v"}, Expires: orm.Time(now.Add(time.Hour))}))
	require.NoError(t, coll.Create(ctx, orm.Record{SID: "b", Expires: orm.Time(now.Add(-time.Hour))}))
	require.ErrorIs(t, coll.Create(ctx, orm.Record{SID: "a"}), orm.ErrDuplicateSID)
	require.ErrorIs(t, coll.Create(ctx, orm.Record{}), orm.ErrMissingSID)

	rec, err := coll.FindOne(ctx, orm.Live("a", now))
	require.NoError(t, err)
	require.True(t, rec.HasExpires)
	require.Equal(t, map[string]any{"k": "v"}, rec.Session)

	rec.Session.(map[string]any)["k"] = "mutated"
	again, err := coll.FindOne(ctx, orm.Eq(orm.FieldSID, "a"))
	require.NoError(t, err)
	require.Equal(t, "v", again.Session.(map[string]any)["k"], "results are copies")

	rec, err = coll.FindOne(ctx, orm.Live("b", now))
	require.NoError(t, err)
	require.Nil(t, rec)

	n, err := coll.Update(ctx, orm.Eq(orm.FieldSID, "missing"), orm.Patch{Session: "x"})
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = coll.Update(ctx, orm.Eq(orm.FieldSID, "b"), orm.Patch{Expires: orm.Time(now.Add(time.Hour))})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = coll.Count(ctx, orm.Gt(orm.FieldExpires, now))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = coll.Destroy(ctx, orm.Lt(orm.FieldExpires, now.Add(2*time.Hour)))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.NoError(t, coll.Create(ctx, orm.Record{SID: "c"}))
	require.NoError(t, coll.Drop(ctx))
	n, err = coll.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCollection_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coll := memory.NewCollection(orm.DefaultModel("", ""))
	_, err := coll.Count(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAdapter_DefineSharesTables(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := memory.New()

	c1, err := a.Define(ctx, a.Defaults(), orm.DefaultModel("t", ""))
	require.NoError(t, err)
	c2, err := a.Define(ctx, a.Defaults(), orm.DefaultModel("t", ""))
	require.NoError(t, err)
	c3, err := a.Define(ctx, a.Defaults(), orm.DefaultModel("other", ""))
	require.NoError(t, err)

	require.NoError(t, c1.Create(ctx, orm.Record{SID: "a"}))

	n, err := c2.Count(ctx, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = c3.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
	require.NoError(t, a.Close())
}
