package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionstore/pkg/health"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), nil)
		require.True(t, resp.Healthy())
		require.NoError(t, resp.Err())
	})

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{
			"a": func(context.Context) error { return nil },
			"b": func(context.Context) error { return nil },
		})
		require.True(t, resp.Healthy())
		require.Len(t, resp.Checks, 2)
		require.Equal(t, health.StatusHealthy, resp.Checks["a"].Status)
	})

	t.Run("one failing check", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{
			"ok":  func(context.Context) error { return nil },
			"bad": func(context.Context) error { return errors.New("down") },
		})
		require.False(t, resp.Healthy())
		require.ErrorIs(t, resp.Err(), health.ErrCheckFailed)
		require.Equal(t, "down", resp.Checks["bad"].Error)
		require.Equal(t, health.StatusHealthy, resp.Checks["ok"].Status)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, health.WithTimeout(10*time.Millisecond))
		require.ErrorIs(t, resp.Err(), health.ErrCheckTimeout)
	})
}
