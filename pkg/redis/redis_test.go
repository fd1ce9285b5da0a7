package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL returns ErrEmptyConnectionURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, "")
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
	})

	t.Run("invalid URLs return ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		for name, url := range map[string]string{
			"http scheme":      "http://localhost:6379",
			"no scheme":        "localhost:6379",
			"postgres scheme":  "postgres://localhost:6379",
			"invalid port":     "redis://localhost:notaport",
			"invalid database": "redis://localhost:6379/notanumber",
		} {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				client, err := Open(ctx, url)
				require.Nil(t, client)
				require.ErrorIs(t, err, ErrFailedToParseURL)
			})
		}
	})
}

func TestOpen_Miniredis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	client, err := Open(context.Background(), "redis://"+mr.Addr(), WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, Healthcheck(client)(context.Background()))
}

func TestOpen_ConnectionFailed(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := Open(context.Background(), "redis://"+addr,
		WithRetry(2, time.Millisecond),
		WithTimeouts(0, 0, 100*time.Millisecond),
	)
	require.Nil(t, client)
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.True(t, errors.Is(err, ErrHealthcheckFailed))
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("calls Close on the client", func(t *testing.T) {
		t.Parallel()

		c := &mockCloser{}
		require.NoError(t, Shutdown(c)(context.Background()))
		require.True(t, c.closed)
	})

	t.Run("propagates Close error", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("close error")
		c := &mockCloser{err: expected}
		require.Equal(t, expected, Shutdown(c)(context.Background()))
	})

	t.Run("already closed client is not an error", func(t *testing.T) {
		t.Parallel()

		c := &mockCloser{err: redis.ErrClosed}
		require.NoError(t, Shutdown(c)(context.Background()))
	})
}

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := wait(ctx, 10*time.Second)
		require.Equal(t, context.Canceled, err)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("timeout completes normally", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 20*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	require.Equal(t, 10, opts.poolSize)
	require.Equal(t, 3, opts.retryAttempts)

	WithPoolSize(25)(opts)
	WithPoolSize(0)(opts)
	WithMinIdleConns(4)(opts)
	WithRetry(5, time.Second)(opts)
	WithTimeouts(7*time.Second, 0, time.Second)(opts)

	require.Equal(t, 25, opts.poolSize)
	require.Equal(t, 4, opts.minIdleConns)
	require.Equal(t, 5, opts.retryAttempts)
	require.Equal(t, time.Second, opts.retryInterval)
	require.Equal(t, 7*time.Second, opts.readTimeout)
	require.Equal(t, 3*time.Second, opts.writeTimeout)
	require.Equal(t, time.Second, opts.dialTimeout)
}

type mockCloser struct {
	err    error
	closed bool
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

var _ io.Closer = (*mockCloser)(nil)
