package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestFanout(t *testing.T) {
	t.Parallel()

	var info, warn bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	log := slog.New(h).With(slog.String("table", "sessions"))

	log.Info("reaped")
	log.Warn("reap failed")

	require.Contains(t, info.String(), "reaped")
	require.Contains(t, info.String(), "reap failed")
	require.NotContains(t, warn.String(), "msg=reaped")
	require.Contains(t, warn.String(), "table=sessions")

	require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestFanout_KeepsGoingAfterError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := fanout{
		failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)},
		slog.NewTextHandler(&buf, nil),
	}

	err := h.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "hello", 0))
	require.Error(t, err)
	require.Contains(t, buf.String(), "hello")
}

func TestWithExtractors(t *testing.T) {
	t.Parallel()

	base := slog.NewTextHandler(&bytes.Buffer{}, nil)
	require.Same(t, base, withExtractors(base, []ContextExtractor{nil}).(*slog.TextHandler))

	var buf bytes.Buffer
	h := withExtractors(slog.NewTextHandler(&buf, nil), []ContextExtractor{ValueExtractor("sid")})
	log := slog.New(h).WithGroup("op")

	log.InfoContext(WithValue(context.Background(), "sid", "abc"), "get")
	require.Contains(t, buf.String(), "op.sid=abc")
}

var testTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
