package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{ name string }

// WithValue returns a context carrying v under key for ValueExtractor.
func WithValue(ctx context.Context, key string, v any) context.Context {
	return context.WithValue(ctx, ctxKey{name: key}, v)
}

// ValueExtractor adds the value stored by WithValue under key.
func ValueExtractor(key string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v := ctx.Value(ctxKey{name: key})
		if v == nil {
			return slog.Attr{}, false
		}
		return slog.Any(key, v), true
	}
}
