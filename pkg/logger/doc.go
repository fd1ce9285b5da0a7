// Package logger builds slog loggers with context extraction and optional
// Sentry reporting.
//
// Context extractors add request- or command-scoped attributes on every
// call:
//
//	log := logger.New(logger.Config{Format: "text"}, logger.ValueExtractor("command"))
//	ctx := logger.WithValue(ctx, "command", "reap")
//	log.InfoContext(ctx, "removed expired sessions", slog.Int64("count", n))
//
// NewWithSentry also forwards warnings and errors to Sentry. Errors become
// Sentry issues. With an empty DSN it behaves like New, so the same code
// path works without Sentry. Call Flush before the process exits.
//
// NewNope returns a logger that discards everything; libraries use it when
// no logger is configured.
package logger
