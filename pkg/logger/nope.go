package logger

import "log/slog"

// NewNope returns a logger that drops every record. Stores and adapters use
// it until WithLogger supplies a real one.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
