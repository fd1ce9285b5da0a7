package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the base log handler.
type Config struct {
	// Output defaults to os.Stderr so command output on stdout stays clean.
	Output io.Writer
	Format string     `env:"LOG_FORMAT" envDefault:"json"`
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

func (c Config) handler() slog.Handler {
	out := c.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: c.Level}
	if strings.EqualFold(c.Format, "text") {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

// New creates a logger with optional context extractors.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(withExtractors(cfg.handler(), extractors))
}
