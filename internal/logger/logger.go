// Package logger configures the structured diagnostics logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds the configuration of the logger.
type Config struct {
	Level  slog.Level
	Format string
	Output io.Writer
}

// New creates a logger with the given config.
// Logs go to stderr so they never mix with rendered answers on stdout.
func New(config Config) *slog.Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	if config.Format == "json" {
		opts := &slog.HandlerOptions{
			Level: config.Level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{
						Key:   a.Key,
						Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
					}
				}
				return a
			},
		}
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	opts := &tint.Options{
		Level:      config.Level,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(out),
	}
	return slog.New(tint.NewHandler(out, opts))
}

// FromFlags creates a logger configuration from the CLI verbosity and the
// NEXUS_LOG_LEVEL / NEXUS_LOG_FORMAT environment variables.
func FromFlags(verbose bool) Config {
	config := Config{
		Level:  slog.LevelWarn,
		Format: "text",
	}

	switch strings.ToLower(os.Getenv("NEXUS_LOG_LEVEL")) {
	case "debug":
		config.Level = slog.LevelDebug
	case "info":
		config.Level = slog.LevelInfo
	case "warn":
		config.Level = slog.LevelWarn
	case "error":
		config.Level = slog.LevelError
	}

	if verbose {
		config.Level = slog.LevelDebug
	}

	if format := os.Getenv("NEXUS_LOG_FORMAT"); format != "" {
		config.Format = strings.ToLower(format)
	}

	return config
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
