package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type Config struct {
	// Verbose forces debug level regardless of Level.
	Verbose bool
	Level   slog.Level
	// File, when set, receives a JSON copy of every record.
	File string
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// ParseLevel maps a level name to a slog level. Unknown names are an error
// so that a typo in --log-level does not silently hide output.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (allowed: debug, info, warn, error)", s)
	}
}

var level = new(slog.LevelVar)

// SetLevel changes the level of the logger installed by Init.
func SetLevel(l slog.Level) { level.Set(l) }

// Init installs the default slog logger and returns a function that closes
// the log file, if any.
func Init(c Config) (func() error, error) {
	level.Set(c.Level)
	if c.Verbose {
		level.Set(slog.LevelDebug)
	}
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}

	closer := func() error { return nil }
	if path := strings.TrimSpace(c.File); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}))
		closer = f.Close
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return closer, nil
}
