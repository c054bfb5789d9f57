// Package logger builds the process-wide slog logger. It carries the
// historical severity set of the service (debug, info, notice, warning,
// err) and mirrors every line into a daily logfile next to stdout.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Notice sits between info and warning; Err replaces slog's error so
// the historical severity names survive in the output.
const (
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelNotice  = slog.Level(2)
	LevelWarning = slog.LevelWarn
	LevelErr     = slog.LevelError
)

var levelNames = map[slog.Leveler]string{
	LevelNotice: "NOTICE",
	LevelErr:    "ERR",
}

// ParseLevel maps a configured level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "notice":
		return LevelNotice, nil
	case "warning":
		return LevelWarning, nil
	case "err":
		return LevelErr, nil
	}
	return 0, fmt.Errorf("logger: unknown level %q", name)
}

// New returns a text logger writing to stdout and, when logsDir is
// non-empty, to a YYYY-MM-DD.txt file under it.
func New(level string, logsDir string) (*slog.Logger, error) {
	lv, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stdout
	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log folder: %w", err)
		}
		out = io.MultiWriter(os.Stdout, &dailyFile{dir: logsDir})
	}

	h := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: lv,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					if name, ok := levelNames[lvl]; ok {
						a.Value = slog.StringValue(name)
					}
				}
			}
			return a
		},
	})
	return slog.New(h), nil
}

// Notice logs at the notice level, which slog has no method for.
func Notice(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelNotice, msg, args...)
}

// Err logs at the err level.
func Err(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelErr, msg, args...)
}

// dailyFile appends to one file per UTC day, opened per write so the
// date rollover needs no timer.
type dailyFile struct {
	mu  sync.Mutex
	dir string
}

func (w *dailyFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	return f.Write(p)
}
