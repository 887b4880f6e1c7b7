package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// logStampLayout sorts lexically in chronological order
const logStampLayout = "2006-01-02T15-04-05"

// LogLevel is debug in dev and info everywhere else
func LogLevel(environment string) slog.Level {
	if environment == "dev" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewLogger builds the JSON logger for a binary. When cfg.LogDir is set the
// output is teed into a fresh "<name>-<timestamp>.log" file there; the
// returned closer releases it. The closer is never nil.
func NewLogger(cfg *Config, name string, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	out := stdout
	var closer io.Closer = nopCloser{}

	if cfg.LogDir != "" {
		f, err := OpenLogFile(cfg.LogDir, name, cfg.LogMaxFiles, time.Now())
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(stdout, f)
		closer = f
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: LogLevel(cfg.Environment),
	})).With("app", name)

	return logger, closer, nil
}

// OpenLogFile creates dir/<name>-<timestamp>.log and prunes the oldest files
// of the same name so at most keep remain. A prune failure is reported on
// stderr only.
func OpenLogFile(dir, name string, keep int, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.log", name, now.UTC().Format(logStampLayout)))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	if err := pruneLogs(dir, name, keep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: pruning %s logs: %v\n", name, err)
	}

	return f, nil
}

func pruneLogs(dir, name string, keep int) error {
	if keep <= 0 {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(dir, name+"-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}

	slices.Sort(files)
	for _, stale := range files[:len(files)-keep] {
		if err := os.Remove(stale); err != nil {
			return err
		}
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
