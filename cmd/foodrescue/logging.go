package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// levelRouter splits records by severity: errors go to the err handler,
// everything else at or above min goes to out.
type levelRouter struct {
	min slog.Level
	out slog.Handler
	err slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.err.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{min: lr.min, out: lr.out.WithAttrs(attrs), err: lr.err.WithAttrs(attrs)}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{min: lr.min, out: lr.out.WithGroup(name), err: lr.err.WithGroup(name)}
}

// newLogHandler returns a JSON handler for format "json" and a text handler
// otherwise.
func newLogHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// newRouter builds the process logger's handler over the given streams. A
// non-nil file receives a copy of every record.
func newRouter(stdout, stderr, file io.Writer, level slog.Level, format string) *levelRouter {
	if file != nil {
		stdout = io.MultiWriter(stdout, file)
		stderr = io.MultiWriter(stderr, file)
	}
	return &levelRouter{
		min: level,
		out: newLogHandler(stdout, level, format),
		err: newLogHandler(stderr, level, format),
	}
}

// setupLogger installs the default logger. The returned func closes the log
// file, if one was opened.
func setupLogger(logPath string, level slog.Level, format string) (func(), error) {
	var file *os.File
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", logPath, err)
		}
		file = f
	}

	var sink io.Writer
	if file != nil {
		sink = file
	}
	slog.SetDefault(slog.New(newRouter(os.Stdout, os.Stderr, sink, level, format)))

	return func() {
		if file != nil {
			file.Close()
		}
	}, nil
}
