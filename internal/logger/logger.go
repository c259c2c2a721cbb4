// Package logger sets up the process wide [slog] logger and lets callers carry
// log attributes along in a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const attrKey contextKey = "attrKey"

// ContextHandler implements [slog.Handler] and adds to each record any attributes
// stored in the context by [Ctx].
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(handler slog.Handler) ContextHandler {
	return ContextHandler{Handler: handler}
}

// Handle implements [slog.Handler].
func (h ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs, ok := ctx.Value(attrKey).([]slog.Attr); ok {
		record.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, record)
}

// Ctx returns a context carrying the given attributes on top of any already there.
func Ctx(ctx context.Context, toAppend ...slog.Attr) context.Context {
	existing, _ := ctx.Value(attrKey).([]slog.Attr)

	attrs := make([]slog.Attr, 0, len(existing)+len(toAppend))
	attrs = append(attrs, existing...)
	attrs = append(attrs, toAppend...)
	return context.WithValue(ctx, attrKey, attrs)
}

type Options struct {
	// Either "text" or "json". Anything else is treated as text.
	Format string

	// When set, logs are also written to <Dir>/<YYYY-MM-DD>.log.
	Dir string

	Level slog.Level
}

// New builds a logger writing to stderr, and to the day's log file if a
// directory was given. The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, err
		}
		f := &lumberjack.Logger{
			Filename: filepath.Join(opts.Dir, time.Now().Format(time.DateOnly)+".log"),
			MaxSize:  50, // megabytes
			MaxAge:   30, // days
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	return slog.New(NewContextHandler(newHandler(w, opts))), closer, nil
}

func newHandler(w io.Writer, opts Options) slog.Handler {
	hOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == "json" {
		return slog.NewJSONHandler(w, hOpts)
	}
	return slog.NewTextHandler(w, hOpts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
