// Package logging builds the process logger.
//
// Every record carries the logger name, the service name and, when emitted
// with a request context, the correlation id:
//
//	log := logging.Named(base, "access")
//	log.InfoContext(r.Context(), "request served", "status", 200)
//
// Callers must use the *Context methods for the correlation id to be attached.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/tinoosan/apishell/internal/config"
	"github.com/tinoosan/apishell/internal/correlation"
)

const (
	KeyLogger        = "logger"
	KeyService       = "service"
	KeyCorrelationID = "correlation_id"

	rootName = "root"
)

// Options selects the minimum level and console rendering.
type Options struct {
	Level   string
	Format  string
	Service string
}

// New returns a logger writing console records to w in the configured format
// and JSON records to every writer in extra. Records below the configured
// level are dropped by all of them.
func New(opts Options, w io.Writer, extra ...io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var h slog.Handler
	if opts.Format == config.FormatJSON {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	if len(extra) > 0 {
		h = fanout{h, slog.NewJSONHandler(multiWriter(extra), hopts)}
	}

	ch := NewContextHandler(h)
	if opts.Service != "" {
		return slog.New(ch.WithAttrs([]slog.Attr{slog.String(KeyService, opts.Service)}))
	}
	return slog.New(ch)
}

// Named returns a logger whose records carry name as the logger field.
func Named(l *slog.Logger, name string) *slog.Logger {
	if ch, ok := l.Handler().(*ContextHandler); ok {
		c := *ch
		c.name = name
		return slog.New(&c)
	}
	return l.With(KeyLogger, name)
}

// ParseLevel converts a level string to slog.Level.
// Unrecognized values default to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// ContextHandler adds the logger name and the request correlation id to
// every record before passing it on.
type ContextHandler struct {
	slog.Handler
	name string
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h, name: rootName}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(slog.String(KeyLogger, h.name))
	if id, ok := correlation.From(ctx); ok {
		r.AddAttrs(slog.String(KeyCorrelationID, id))
	}
	// Sink failures never reach the caller.
	_ = h.Handler.Handle(ctx, r)
	return nil
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs), name: h.name}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name), name: h.name}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// multiWriter writes to every writer and ignores their errors, unlike
// io.MultiWriter which stops at the first failure.
type multiWriter []io.Writer

func (m multiWriter) Write(p []byte) (int, error) {
	for _, w := range m {
		_, _ = w.Write(p)
	}
	return len(p), nil
}
