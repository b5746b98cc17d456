package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// MultiHandler fans records out to the file or console handler and the
// OTel bridge.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler skips nil handlers so optional sinks can be passed as is.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: slices.DeleteFunc(slices.Clone(handlers), func(h slog.Handler) bool {
		return h == nil
	})}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(m.handlers, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

// Handle writes r to every handler enabled for its level. Handler errors
// are joined; one failing sink does not silence the others.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return m
	}
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = fn(h)
	}
	return &MultiHandler{handlers: out}
}
