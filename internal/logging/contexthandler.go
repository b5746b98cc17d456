package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns attributes describing what the bridge is showing
// when a record is written, such as the open view.
type ContextProvider func() []slog.Attr

type ctxAttrsKey struct{}

// WithAttrs returns a context whose records carry attrs in addition to
// the provider's.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev := attrsFrom(ctx)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(append(merged, prev...), attrs...)
	return context.WithValue(ctx, ctxAttrsKey{}, merged)
}

func attrsFrom(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(ctxAttrsKey{}).([]slog.Attr)
	return attrs
}

// ContextHandler adds the provider's attributes and those carried by the
// record's context before passing it on.
type ContextHandler struct {
	slog.Handler
	provider ContextProvider
}

func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{Handler: inner, provider: provider}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	r.AddAttrs(attrsFrom(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.Handler.WithAttrs(attrs), h.provider)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewContextHandler(h.Handler.WithGroup(name), h.provider)
}
