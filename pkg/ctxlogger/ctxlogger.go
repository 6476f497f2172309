// Package ctxlogger lets request-scoped attributes (request id, room id)
// ride along on the context and appear on every log record emitted with
// that context.
package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		record.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, record)
}

// AppendCtx returns a context carrying attr in addition to any attributes
// already attached.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	attrs, _ := parent.Value(ctxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(attrs)+1)
	merged = append(merged, attrs...)
	merged = append(merged, attr)

	return context.WithValue(parent, ctxKey{}, merged)
}
