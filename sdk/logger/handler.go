package logger

import (
	"context"
	"log/slog"
)

// logHandler decorates records with the trace id and fans them out to the
// configured events.
type logHandler struct {
	slog.Handler
	traceIDFn TraceIDFn
	events    Events
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logHandler{Handler: h.Handler.WithAttrs(attrs), traceIDFn: h.traceIDFn, events: h.events}
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	return &logHandler{Handler: h.Handler.WithGroup(name), traceIDFn: h.traceIDFn, events: h.events}
}

func (h *logHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.traceIDFn != nil && ctx != nil {
		if id := h.traceIDFn(ctx); id != "" {
			r.AddAttrs(slog.String("trace_id", id))
		}
	}

	if fn := h.eventFor(r.Level); fn != nil {
		fn(ctx, toRecord(r))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *logHandler) eventFor(level slog.Level) EventFn {
	switch {
	case level >= slog.LevelError:
		return h.events.Error
	case level >= slog.LevelWarn:
		return h.events.Warn
	case level >= slog.LevelInfo:
		return h.events.Info
	default:
		return h.events.Debug
	}
}

func toRecord(r slog.Record) Record {
	attrs := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	return Record{
		Time:       r.Time,
		Message:    r.Message,
		Level:      r.Level,
		Attributes: attrs,
	}
}
