package logging

import (
	"context"
	"log/slog"
)

// runIDHandler stamps every record with the run's correlation ID unless the
// record already carries one from context.
type runIDHandler struct {
	base  slog.Handler
	runID string
	has   bool
}

func newRunIDHandler(base slog.Handler, runID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	if runID == "" {
		return base
	}
	return &runIDHandler{base: base, runID: runID}
}

func (h *runIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *runIDHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.has {
		present := false
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == FieldCorrelationID {
				present = true
				return false
			}
			return true
		})
		if !present {
			record.AddAttrs(slog.String(FieldCorrelationID, h.runID))
		}
	}
	return h.base.Handle(ctx, record)
}

func (h *runIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runIDHandler{
		base:  h.base.WithAttrs(attrs),
		runID: h.runID,
		has:   h.has || HasAttrKey(attrs, FieldCorrelationID),
	}
}

func (h *runIDHandler) WithGroup(name string) slog.Handler {
	return &runIDHandler{base: h.base.WithGroup(name), runID: h.runID, has: h.has}
}
