package logging

import (
	"context"
	"log/slog"
)

// sessionIDHandler wraps another handler to inject a session_id attribute into
// every record, unless the record already carries one.
type sessionIDHandler struct {
	base      slog.Handler
	sessionID string
}

// WithSessionLogger returns a logger whose records are all tagged with sessionID.
func WithSessionLogger(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if sessionID == "" {
		return logger
	}
	return slog.New(&sessionIDHandler{base: logger.Handler(), sessionID: sessionID})
}

func (h *sessionIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *sessionIDHandler) Handle(ctx context.Context, record slog.Record) error {
	present := false
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == FieldSessionID {
			present = true
			return false
		}
		return true
	})
	if !present {
		record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	}
	return h.base.Handle(ctx, record)
}

func (h *sessionIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionIDHandler{
		base:      h.base.WithAttrs(attrs),
		sessionID: h.sessionID,
	}
}

func (h *sessionIDHandler) WithGroup(name string) slog.Handler {
	return &sessionIDHandler{
		base:      h.base.WithGroup(name),
		sessionID: h.sessionID,
	}
}
