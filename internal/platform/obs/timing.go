package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stores the request id used by Time and the HTTP middleware.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of an operation through the default slog logger.
// Use as: defer obs.Time(ctx, "op")(&err).
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		attrs := []any{
			slog.String("req_id", reqID),
			slog.String("op", name),
			slog.Int64("dur_ms", time.Since(start).Milliseconds()),
		}
		if errp != nil && *errp != nil {
			slog.WarnContext(ctx, "operation failed", append(attrs, slog.Any("err", *errp))...)
			return
		}
		slog.DebugContext(ctx, "operation done", attrs...)
	}
}
