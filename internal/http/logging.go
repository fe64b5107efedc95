package http

import (
	"context"
	"log/slog"

	"github.com/example/school-timetable/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger prefers the request logger and tags it with the handler,
// operation and the caller's identity.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	if principal, ok := PrincipalFromContext(ctx); ok {
		attrs = append([]any{"principal_id", principal.UserID, "role", string(principal.Role)}, attrs...)
	}
	return logging.Scoped(ctx, fallback, "handler", handlerName, operation, attrs...)
}
