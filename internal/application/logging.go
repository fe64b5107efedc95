package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/school-timetable/internal/logging"
	"github.com/example/school-timetable/internal/timetable"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, base, "service", serviceName, operation, attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrTimetablePublished):
		return "published"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var collision *timetable.SlotCollisionError
	if errors.As(err, &collision) {
		return "slot_collision"
	}
	var rangeErr *timetable.SlotRangeError
	if errors.As(err, &rangeErr) {
		return "slot_range"
	}

	return "unexpected"
}
