package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/timetable"
)

var (
	errBadRequestBody     = errors.New("request body is not valid JSON")
	errInvalidTimetableID = errors.New("timetable id is required")
	errInvalidPeriodID    = errors.New("period id is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application and placement errors into
// status codes and stable error codes.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		vErr      *application.ValidationError
		collision *timetable.SlotCollisionError
		rangeErr  *timetable.SlotRangeError
	)
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		if principal, ok := PrincipalFromContext(ctx); ok && principal.Authenticated() {
			r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
				ErrorCode: "FORBIDDEN",
				Message:   "your role may not perform this operation",
			})
			return
		}
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "UNAUTHENTICATED",
			Message:   "authentication required",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TIMETABLE_EXISTS",
			Message:   "a timetable already exists for this class section; resend with overwrite to replace it",
		})
	case errors.Is(err, application.ErrTimetablePublished):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TIMETABLE_PUBLISHED",
			Message:   "published timetables are read-only; unpublish first",
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "the submitted values are invalid",
			Errors:    vErr.FieldErrors,
		})
	case errors.As(err, &collision):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SLOT_COLLISION",
			Message:   err.Error(),
			Collision: &collisionDTO{
				Slot:     collision.Slot,
				Existing: toPeriodDTO(collision.Existing),
				Incoming: toPeriodDTO(collision.Incoming),
			},
		})
	case errors.As(err, &rangeErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "SLOT_OUT_OF_RANGE",
			Message:   err.Error(),
		})
	case errors.Is(err, application.ErrNotConfigured):
		r.writeJSON(ctx, w, http.StatusNotImplemented, errorResponse{ErrorCode: "NOT_CONFIGURED", Message: "this feature is not enabled"})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{ErrorCode: "INTERNAL", Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Collision *collisionDTO     `json:"collision,omitempty"`
}

type collisionDTO struct {
	Slot     int       `json:"slot"`
	Existing periodDTO `json:"existing"`
	Incoming periodDTO `json:"incoming"`
}
