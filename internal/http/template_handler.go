package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/school-timetable/internal/application"
)

type templateService interface {
	GenerateTemplate(ctx context.Context, params application.GenerateTemplateParams) (application.TemplateResult, error)
	TemplateDefaults(principal application.Principal) (application.TemplateInput, error)
}

// TemplateHandler serves the template configuration form.
type TemplateHandler struct {
	service   templateService
	responder responder
	logger    *slog.Logger
}

func NewTemplateHandler(service templateService, logger *slog.Logger) *TemplateHandler {
	base := defaultLogger(logger)
	return &TemplateHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TemplateHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "TemplateHandler", operation, attrs...)
}

// Generate answers POST /templates/generate with the generated week, its grids
// and any configuration warnings. Nothing is stored.
func (h *TemplateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var input application.TemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.log(r.Context(), "Generate", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode template form", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Generate")
	result, err := h.service.GenerateTemplate(r.Context(), application.GenerateTemplateParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "template generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("warning_count", len(result.Warnings)).InfoContext(r.Context(), "template generated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, templateResponse{
		Days:     toDayDTOs(result.Days),
		Grids:    toGridDTOs(result.Grids),
		Warnings: toWarningDTOs(result.Warnings),
	})
}

// Defaults answers GET /templates/defaults with the values that prefill the form.
func (h *TemplateHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	defaults, err := h.service.TemplateDefaults(principal)
	if err != nil {
		h.log(r.Context(), "Defaults").ErrorContext(r.Context(), "template defaults failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, defaults)
}
