package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/school-timetable/internal/application"
)

type selectionService interface {
	GetSelection(ctx context.Context, principal application.Principal) (application.Selection, error)
	SaveSelection(ctx context.Context, params application.SaveSelectionParams) (application.Selection, error)
}

// SelectionHandler remembers which class section each dashboard user last opened.
type SelectionHandler struct {
	service   selectionService
	responder responder
	logger    *slog.Logger
}

func NewSelectionHandler(service selectionService, logger *slog.Logger) *SelectionHandler {
	base := defaultLogger(logger)
	return &SelectionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SelectionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "SelectionHandler", operation, attrs...)
}

func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	selection, err := h.service.GetSelection(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Get").WarnContext(r.Context(), "selection lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSelectionDTO(selection))
}

func (h *SelectionHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var input application.SelectionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.log(r.Context(), "Put", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode selection", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Put", "class_id", input.ClassID, "section_id", input.SectionID)
	selection, err := h.service.SaveSelection(r.Context(), application.SaveSelectionParams{Principal: principal, Input: input})
	if err != nil {
		logger.ErrorContext(r.Context(), "selection save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "selection saved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSelectionDTO(selection))
}
