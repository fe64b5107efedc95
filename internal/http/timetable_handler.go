package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/timetable"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type timetableService interface {
	SaveTimetable(ctx context.Context, params application.SaveTimetableParams) (application.SaveTimetableResult, error)
	GetTimetable(ctx context.Context, principal application.Principal, id string) (timetable.Timetable, error)
	ListTimetables(ctx context.Context, params application.ListTimetablesParams) ([]timetable.Timetable, error)
	WeekGrid(ctx context.Context, principal application.Principal, id string) ([]application.DayGrid, error)
	TeacherConflicts(ctx context.Context, principal application.Principal, id string) ([]application.ConflictWarning, error)
	PublishTimetable(ctx context.Context, principal application.Principal, id string) (timetable.Timetable, error)
	UnpublishTimetable(ctx context.Context, principal application.Principal, id string) (timetable.Timetable, error)
	AddPeriod(ctx context.Context, params application.AddPeriodParams) (timetable.Timetable, error)
	UpdatePeriod(ctx context.Context, params application.UpdatePeriodParams) (timetable.Timetable, error)
	DeletePeriod(ctx context.Context, params application.DeletePeriodParams) (timetable.Timetable, error)
	DeleteTimetable(ctx context.Context, principal application.Principal, id string) error
	ExportTimetable(ctx context.Context, principal application.Principal, id string, w io.Writer) error
}

// TimetableHandler serves stored timetables and the period editor.
type TimetableHandler struct {
	service   timetableService
	responder responder
	logger    *slog.Logger
}

func NewTimetableHandler(service timetableService, logger *slog.Logger) *TimetableHandler {
	base := defaultLogger(logger)
	return &TimetableHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TimetableHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "TimetableHandler", operation, attrs...)
}

func (h *TimetableHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// timetableID reads {id} from the route, writing 400 when it is blank.
func (h *TimetableHandler) timetableID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing timetable id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimetableID)
		return "", false
	}
	return id, true
}

func (h *TimetableHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	filter := application.TimetableFilter{
		ClassID:      strings.TrimSpace(query.Get("classId")),
		SectionID:    strings.TrimSpace(query.Get("sectionId")),
		AcademicYear: strings.TrimSpace(query.Get("academicYear")),
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := timetable.ParseStatus(raw)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
				FieldErrors: map[string]string{"status": "status must be draft or published"},
			})
			return
		}
		filter.Status = status
	}

	logger := h.log(r.Context(), "List")
	timetables, err := h.service.ListTimetables(r.Context(), application.ListTimetablesParams{Principal: principal, Filter: filter})
	if err != nil {
		logger.ErrorContext(r.Context(), "timetable list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(timetables)).InfoContext(r.Context(), "timetables listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTimetablesResponse{Timetables: toTimetableSummaries(timetables)})
}

// Save answers POST /timetables. 201 for a new timetable, 200 when an existing
// draft was overwritten.
func (h *TimetableHandler) Save(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var input application.SaveTimetableInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.log(r.Context(), "Save", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode timetable", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Save", "class_id", input.ClassID, "section_id", input.SectionID, "academic_year", input.AcademicYear)
	result, err := h.service.SaveTimetable(r.Context(), application.SaveTimetableParams{Principal: principal, Input: input})
	if err != nil {
		logger.ErrorContext(r.Context(), "timetable save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	if result.Replaced {
		status = http.StatusOK
	}
	logger.With("timetable_id", result.Timetable.ID, "replaced", result.Replaced).InfoContext(r.Context(), "timetable saved")
	replaced := result.Replaced
	h.responder.writeJSON(r.Context(), w, status, timetableResponse{Timetable: toTimetableDTO(result.Timetable), Replaced: &replaced})
}

func (h *TimetableHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "Get")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	tt, err := h.service.GetTimetable(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", "timetable_id", id).ErrorContext(r.Context(), "timetable fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timetableResponse{Timetable: toTimetableDTO(tt)})
}

func (h *TimetableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "Delete")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "timetable_id", id)
	if err := h.service.DeleteTimetable(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "timetable delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "timetable deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Grid answers GET /timetables/{id}/grid with the nine-column layout of every day.
func (h *TimetableHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "Grid")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	grids, err := h.service.WeekGrid(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Grid", "timetable_id", id).ErrorContext(r.Context(), "week grid failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, weekGridResponse{TimetableID: id, Grids: toGridDTOs(grids)})
}

// Conflicts answers GET /timetables/{id}/conflicts with teachers double-booked
// by other timetables of the same academic year.
func (h *TimetableHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "Conflicts")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	warnings, err := h.service.TeacherConflicts(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Conflicts", "timetable_id", id).ErrorContext(r.Context(), "teacher conflicts failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictsResponse{TimetableID: id, Conflicts: toConflictDTOs(warnings)})
}

// Export answers GET /timetables/{id}/export with an xlsx workbook.
func (h *TimetableHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "Export")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Export", "timetable_id", id)

	var buf bytes.Buffer
	if err := h.service.ExportTimetable(r.Context(), principal, id, &buf); err != nil {
		logger.ErrorContext(r.Context(), "timetable export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "timetable-"+id+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to write workbook", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "timetable exported")
}

func (h *TimetableHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "Publish", true)
}

func (h *TimetableHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, "Unpublish", false)
}

func (h *TimetableHandler) changeStatus(w http.ResponseWriter, r *http.Request, operation string, publish bool) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, operation)
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "timetable_id", id)
	var (
		tt  timetable.Timetable
		err error
	)
	if publish {
		tt, err = h.service.PublishTimetable(r.Context(), principal, id)
	} else {
		tt, err = h.service.UnpublishTimetable(r.Context(), principal, id)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "timetable status change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(tt.Status)).InfoContext(r.Context(), "timetable status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timetableResponse{Timetable: toTimetableDTO(tt)})
}

// AddPeriod answers POST /timetables/{id}/days/{day}/periods.
func (h *TimetableHandler) AddPeriod(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "AddPeriod")
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	day := r.PathValue("day")

	var input application.PeriodInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.log(r.Context(), "AddPeriod", "timetable_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode period", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddPeriod", "timetable_id", id, "day", day)
	tt, err := h.service.AddPeriod(r.Context(), application.AddPeriodParams{
		Principal:   principal,
		TimetableID: id,
		Day:         day,
		Input:       input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "period add failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "period added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, timetableResponse{Timetable: toTimetableDTO(tt)})
}

// UpdatePeriod answers PUT /timetables/{id}/days/{day}/periods/{periodId}.
func (h *TimetableHandler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "UpdatePeriod")
	if !ok {
		return
	}
	periodID := strings.TrimSpace(r.PathValue("periodId"))
	if periodID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPeriodID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	day := r.PathValue("day")

	var input application.PeriodInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.log(r.Context(), "UpdatePeriod", "timetable_id", id, "period_id", periodID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode period", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdatePeriod", "timetable_id", id, "day", day, "period_id", periodID)
	tt, err := h.service.UpdatePeriod(r.Context(), application.UpdatePeriodParams{
		Principal:   principal,
		TimetableID: id,
		Day:         day,
		PeriodID:    periodID,
		Input:       input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "period update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "period updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timetableResponse{Timetable: toTimetableDTO(tt)})
}

// DeletePeriod answers DELETE /timetables/{id}/days/{day}/periods/{periodId}.
func (h *TimetableHandler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.timetableID(w, r, "DeletePeriod")
	if !ok {
		return
	}
	periodID := strings.TrimSpace(r.PathValue("periodId"))
	if periodID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPeriodID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	day := r.PathValue("day")
	logger := h.log(r.Context(), "DeletePeriod", "timetable_id", id, "day", day, "period_id", periodID)
	tt, err := h.service.DeletePeriod(r.Context(), application.DeletePeriodParams{
		Principal:   principal,
		TimetableID: id,
		Day:         day,
		PeriodID:    periodID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "period delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "period deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timetableResponse{Timetable: toTimetableDTO(tt)})
}
