package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/school-timetable/internal/persistence"
	"github.com/example/school-timetable/internal/timetable"
	"github.com/example/school-timetable/internal/validation"
)

// TimetableRepository captures the persistence operations needed by the service.
type TimetableRepository interface {
	CreateTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error)
	ReplaceTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error)
	ReplaceDay(ctx context.Context, timetableID string, day timetable.DaySchedule, updatedAt time.Time) (timetable.Timetable, error)
	UpdateStatus(ctx context.Context, timetableID string, status timetable.Status, updatedAt time.Time) (timetable.Timetable, error)
	GetTimetable(ctx context.Context, id string) (timetable.Timetable, error)
	FindTimetableByKey(ctx context.Context, key timetable.Key) (timetable.Timetable, error)
	ListTimetables(ctx context.Context, filter TimetableFilter) ([]timetable.Timetable, error)
	DeleteTimetable(ctx context.Context, id string) error
}

// Metrics receives counters from the timetable service.
type Metrics interface {
	TemplateGenerated(warnings int)
	TimetableSaved(replaced bool)
	PlacementRejected(reason string)
	GridCacheLookup(hit bool)
}

type noopMetrics struct{}

func (noopMetrics) TemplateGenerated(int)    {}
func (noopMetrics) TimetableSaved(bool)      {}
func (noopMetrics) PlacementRejected(string) {}
func (noopMetrics) GridCacheLookup(bool)     {}

// WorkbookWriter renders a timetable and its grids as a spreadsheet.
type WorkbookWriter interface {
	WriteTimetable(w io.Writer, tt timetable.Timetable, grids []DayGrid) error
}

// TimetableService orchestrates generation, validation, authorization, and persistence for timetables.
type TimetableService struct {
	timetables  TimetableRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	validator   *validation.Validator
	cache       *GridCache
	metrics     Metrics
	workbooks   WorkbookWriter
	defaults    TemplateInput
}

// TimetableServiceOption customises optional collaborators.
type TimetableServiceOption func(*TimetableService)

// WithGridCache enables caching of placed week grids.
func WithGridCache(cache *GridCache) TimetableServiceOption {
	return func(s *TimetableService) { s.cache = cache }
}

// WithMetrics reports service activity to m.
func WithMetrics(m Metrics) TimetableServiceOption {
	return func(s *TimetableService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithWorkbookWriter enables spreadsheet export.
func WithWorkbookWriter(w WorkbookWriter) TimetableServiceOption {
	return func(s *TimetableService) { s.workbooks = w }
}

// WithTemplateDefaults sets the values used to prefill the template form.
func WithTemplateDefaults(defaults TemplateInput) TimetableServiceOption {
	return func(s *TimetableService) { s.defaults = defaults }
}

// WithValidator shares a validator instance across services.
func WithValidator(v *validation.Validator) TimetableServiceOption {
	return func(s *TimetableService) {
		if v != nil {
			s.validator = v
		}
	}
}

// NewTimetableService constructs a timetable service with the provided dependencies.
func NewTimetableService(timetables TimetableRepository, idGenerator func() string, now func() time.Time, opts ...TimetableServiceOption) *TimetableService {
	return NewTimetableServiceWithLogger(timetables, idGenerator, now, nil, opts...)
}

// NewTimetableServiceWithLogger constructs a timetable service with a specified logger.
func NewTimetableServiceWithLogger(timetables TimetableRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger, opts ...TimetableServiceOption) *TimetableService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	s := &TimetableService{
		timetables:  timetables,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		metrics:     noopMetrics{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	return s
}

func (s *TimetableService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TimetableService", operation, attrs...)
}

// TemplateDefaults returns the configured values used to prefill the template form.
func (s *TimetableService) TemplateDefaults(principal Principal) (TemplateInput, error) {
	if s == nil {
		return TemplateInput{}, fmt.Errorf("TimetableService is nil")
	}
	if !principal.IsAdmin() {
		return TemplateInput{}, ErrUnauthorized
	}
	return s.defaults, nil
}

// GenerateTemplate turns the template form into an unsaved week with its grids.
func (s *TimetableService) GenerateTemplate(ctx context.Context, params GenerateTemplateParams) (result TemplateResult, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "GenerateTemplate",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("warning_count", len(result.Warnings)).InfoContext(ctx, "template generated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	var templateParams timetable.TemplateParams
	templateParams, err = ParseTemplateInput(s.validator, params.Input)
	if err != nil {
		return
	}

	var days []timetable.DaySchedule
	var warnings []timetable.Warning
	days, warnings, err = timetable.GenerateWeek(templateParams)
	if err != nil {
		return
	}

	grids := make([]DayGrid, 0, len(days))
	vErr := &ValidationError{}
	for _, day := range days {
		grid, placeErr := timetable.Place(day.Periods)
		if placeErr != nil {
			// only a day longer than the grid can fail here
			var rangeErr *timetable.SlotRangeError
			if !errors.As(placeErr, &rangeErr) {
				err = fmt.Errorf("%s: %w", day.Day, placeErr)
				return
			}
			s.metrics.PlacementRejected(ErrorKind(placeErr))
			field := fieldPeriodsPerDay
			if day.Day == timetable.Saturday {
				field = fieldPeriodsSaturday
			}
			vErr.add(field, fmt.Sprintf("%s must not exceed %d periods", field, timetable.MaxTeachingNumber))
			continue
		}
		grids = append(grids, DayGrid{Day: day.Day, Grid: grid})
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.metrics.TemplateGenerated(len(warnings))
	result = TemplateResult{Days: days, Grids: grids, Warnings: warnings}
	return
}

// SaveTimetable validates a submitted week and persists it for the class section.
// An existing timetable is only replaced when overwrite is requested and it is
// still a draft.
func (s *TimetableService) SaveTimetable(ctx context.Context, params SaveTimetableParams) (result SaveTimetableResult, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	key := timetable.Key{
		ClassID:      strings.TrimSpace(params.Input.ClassID),
		SectionID:    strings.TrimSpace(params.Input.SectionID),
		AcademicYear: strings.TrimSpace(params.Input.AcademicYear),
	}
	logger := s.loggerWith(ctx, "SaveTimetable",
		"principal_id", params.Principal.UserID,
		"timetable_key", key.String(),
		"overwrite", params.Input.Overwrite,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save timetable", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("timetable_id", result.Timetable.ID, "replaced", result.Replaced).InfoContext(ctx, "timetable saved")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if s.timetables == nil {
		err = fmt.Errorf("timetable repository: %w", ErrNotConfigured)
		return
	}

	var fieldErrs map[string]string
	fieldErrs, err = s.validator.Struct(params.Input)
	if err != nil {
		return
	}
	if len(fieldErrs) > 0 {
		vErr := &ValidationError{}
		vErr.addAll(fieldErrs)
		err = vErr
		return
	}

	var days []timetable.DaySchedule
	days, err = s.buildWeek(params.Input.Days)
	if err != nil {
		return
	}

	existing, findErr := s.timetables.FindTimetableByKey(ctx, key)
	switch {
	case findErr == nil:
		if !params.Input.Overwrite {
			err = ErrAlreadyExists
			return
		}
		if existing.IsPublished() {
			err = ErrTimetablePublished
			return
		}
		replacement := timetable.Timetable{
			ID:        existing.ID,
			Key:       key,
			Status:    timetable.StatusDraft,
			Days:      days,
			CreatedAt: existing.CreatedAt,
			UpdatedAt: s.now(),
		}
		result.Timetable, err = s.timetables.ReplaceTimetable(ctx, replacement)
		if err != nil {
			err = mapTimetableRepoError(err)
			return
		}
		result.Replaced = true
	case errors.Is(mapTimetableRepoError(findErr), ErrNotFound):
		created := timetable.Timetable{
			ID:        s.idGenerator(),
			Key:       key,
			Status:    timetable.StatusDraft,
			Days:      days,
			CreatedAt: s.now(),
		}
		created.UpdatedAt = created.CreatedAt
		result.Timetable, err = s.timetables.CreateTimetable(ctx, created)
		if err != nil {
			err = mapTimetableRepoError(err)
			return
		}
	default:
		err = mapTimetableRepoError(findErr)
		return
	}

	s.cache.Invalidate(result.Timetable.ID)
	s.metrics.TimetableSaved(result.Replaced)
	return
}

// GetTimetable returns a timetable visible to the principal. Drafts are hidden
// from students and parents.
func (s *TimetableService) GetTimetable(ctx context.Context, principal Principal, id string) (tt timetable.Timetable, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "GetTimetable",
		"principal_id", principal.UserID,
		"timetable_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get timetable", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	tt, err = s.loadVisible(ctx, principal, id)
	return
}

// ListTimetables returns the timetables matching the filter that the principal may see.
func (s *TimetableService) ListTimetables(ctx context.Context, params ListTimetablesParams) (timetables []timetable.Timetable, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}
	if !params.Principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	if s.timetables == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListTimetables",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list timetables", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(timetables)).InfoContext(ctx, "timetables listed")
	}()

	filter := TimetableFilter{
		ClassID:      strings.TrimSpace(params.Filter.ClassID),
		SectionID:    strings.TrimSpace(params.Filter.SectionID),
		AcademicYear: strings.TrimSpace(params.Filter.AcademicYear),
		Status:       params.Filter.Status,
	}
	if !params.Principal.CanViewDrafts() {
		if filter.Status == timetable.StatusDraft {
			return nil, nil
		}
		filter.Status = timetable.StatusPublished
	}

	var raw []timetable.Timetable
	raw, err = s.timetables.ListTimetables(ctx, filter)
	if err != nil {
		err = mapTimetableRepoError(err)
		return
	}

	timetables = make([]timetable.Timetable, 0, len(raw))
	for _, tt := range raw {
		timetables = append(timetables, tt.Clone())
	}
	sort.Slice(timetables, func(i, j int) bool {
		a, b := timetables[i].Key, timetables[j].Key
		if a.AcademicYear != b.AcademicYear {
			return a.AcademicYear > b.AcademicYear
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.SectionID != b.SectionID {
			return a.SectionID < b.SectionID
		}
		return timetables[i].ID < timetables[j].ID
	})
	return
}

// WeekGrid places every day of a visible timetable on the display grid.
func (s *TimetableService) WeekGrid(ctx context.Context, principal Principal, id string) (grids []DayGrid, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "WeekGrid",
		"principal_id", principal.UserID,
		"timetable_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build week grid", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	generation := s.cache.Generation()
	var tt timetable.Timetable
	tt, err = s.loadVisible(ctx, principal, id)
	if err != nil {
		return
	}
	grids, err = s.gridsFor(tt, generation)
	return
}

// gridsFor places tt, or serves the cached grids. generation must be taken
// before tt was loaded.
func (s *TimetableService) gridsFor(tt timetable.Timetable, generation uint64) ([]DayGrid, error) {
	if cached, ok := s.cache.Get(tt.ID); ok {
		s.metrics.GridCacheLookup(true)
		return cached, nil
	}
	if s.cache != nil {
		s.metrics.GridCacheLookup(false)
	}
	grids, err := s.placeWeek(tt.Days)
	if err != nil {
		return nil, err
	}
	s.cache.Store(tt.ID, generation, grids)
	return grids, nil
}

// PublishTimetable makes a timetable read-only and visible to every role.
func (s *TimetableService) PublishTimetable(ctx context.Context, principal Principal, id string) (timetable.Timetable, error) {
	return s.setStatus(ctx, principal, id, timetable.StatusPublished, "PublishTimetable")
}

// UnpublishTimetable returns a timetable to draft so it can be edited again.
func (s *TimetableService) UnpublishTimetable(ctx context.Context, principal Principal, id string) (timetable.Timetable, error) {
	return s.setStatus(ctx, principal, id, timetable.StatusDraft, "UnpublishTimetable")
}

func (s *TimetableService) setStatus(ctx context.Context, principal Principal, id string, status timetable.Status, operation string) (tt timetable.Timetable, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}
	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if s.timetables == nil {
		err = fmt.Errorf("timetable repository: %w", ErrNotConfigured)
		return
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"timetable_id", id,
		"status", string(status),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change timetable status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "timetable status changed")
	}()

	var existing timetable.Timetable
	existing, err = s.timetables.GetTimetable(ctx, id)
	if err != nil {
		err = mapTimetableRepoError(err)
		return
	}
	if existing.Status == status {
		tt = existing
		return
	}
	if status == timetable.StatusPublished {
		// a week that cannot be rendered must not reach students
		if _, err = s.placeWeek(existing.Days); err != nil {
			return
		}
	}

	tt, err = s.timetables.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		err = mapTimetableRepoError(err)
		return
	}
	s.cache.Invalidate(id)
	return
}

// AddPeriod inserts a period into one day of a draft timetable.
func (s *TimetableService) AddPeriod(ctx context.Context, params AddPeriodParams) (tt timetable.Timetable, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddPeriod",
		"principal_id", params.Principal.UserID,
		"timetable_id", params.TimetableID,
		"day", params.Day,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add period", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "period added")
	}()

	var existing timetable.Timetable
	var day timetable.DaySchedule
	existing, day, err = s.loadEditableDay(ctx, params.Principal, params.TimetableID, params.Day)
	if err != nil {
		return
	}

	var period timetable.Period
	period, err = s.periodFromInput(params.Input, "")
	if err != nil {
		return
	}
	for _, other := range existing.Days {
		if indexOfPeriod(other.Periods, period.ID) >= 0 {
			vErr := &ValidationError{}
			vErr.add("id", "id is already used by another period")
			err = vErr
			return
		}
	}

	day.Periods = append(day.Periods, period)
	tt, err = s.storeDay(ctx, existing.ID, day)
	return
}

// UpdatePeriod replaces a single period of a draft timetable.
func (s *TimetableService) UpdatePeriod(ctx context.Context, params UpdatePeriodParams) (tt timetable.Timetable, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdatePeriod",
		"principal_id", params.Principal.UserID,
		"timetable_id", params.TimetableID,
		"day", params.Day,
		"period_id", params.PeriodID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update period", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "period updated")
	}()

	var existing timetable.Timetable
	var day timetable.DaySchedule
	existing, day, err = s.loadEditableDay(ctx, params.Principal, params.TimetableID, params.Day)
	if err != nil {
		return
	}

	idx := indexOfPeriod(day.Periods, params.PeriodID)
	if idx < 0 {
		err = ErrNotFound
		return
	}

	input := params.Input
	input.ID = day.Periods[idx].ID
	var period timetable.Period
	period, err = s.periodFromInput(input, "")
	if err != nil {
		return
	}

	day.Periods[idx] = period
	tt, err = s.storeDay(ctx, existing.ID, day)
	return
}

// DeletePeriod removes a single period from a draft timetable.
func (s *TimetableService) DeletePeriod(ctx context.Context, params DeletePeriodParams) (tt timetable.Timetable, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "DeletePeriod",
		"principal_id", params.Principal.UserID,
		"timetable_id", params.TimetableID,
		"day", params.Day,
		"period_id", params.PeriodID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete period", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "period deleted")
	}()

	var existing timetable.Timetable
	var day timetable.DaySchedule
	existing, day, err = s.loadEditableDay(ctx, params.Principal, params.TimetableID, params.Day)
	if err != nil {
		return
	}

	idx := indexOfPeriod(day.Periods, params.PeriodID)
	if idx < 0 {
		err = ErrNotFound
		return
	}
	day.Periods = append(day.Periods[:idx], day.Periods[idx+1:]...)
	tt, err = s.storeDay(ctx, existing.ID, day)
	return
}

// DeleteTimetable removes a draft timetable.
func (s *TimetableService) DeleteTimetable(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("TimetableService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.timetables == nil {
		return fmt.Errorf("timetable repository: %w", ErrNotConfigured)
	}

	logger := s.loggerWith(ctx, "DeleteTimetable",
		"principal_id", principal.UserID,
		"timetable_id", id,
	)

	existing, err := s.timetables.GetTimetable(ctx, id)
	if err == nil && existing.IsPublished() {
		err = ErrTimetablePublished
	}
	if err == nil {
		err = s.timetables.DeleteTimetable(ctx, id)
	}
	if err != nil {
		err = mapTimetableRepoError(err)
		logger.ErrorContext(ctx, "failed to delete timetable", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.cache.Invalidate(id)
	logger.InfoContext(ctx, "timetable deleted")
	return nil
}

// ExportTimetable writes a visible timetable as a spreadsheet workbook to w.
func (s *TimetableService) ExportTimetable(ctx context.Context, principal Principal, id string, w io.Writer) (err error) {
	if s == nil {
		return fmt.Errorf("TimetableService is nil")
	}
	if s.workbooks == nil {
		return fmt.Errorf("workbook writer: %w", ErrNotConfigured)
	}

	logger := s.loggerWith(ctx, "ExportTimetable",
		"principal_id", principal.UserID,
		"timetable_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export timetable", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "timetable exported")
	}()

	generation := s.cache.Generation()
	tt, err := s.loadVisible(ctx, principal, id)
	if err != nil {
		return err
	}
	grids, err := s.gridsFor(tt, generation)
	if err != nil {
		return err
	}
	return s.workbooks.WriteTimetable(w, tt, grids)
}

func (s *TimetableService) loadVisible(ctx context.Context, principal Principal, id string) (timetable.Timetable, error) {
	if !principal.Authenticated() {
		return timetable.Timetable{}, ErrUnauthorized
	}
	if s.timetables == nil {
		return timetable.Timetable{}, ErrNotFound
	}
	tt, err := s.timetables.GetTimetable(ctx, id)
	if err != nil {
		return timetable.Timetable{}, mapTimetableRepoError(err)
	}
	if !tt.IsPublished() && !principal.CanViewDrafts() {
		return timetable.Timetable{}, ErrNotFound
	}
	return tt, nil
}

func (s *TimetableService) loadEditableDay(ctx context.Context, principal Principal, id, dayName string) (timetable.Timetable, timetable.DaySchedule, error) {
	if !principal.IsAdmin() {
		return timetable.Timetable{}, timetable.DaySchedule{}, ErrUnauthorized
	}
	if s.timetables == nil {
		return timetable.Timetable{}, timetable.DaySchedule{}, fmt.Errorf("timetable repository: %w", ErrNotConfigured)
	}

	weekday, err := timetable.ParseWeekday(dayName)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("day", "day must be a day from Monday to Saturday")
		return timetable.Timetable{}, timetable.DaySchedule{}, vErr
	}

	tt, err := s.timetables.GetTimetable(ctx, id)
	if err != nil {
		return timetable.Timetable{}, timetable.DaySchedule{}, mapTimetableRepoError(err)
	}
	if tt.IsPublished() {
		return timetable.Timetable{}, timetable.DaySchedule{}, ErrTimetablePublished
	}

	day, ok := tt.Day(weekday)
	if !ok {
		day = timetable.DaySchedule{Day: weekday}
	}
	return tt, day.Clone(), nil
}

func (s *TimetableService) storeDay(ctx context.Context, timetableID string, day timetable.DaySchedule) (timetable.Timetable, error) {
	timetable.SortPeriods(day.Periods)
	if err := s.checkDay(day, "periods"); err != nil {
		return timetable.Timetable{}, err
	}
	tt, err := s.timetables.ReplaceDay(ctx, timetableID, day, s.now())
	if err != nil {
		return timetable.Timetable{}, mapTimetableRepoError(err)
	}
	s.cache.Invalidate(timetableID)
	return tt, nil
}

// buildWeek converts submitted days into a normalized week, reporting field
// errors under their JSON paths.
func (s *TimetableService) buildWeek(inputs []DayInput) ([]timetable.DaySchedule, error) {
	vErr := &ValidationError{}
	days := make([]timetable.DaySchedule, 0, len(inputs))
	// period ids are unique across the whole week
	seenIDs := make(map[string]struct{})
	for i, in := range inputs {
		dayField := fmt.Sprintf("days[%d]", i)
		weekday, err := timetable.ParseWeekday(in.Day)
		if err != nil {
			vErr.add(dayField+".day", "day must be a day from Monday to Saturday")
			continue
		}
		day := timetable.DaySchedule{Day: weekday, Periods: make([]timetable.Period, 0, len(in.Periods))}
		for j, pin := range in.Periods {
			prefix := fmt.Sprintf("%s.periods[%d].", dayField, j)
			period, err := s.periodFromInput(pin, prefix)
			if err != nil {
				var pErr *ValidationError
				if errors.As(err, &pErr) {
					vErr.merge(pErr)
					continue
				}
				return nil, err
			}
			if _, dup := seenIDs[period.ID]; dup {
				vErr.add(prefix+"id", "id is already used by another period")
				continue
			}
			seenIDs[period.ID] = struct{}{}
			day.Periods = append(day.Periods, period)
		}
		days = append(days, day)
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	normalized, err := timetable.NormalizeWeek(days)
	if err != nil {
		vErr.add("days", err.Error())
		return nil, vErr
	}

	for i, day := range normalized {
		if err := s.checkDay(day, fmt.Sprintf("days[%d].periods", i)); err != nil {
			var dayErr *ValidationError
			if errors.As(err, &dayErr) {
				vErr.merge(dayErr)
				continue
			}
			return nil, err
		}
	}
	if vErr.HasErrors() {
		return nil, vErr
	}
	return normalized, nil
}

// checkDay enforces the numbering rules and that the day fits the grid.
func (s *TimetableService) checkDay(day timetable.DaySchedule, field string) error {
	if err := timetable.ValidateDay(day.Periods); err != nil {
		vErr := &ValidationError{}
		vErr.add(field, fmt.Sprintf("%s: %v", day.Day, err))
		return vErr
	}
	if _, err := timetable.Place(day.Periods); err != nil {
		s.metrics.PlacementRejected(ErrorKind(err))
		return fmt.Errorf("%s: %w", day.Day, err)
	}
	return nil
}

func (s *TimetableService) placeWeek(days []timetable.DaySchedule) ([]DayGrid, error) {
	grids := make([]DayGrid, 0, len(days))
	for _, day := range days {
		grid, err := timetable.Place(day.Periods)
		if err != nil {
			s.metrics.PlacementRejected(ErrorKind(err))
			return nil, fmt.Errorf("%s: %w", day.Day, err)
		}
		grids = append(grids, DayGrid{Day: day.Day, Grid: grid})
	}
	return grids, nil
}

// periodFromInput validates one submitted period. prefix is prepended to field names.
func (s *TimetableService) periodFromInput(in PeriodInput, prefix string) (timetable.Period, error) {
	vErr := &ValidationError{}
	if prefix == "" {
		fieldErrs, err := s.validator.Struct(in)
		if err != nil {
			return timetable.Period{}, err
		}
		vErr.addAll(fieldErrs)
		if vErr.HasErrors() {
			return timetable.Period{}, vErr
		}
	}

	position := in.PeriodNumber
	if position == 0 && in.Slot != nil && !in.IsBreak {
		number, ok := timetable.NumberForSlot(*in.Slot)
		if !ok {
			vErr.add(prefix+"slot", "slot is not an add target")
			return timetable.Period{}, vErr
		}
		position = float64(number)
	}

	kind, number, err := timetable.DecodePosition(position)
	if err != nil {
		vErr.add(prefix+"periodNumber", "periodNumber must be a positive whole number, or end in .5 for a break")
		return timetable.Period{}, vErr
	}
	if (kind == timetable.KindBreak) != in.IsBreak {
		vErr.add(prefix+"periodNumber", "periodNumber must end in .5 exactly when isBreak is set")
		return timetable.Period{}, vErr
	}

	start, startErr := timetable.ParseClock(in.StartTime)
	end, endErr := timetable.ParseClock(in.EndTime)
	if startErr != nil {
		vErr.add(prefix+"startTime", "startTime must be a time in HH:MM format")
	}
	if endErr != nil {
		vErr.add(prefix+"endTime", "endTime must be a time in HH:MM format")
	}
	if startErr == nil && endErr == nil && start >= end {
		vErr.add(prefix+"endTime", "endTime must be after startTime")
	}
	if vErr.HasErrors() {
		return timetable.Period{}, vErr
	}

	period := timetable.Period{
		ID:      strings.TrimSpace(in.ID),
		Kind:    kind,
		Number:  number,
		Subject: strings.TrimSpace(in.Subject),
		Start:   start,
		End:     end,
		Room:    strings.TrimSpace(in.Room),
	}
	if period.ID == "" {
		period.ID = s.idGenerator()
	}
	if period.IsBreak() {
		if period.Subject == "" {
			period.Subject = timetable.DefaultBreakSubject
		}
	} else if id, name := strings.TrimSpace(in.TeacherID), strings.TrimSpace(in.TeacherName); id != "" || name != "" {
		period.Teacher = &timetable.TeacherRef{ID: id, Name: name}
	}
	return period, nil
}

func indexOfPeriod(periods []timetable.Period, id string) int {
	for i, p := range periods {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func mapTimetableRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("days", "timetable violates a storage constraint")
		return vErr
	}
	return err
}
