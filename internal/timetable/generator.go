package timetable

import (
	"fmt"
	"strings"
)

// Scope names which half of a week template a parameter or warning belongs to.
type Scope string

const (
	ScopeWeekday  Scope = "weekday"
	ScopeSaturday Scope = "saturday"
)

// Parameter names reported by ParamError.Field.
const (
	FieldPeriodCount    = "periodCount"
	FieldStart          = "startTime"
	FieldPeriodDuration = "periodDuration"
	FieldBreakAfter     = "breakAfterPeriod"
	FieldBreakStart     = "breakStartTime"
	FieldBreakDuration  = "breakDuration"
)

// DayParams configures generation of a single day.
type DayParams struct {
	PeriodCount    int
	Start          Clock
	PeriodDuration int
	// BreakAfter is the teaching period the break follows; 0 disables the break.
	BreakAfter    int
	BreakStart    Clock
	BreakDuration int
	// BreakSubject defaults to DefaultBreakSubject.
	BreakSubject string
}

// TemplateParams configures a full week: one Monday-Friday pattern and Saturday.
type TemplateParams struct {
	Weekday  DayParams
	Saturday DayParams
}

// ParamError describes one rejected generation parameter.
type ParamError struct {
	Scope   Scope
	Field   string
	Message string
}

// ParamErrors aggregates rejected parameters; it is returned before anything is generated.
type ParamErrors []ParamError

func (e ParamErrors) Error() string {
	if len(e) == 0 {
		return "timetable: invalid parameters"
	}
	parts := make([]string, 0, len(e))
	for _, pe := range e {
		name := pe.Field
		if pe.Scope != "" {
			name = string(pe.Scope) + "." + pe.Field
		}
		parts = append(parts, name+": "+pe.Message)
	}
	return "timetable: invalid parameters: " + strings.Join(parts, "; ")
}

// WarningCode identifies a non-fatal generation finding.
type WarningCode string

const (
	// WarnBreakNotInserted is raised when BreakAfter exceeds the period count.
	WarnBreakNotInserted WarningCode = "break_not_inserted"
	// WarnExceedsGrid is raised when a day has more teaching periods than grid slots.
	WarnExceedsGrid WarningCode = "exceeds_grid"
	// WarnBreakOverlapsPrevious is raised when the break starts before the preceding period ends.
	WarnBreakOverlapsPrevious WarningCode = "break_overlaps_previous"
)

// Warning is a likely configuration mistake that does not stop generation.
type Warning struct {
	Scope   Scope
	Code    WarningCode
	Message string
}

// Validate reports every invalid field of p.
func (p DayParams) Validate() ParamErrors {
	var errs ParamErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ParamError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if p.PeriodCount <= 0 {
		add(FieldPeriodCount, "must be a positive integer")
	}
	if !p.Start.Valid() {
		add(FieldStart, "must be a valid HH:MM time")
	}
	if p.PeriodDuration <= 0 {
		add(FieldPeriodDuration, "must be a positive number of minutes")
	}
	if p.BreakAfter < 0 {
		add(FieldBreakAfter, "must not be negative")
	}
	if p.BreakAfter > 0 && p.BreakAfter <= p.PeriodCount {
		if !p.BreakStart.Valid() {
			add(FieldBreakStart, "must be a valid HH:MM time")
		}
		if p.BreakDuration <= 0 {
			add(FieldBreakDuration, "must be a positive number of minutes")
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if !p.fitsInDay() {
		add(FieldPeriodCount, "schedule would run past midnight")
	}
	return errs
}

// fitsInDay walks the clock the same way GenerateDay does. A period ending
// exactly at midnight does not fit.
func (p DayParams) fitsInDay() bool {
	clock := p.Start
	for i := 1; i <= p.PeriodCount; i++ {
		clock = clock.Add(p.PeriodDuration)
		if !clock.Valid() {
			return false
		}
		if p.BreakAfter == i {
			clock = p.BreakStart.Add(p.BreakDuration)
			if !clock.Valid() {
				return false
			}
		}
	}
	return true
}

// GenerateDay emits the ordered period list for one day.
//
// Teaching periods are laid out back to back from Start. When BreakAfter
// matches a period, the break is emitted with its configured window and the
// running clock resumes from the break's end, even when that window does not
// abut the preceding period.
func GenerateDay(p DayParams) ([]Period, []Warning, error) {
	if errs := p.Validate(); len(errs) > 0 {
		return nil, nil, errs
	}

	subject := strings.TrimSpace(p.BreakSubject)
	if subject == "" {
		subject = DefaultBreakSubject
	}

	periods := make([]Period, 0, p.PeriodCount+1)
	var warnings []Warning

	clock := p.Start
	for i := 1; i <= p.PeriodCount; i++ {
		end := clock.Add(p.PeriodDuration)
		periods = append(periods, Period{
			Kind:   KindTeaching,
			Number: i,
			Start:  clock,
			End:    end,
		})
		clock = end

		if p.BreakAfter == i {
			if p.BreakStart < clock {
				warnings = append(warnings, Warning{
					Code:    WarnBreakOverlapsPrevious,
					Message: fmt.Sprintf("break starts at %s before period %d ends at %s", p.BreakStart, i, clock),
				})
			}
			breakEnd := p.BreakStart.Add(p.BreakDuration)
			periods = append(periods, Period{
				Kind:    KindBreak,
				Number:  i,
				Subject: subject,
				Start:   p.BreakStart,
				End:     breakEnd,
			})
			clock = breakEnd
		}
	}

	if p.BreakAfter > p.PeriodCount {
		warnings = append(warnings, Warning{
			Code:    WarnBreakNotInserted,
			Message: fmt.Sprintf("break after period %d is never reached with %d periods", p.BreakAfter, p.PeriodCount),
		})
	}
	if p.PeriodCount > MaxTeachingNumber {
		warnings = append(warnings, Warning{
			Code:    WarnExceedsGrid,
			Message: fmt.Sprintf("%d periods exceed the %d teaching slots of the grid", p.PeriodCount, MaxTeachingNumber),
		})
	}

	return periods, warnings, nil
}

// GenerateWeek builds the six school days. The Monday-Friday pattern is
// generated once and deep copied into five independent days; Saturday is
// generated from its own parameters.
func GenerateWeek(p TemplateParams) ([]DaySchedule, []Warning, error) {
	var errs ParamErrors
	weekday, weekdayWarnings, err := generateScoped(ScopeWeekday, p.Weekday, &errs)
	if err != nil {
		return nil, nil, err
	}
	saturday, saturdayWarnings, err := generateScoped(ScopeSaturday, p.Saturday, &errs)
	if err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}

	days := make([]DaySchedule, 0, len(SchoolDays))
	for _, day := range WorkingDays {
		days = append(days, DaySchedule{Day: day, Periods: ClonePeriods(weekday)})
	}
	days = append(days, DaySchedule{Day: Saturday, Periods: saturday})

	warnings := append(weekdayWarnings, saturdayWarnings...)
	return days, warnings, nil
}

func generateScoped(scope Scope, p DayParams, errs *ParamErrors) ([]Period, []Warning, error) {
	periods, warnings, err := GenerateDay(p)
	if err != nil {
		paramErrs, ok := err.(ParamErrors)
		if !ok {
			return nil, nil, err
		}
		for _, pe := range paramErrs {
			pe.Scope = scope
			*errs = append(*errs, pe)
		}
		return nil, nil, nil
	}
	for i := range warnings {
		warnings[i].Scope = scope
	}
	return periods, warnings, nil
}
