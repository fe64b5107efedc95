package application

import (
	"strconv"
	"strings"

	"github.com/example/school-timetable/internal/timetable"
	"github.com/example/school-timetable/internal/validation"
)

// form field names of TemplateInput
const (
	fieldPeriodsPerDay            = "periodsPerDay"
	fieldPeriodsSaturday          = "periodsSaturday"
	fieldPeriodDuration           = "periodDuration"
	fieldBreakAfterPeriod         = "breakAfterPeriod"
	fieldBreakAfterPeriodSaturday = "breakAfterPeriodSaturday"
	fieldWeekdayStartTime         = "weekdayStartTime"
	fieldSaturdayStartTime        = "saturdayStartTime"
	fieldLunchStartMonFri         = "lunchStartMonFri"
	fieldLunchDurationMonFri      = "lunchDurationMonFri"
	fieldLunchStartSat            = "lunchStartSat"
	fieldLunchDurationSat         = "lunchDurationSat"
)

// formFields maps generator parameters back to the form field that supplied them.
var formFields = map[timetable.Scope]map[string]string{
	timetable.ScopeWeekday: {
		timetable.FieldPeriodCount:    fieldPeriodsPerDay,
		timetable.FieldStart:          fieldWeekdayStartTime,
		timetable.FieldPeriodDuration: fieldPeriodDuration,
		timetable.FieldBreakAfter:     fieldBreakAfterPeriod,
		timetable.FieldBreakStart:     fieldLunchStartMonFri,
		timetable.FieldBreakDuration:  fieldLunchDurationMonFri,
	},
	timetable.ScopeSaturday: {
		timetable.FieldPeriodCount:    fieldPeriodsSaturday,
		timetable.FieldStart:          fieldSaturdayStartTime,
		timetable.FieldPeriodDuration: fieldPeriodDuration,
		timetable.FieldBreakAfter:     fieldBreakAfterPeriodSaturday,
		timetable.FieldBreakStart:     fieldLunchStartSat,
		timetable.FieldBreakDuration:  fieldLunchDurationSat,
	},
}

// ParseTemplateInput coerces the string form into generator parameters.
// Every rejected value is reported under its form field name; nothing is
// defaulted to zero.
func ParseTemplateInput(v *validation.Validator, input TemplateInput) (timetable.TemplateParams, error) {
	if v == nil {
		v = validation.New()
	}

	vErr := &ValidationError{}
	fieldErrs, err := v.Struct(input)
	if err != nil {
		return timetable.TemplateParams{}, err
	}
	vErr.addAll(fieldErrs)

	breakAfter := atoiOrZero(input.BreakAfterPeriod)
	saturdayBreakAfter := breakAfter
	saturdayBreakField := fieldBreakAfterPeriod
	if strings.TrimSpace(input.BreakAfterPeriodSaturday) != "" {
		saturdayBreakAfter = atoiOrZero(input.BreakAfterPeriodSaturday)
		saturdayBreakField = fieldBreakAfterPeriodSaturday
	}

	// lunch fields become required once a break is actually inserted
	if breakAfter > 0 && breakAfter <= atoiOrZero(input.PeriodsPerDay) {
		requireField(vErr, fieldLunchStartMonFri, input.LunchStartMonFri)
		requireField(vErr, fieldLunchDurationMonFri, input.LunchDurationMonFri)
	}
	if saturdayBreakAfter > 0 && saturdayBreakAfter <= atoiOrZero(input.PeriodsSaturday) {
		requireField(vErr, fieldLunchStartSat, input.LunchStartSat)
		requireField(vErr, fieldLunchDurationSat, input.LunchDurationSat)
	}
	if vErr.HasErrors() {
		return timetable.TemplateParams{}, vErr
	}

	params := timetable.TemplateParams{
		Weekday: timetable.DayParams{
			PeriodCount:    atoiOrZero(input.PeriodsPerDay),
			Start:          clockOrZero(input.WeekdayStartTime),
			PeriodDuration: atoiOrZero(input.PeriodDuration),
			BreakAfter:     breakAfter,
			BreakStart:     clockOrZero(input.LunchStartMonFri),
			BreakDuration:  atoiOrZero(input.LunchDurationMonFri),
		},
		Saturday: timetable.DayParams{
			PeriodCount:    atoiOrZero(input.PeriodsSaturday),
			Start:          clockOrZero(input.SaturdayStartTime),
			PeriodDuration: atoiOrZero(input.PeriodDuration),
			BreakAfter:     saturdayBreakAfter,
			BreakStart:     clockOrZero(input.LunchStartSat),
			BreakDuration:  atoiOrZero(input.LunchDurationSat),
		},
	}

	for _, scope := range []timetable.Scope{timetable.ScopeWeekday, timetable.ScopeSaturday} {
		day := params.Weekday
		if scope == timetable.ScopeSaturday {
			day = params.Saturday
		}
		for _, pe := range day.Validate() {
			field := formFields[scope][pe.Field]
			if scope == timetable.ScopeSaturday && pe.Field == timetable.FieldBreakAfter {
				field = saturdayBreakField
			}
			vErr.add(field, field+" "+pe.Message)
		}
	}
	if vErr.HasErrors() {
		return timetable.TemplateParams{}, vErr
	}

	return params, nil
}

func requireField(vErr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		vErr.add(field, field+" is required when a break is scheduled")
	}
}

// atoiOrZero is only used after the validator accepted the value.
func atoiOrZero(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func clockOrZero(value string) timetable.Clock {
	c, err := timetable.ParseClock(value)
	if err != nil {
		return 0
	}
	return c
}
