package application

import (
	"strings"
	"time"

	"github.com/example/school-timetable/internal/timetable"
)

// Role names the dashboard a principal signs in to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// ParseRole resolves a role name case-insensitively.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleTeacher:
		return RoleTeacher, true
	case RoleStudent:
		return RoleStudent, true
	case RoleParent:
		return RoleParent, true
	default:
		return "", false
	}
}

// Principal represents the user invoking a service method, as asserted by the gateway.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal may change timetables.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanViewDrafts reports whether unpublished timetables are visible to the principal.
func (p Principal) CanViewDrafts() bool {
	return p.Role == RoleAdmin || p.Role == RoleTeacher
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != "" && p.Role != ""
}

// TemplateInput mirrors the template configuration form. Every value arrives as
// a string and is coerced before generation.
type TemplateInput struct {
	PeriodsPerDay            string `json:"periodsPerDay" toml:"periodsPerDay" validate:"required,wholenumber,max=4"`
	PeriodsSaturday          string `json:"periodsSaturday" toml:"periodsSaturday" validate:"required,wholenumber,max=4"`
	PeriodDuration           string `json:"periodDuration" toml:"periodDuration" validate:"required,wholenumber,max=4"`
	BreakAfterPeriod         string `json:"breakAfterPeriod" toml:"breakAfterPeriod" validate:"required,wholenumber,max=4"`
	BreakAfterPeriodSaturday string `json:"breakAfterPeriodSaturday,omitempty" toml:"breakAfterPeriodSaturday,omitempty" validate:"omitempty,wholenumber,max=4"`
	WeekdayStartTime         string `json:"weekdayStartTime" toml:"weekdayStartTime" validate:"required,clock"`
	SaturdayStartTime        string `json:"saturdayStartTime" toml:"saturdayStartTime" validate:"required,clock"`
	LunchStartMonFri         string `json:"lunchStartMonFri" toml:"lunchStartMonFri" validate:"omitempty,clock"`
	LunchDurationMonFri      string `json:"lunchDurationMonFri" toml:"lunchDurationMonFri" validate:"omitempty,wholenumber,max=4"`
	LunchStartSat            string `json:"lunchStartSat" toml:"lunchStartSat" validate:"omitempty,clock"`
	LunchDurationSat         string `json:"lunchDurationSat" toml:"lunchDurationSat" validate:"omitempty,wholenumber,max=4"`
}

// GenerateTemplateParams wraps the data required to generate a week template.
type GenerateTemplateParams struct {
	Principal Principal
	Input     TemplateInput
}

// DayGrid is one day's periods laid out on the display grid.
type DayGrid struct {
	Day  timetable.Weekday
	Grid timetable.Grid
}

// TemplateResult is a generated, unsaved week.
type TemplateResult struct {
	Days     []timetable.DaySchedule
	Grids    []DayGrid
	Warnings []timetable.Warning
}

// PeriodInput captures one period as submitted by an editor.
type PeriodInput struct {
	ID           string  `json:"id"`
	PeriodNumber float64 `json:"periodNumber" validate:"gte=0"`
	// Slot may be given instead of PeriodNumber when adding into an empty grid column.
	Slot        *int   `json:"slot" validate:"omitempty,gte=0,lt=9"`
	Subject     string `json:"subject" validate:"max=120"`
	TeacherID   string `json:"teacherId" validate:"max=64"`
	TeacherName string `json:"teacherName" validate:"max=120"`
	StartTime   string `json:"startTime" validate:"required,clock"`
	EndTime     string `json:"endTime" validate:"required,clock"`
	IsBreak     bool   `json:"isBreak"`
	Room        string `json:"room" validate:"max=60"`
}

// DayInput is one day of a submitted week.
type DayInput struct {
	Day     string        `json:"day" validate:"required,weekday"`
	Periods []PeriodInput `json:"periods" validate:"dive"`
}

// SaveTimetableInput is the payload sent when persisting a generated or edited week.
type SaveTimetableInput struct {
	ClassID      string     `json:"classId" validate:"notblank,max=64"`
	SectionID    string     `json:"sectionId" validate:"notblank,max=64"`
	AcademicYear string     `json:"academicYear" validate:"notblank,max=16"`
	Overwrite    bool       `json:"overwrite"`
	Days         []DayInput `json:"days" validate:"len=6,dive"`
}

// SaveTimetableParams wraps the data required to persist a timetable.
type SaveTimetableParams struct {
	Principal Principal
	Input     SaveTimetableInput
}

// SaveTimetableResult reports the stored timetable and whether an existing one was replaced.
type SaveTimetableResult struct {
	Timetable timetable.Timetable
	Replaced  bool
}

// TimetableFilter narrows timetable listings. Empty fields match everything.
type TimetableFilter struct {
	ClassID      string
	SectionID    string
	AcademicYear string
	Status       timetable.Status
}

// ListTimetablesParams wraps the data required to list timetables.
type ListTimetablesParams struct {
	Principal Principal
	Filter    TimetableFilter
}

// AddPeriodParams wraps the data required to add a period to one day.
type AddPeriodParams struct {
	Principal   Principal
	TimetableID string
	Day         string
	Input       PeriodInput
}

// UpdatePeriodParams wraps the data required to edit a single period.
type UpdatePeriodParams struct {
	Principal   Principal
	TimetableID string
	Day         string
	PeriodID    string
	Input       PeriodInput
}

// DeletePeriodParams identifies a period to remove.
type DeletePeriodParams struct {
	Principal   Principal
	TimetableID string
	Day         string
	PeriodID    string
}

// Selection remembers the class section a user last opened.
type Selection struct {
	UserID       string
	ClassID      string
	SectionID    string
	AcademicYear string
	UpdatedAt    time.Time
}

// SelectionInput captures a new last selection.
type SelectionInput struct {
	ClassID      string `json:"classId" validate:"notblank,max=64"`
	SectionID    string `json:"sectionId" validate:"notblank,max=64"`
	AcademicYear string `json:"academicYear" validate:"omitempty,max=16"`
}

// SaveSelectionParams wraps the data required to store a selection.
type SaveSelectionParams struct {
	Principal Principal
	Input     SelectionInput
}

// ConflictWarning reports a teacher allotted to overlapping periods in two
// timetables of the same academic year.
type ConflictWarning struct {
	TeacherID       string
	TeacherName     string
	Day             timetable.Weekday
	PeriodID        string
	Start           timetable.Clock
	End             timetable.Clock
	WithTimetableID string
	WithKey         timetable.Key
	WithPeriodID    string
	WithStart       timetable.Clock
	WithEnd         timetable.Clock
}
