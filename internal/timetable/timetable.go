// Package timetable holds the school timetable domain: wall-clock arithmetic,
// periods and day schedules, the week template generator, and the fixed
// nine-column grid placement used by every dashboard.
package timetable

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrInvalidStatus is returned for an unknown status string.
	ErrInvalidStatus = errors.New("timetable: invalid status")
	// ErrIncompleteWeek is returned when a timetable does not cover exactly Monday-Saturday.
	ErrIncompleteWeek = errors.New("timetable: week must contain each school day exactly once")
)

// Status gates whether a timetable's periods may be edited.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus accepts "draft" or "published" in any case.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusPublished:
		return StatusPublished, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
}

// Key identifies the class, section, and academic year a timetable belongs to.
type Key struct {
	ClassID      string
	SectionID    string
	AcademicYear string
}

func (k Key) String() string {
	return k.ClassID + "/" + k.SectionID + "/" + k.AcademicYear
}

// Timetable aggregates the six day schedules of one class section.
type Timetable struct {
	ID        string
	Key       Key
	Status    Status
	Days      []DaySchedule
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPublished reports whether the timetable is read-only.
func (t Timetable) IsPublished() bool {
	return t.Status == StatusPublished
}

// Day returns the schedule for d.
func (t Timetable) Day(d Weekday) (DaySchedule, bool) {
	for _, day := range t.Days {
		if day.Day == d {
			return day, true
		}
	}
	return DaySchedule{}, false
}

// Clone returns a deep copy of the timetable.
func (t Timetable) Clone() Timetable {
	out := t
	if t.Days != nil {
		out.Days = make([]DaySchedule, len(t.Days))
		for i, day := range t.Days {
			out.Days[i] = day.Clone()
		}
	}
	return out
}

// NormalizeWeek checks that days covers Monday-Saturday exactly once and
// returns a copy ordered by weekday with each day's periods sorted by position.
func NormalizeWeek(days []DaySchedule) ([]DaySchedule, error) {
	if len(days) != len(SchoolDays) {
		return nil, fmt.Errorf("%w: got %d days", ErrIncompleteWeek, len(days))
	}
	seen := make(map[Weekday]bool, len(days))
	out := make([]DaySchedule, 0, len(days))
	for _, day := range days {
		if !day.Day.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(day.Day))
		}
		if seen[day.Day] {
			return nil, fmt.Errorf("%w: %s repeated", ErrIncompleteWeek, day.Day)
		}
		seen[day.Day] = true
		cloned := day.Clone()
		SortPeriods(cloned.Periods)
		out = append(out, cloned)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
