package timetable

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// DefaultBreakSubject labels breaks emitted by the generator.
	DefaultBreakSubject = "Lunch Break"
	// NotAllotted is rendered for teaching periods without a teacher.
	NotAllotted = "Not allotted"
)

var (
	// ErrInvalidPosition is returned when a wire position is neither an integer nor i+0.5.
	ErrInvalidPosition = errors.New("timetable: invalid period position")
	// ErrInvalidDay is returned when a day's period list breaks the numbering rules.
	ErrInvalidDay = errors.New("timetable: invalid day schedule")
)

// Kind distinguishes teaching periods from breaks.
type Kind string

const (
	KindTeaching Kind = "teaching"
	KindBreak    Kind = "break"
)

// TeacherRef identifies the teacher allotted to a period.
type TeacherRef struct {
	ID   string
	Name string
}

// Period is one scheduled unit within a day.
//
// For teaching periods Number is the 1-based teaching index. For a break,
// Number is the teaching period it follows, so its display position is
// Number+0.5 and it does not consume a teaching number.
type Period struct {
	ID      string
	Kind    Kind
	Number  int
	Subject string
	Teacher *TeacherRef
	Start   Clock
	End     Clock
	Room    string
}

// IsBreak reports whether the period is the day's break.
func (p Period) IsBreak() bool {
	return p.Kind == KindBreak
}

// Position returns the ordering key exchanged with clients as periodNumber.
func (p Period) Position() float64 {
	if p.IsBreak() {
		return float64(p.Number) + 0.5
	}
	return float64(p.Number)
}

// DecodePosition splits a wire position into a kind and number.
func DecodePosition(position float64) (Kind, int, error) {
	if math.IsNaN(position) || math.IsInf(position, 0) || position <= 0 {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidPosition, position)
	}
	whole, frac := math.Modf(position)
	switch frac {
	case 0:
		return KindTeaching, int(whole), nil
	case 0.5:
		return KindBreak, int(whole), nil
	default:
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidPosition, position)
	}
}

// TeacherLabel never returns a blank string for teaching periods.
func (p Period) TeacherLabel() string {
	if p.IsBreak() {
		return ""
	}
	if p.Teacher == nil || p.Teacher.Name == "" {
		return NotAllotted
	}
	return p.Teacher.Name
}

// Minutes returns the period's length.
func (p Period) Minutes() int {
	return p.End.Sub(p.Start)
}

// Clone returns a copy that shares no pointers with p.
func (p Period) Clone() Period {
	out := p
	if p.Teacher != nil {
		teacher := *p.Teacher
		out.Teacher = &teacher
	}
	return out
}

// ClonePeriods deep copies a period list.
func ClonePeriods(periods []Period) []Period {
	if periods == nil {
		return nil
	}
	out := make([]Period, len(periods))
	for i, p := range periods {
		out[i] = p.Clone()
	}
	return out
}

// SortPeriods orders periods by position. The sort is stable.
func SortPeriods(periods []Period) {
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Position() < periods[j].Position()
	})
}

// ValidateDay checks the numbering rules a day's period list must hold:
// unique positions, at most one break that follows an existing teaching
// period, positive numbers, Start before End, and starts that increase with
// the position. The list may be in any order.
func ValidateDay(periods []Period) error {
	sorted := ClonePeriods(periods)
	SortPeriods(sorted)

	lastTeaching := 0
	for _, p := range sorted {
		if p.Kind == KindTeaching && p.Number > lastTeaching {
			lastTeaching = p.Number
		}
	}

	breaks := 0
	for i, p := range sorted {
		switch p.Kind {
		case KindTeaching:
			if p.Number < 1 {
				return fmt.Errorf("%w: teaching period number %d must be positive", ErrInvalidDay, p.Number)
			}
		case KindBreak:
			breaks++
			if breaks > 1 {
				return fmt.Errorf("%w: more than one break", ErrInvalidDay)
			}
			if p.Number < 1 || p.Number > lastTeaching {
				return fmt.Errorf("%w: break must follow a teaching period", ErrInvalidDay)
			}
		default:
			return fmt.Errorf("%w: unknown period kind %q", ErrInvalidDay, p.Kind)
		}
		if !p.Start.Valid() || !p.End.Valid() || p.Start >= p.End {
			return fmt.Errorf("%w: period %v must start before it ends", ErrInvalidDay, p.Position())
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.Position() == p.Position() {
			return fmt.Errorf("%w: duplicate period number %v", ErrInvalidDay, p.Position())
		}
		if p.Start <= prev.Start {
			return fmt.Errorf("%w: period %v starts at %s, not after period %v at %s",
				ErrInvalidDay, p.Position(), p.Start, prev.Position(), prev.Start)
		}
	}
	return nil
}

// DaySchedule is one weekday's ordered list of periods.
type DaySchedule struct {
	Day     Weekday
	Periods []Period
}

// Clone returns an independent copy of the day.
func (d DaySchedule) Clone() DaySchedule {
	return DaySchedule{Day: d.Day, Periods: ClonePeriods(d.Periods)}
}

// Break returns the day's break when one is scheduled.
func (d DaySchedule) Break() (Period, bool) {
	for _, p := range d.Periods {
		if p.IsBreak() {
			return p, true
		}
	}
	return Period{}, false
}

// TeachingCount returns the number of non-break periods.
func (d DaySchedule) TeachingCount() int {
	count := 0
	for _, p := range d.Periods {
		if !p.IsBreak() {
			count++
		}
	}
	return count
}
