package timetable

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWeekday is returned when a day name is not one of the six school days.
var ErrInvalidWeekday = errors.New("timetable: invalid weekday")

// Weekday enumerates the six school days, Monday through Saturday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// SchoolDays lists every weekday in display order.
var SchoolDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WorkingDays lists the days that share the Monday-Friday pattern.
var WorkingDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = map[Weekday]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

// ParseWeekday resolves a day name case-insensitively.
func ParseWeekday(value string) (Weekday, error) {
	needle := strings.TrimSpace(value)
	for _, day := range SchoolDays {
		if strings.EqualFold(weekdayNames[day], needle) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, value)
}

// Valid reports whether d is one of the six school days.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Saturday
}

func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Weekday(%d)", int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
