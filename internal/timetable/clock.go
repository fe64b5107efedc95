package timetable

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every Clock value produced by the generator.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned when a wall-clock string is not a valid HH:MM value.
var ErrInvalidClock = errors.New("timetable: invalid clock time")

// Clock is a wall-clock time of day expressed as minutes since midnight.
type Clock int

// ParseClock parses a 24-hour "HH:MM" string. Both components must be two digits.
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err := parseTwoDigits(value[:2])
	if err != nil || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err := parseTwoDigits(value[3:])
	if err != nil || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return Clock(hour*60 + minute), nil
}

// MustParseClock is ParseClock for literals; it panics on malformed input.
func MustParseClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

func parseTwoDigits(s string) (int, error) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, fmt.Errorf("not two digits: %q", s)
	}
	return strconv.Atoi(s)
}

// Add returns the clock advanced by the given number of minutes. No wrap-around
// is applied; callers check Valid when the result may pass midnight.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Sub returns the number of minutes between other and c.
func (c Clock) Sub(other Clock) int {
	return int(c - other)
}

// Valid reports whether the clock falls within a single day.
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// String renders the clock as zero-padded "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidClock, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value stores the clock as "HH:MM" text.
func (c Clock) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidClock, int(c))
	}
	return c.String(), nil
}

// Scan accepts "HH:MM" text from the database.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	default:
		return fmt.Errorf("timetable: unsupported clock scan type %T", src)
	}
}
