package scheduler

import (
	"sort"

	"github.com/example/school-timetable/internal/timetable"
)

// Booking is one teaching period that occupies a teacher.
type Booking struct {
	TimetableID string
	Key         timetable.Key
	Day         timetable.Weekday
	PeriodID    string
	TeacherID   string
	TeacherName string
	Start       timetable.Clock
	End         timetable.Clock
}

func (b Booking) overlaps(other Booking) bool {
	return b.Day == other.Day && b.Start < other.End && other.Start < b.End
}

// Conflict details a teacher booked in two classes at once.
type Conflict struct {
	TeacherID string
	Booking   Booking
	With      Booking
}

// Bookings lists the teacher-occupied periods of a timetable. Breaks and
// periods without an allotted teacher occupy nobody.
func Bookings(tt timetable.Timetable) []Booking {
	var out []Booking
	for _, day := range tt.Days {
		for _, p := range day.Periods {
			if p.IsBreak() || p.Teacher == nil || p.Teacher.ID == "" {
				continue
			}
			out = append(out, Booking{
				TimetableID: tt.ID,
				Key:         tt.Key,
				Day:         day.Day,
				PeriodID:    p.ID,
				TeacherID:   p.Teacher.ID,
				TeacherName: p.Teacher.Name,
				Start:       p.Start,
				End:         p.End,
			})
		}
	}
	return out
}

// DetectConflicts identifies candidate bookings whose teacher is already
// booked at an overlapping time in another timetable. Bookings of the
// candidate's own timetable are ignored. Results are ordered by day, start
// time and teacher.
func DetectConflicts(existing []Booking, candidate []Booking) []Conflict {
	byTeacher := make(map[string][]Booking)
	for _, b := range existing {
		byTeacher[b.TeacherID] = append(byTeacher[b.TeacherID], b)
	}

	var conflicts []Conflict
	for _, c := range candidate {
		for _, other := range byTeacher[c.TeacherID] {
			if other.TimetableID == c.TimetableID {
				continue
			}
			if c.overlaps(other) {
				conflicts = append(conflicts, Conflict{TeacherID: c.TeacherID, Booking: c, With: other})
			}
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Booking.Day != b.Booking.Day {
			return a.Booking.Day < b.Booking.Day
		}
		if a.Booking.Start != b.Booking.Start {
			return a.Booking.Start < b.Booking.Start
		}
		if a.TeacherID != b.TeacherID {
			return a.TeacherID < b.TeacherID
		}
		return a.With.TimetableID < b.With.TimetableID
	})
	return conflicts
}
