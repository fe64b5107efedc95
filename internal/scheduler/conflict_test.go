package scheduler

import (
	"testing"

	"github.com/example/school-timetable/internal/timetable"
)

func booking(timetableID, teacherID string, day timetable.Weekday, start, end string) Booking {
	return Booking{
		TimetableID: timetableID,
		Day:         day,
		PeriodID:    timetableID + "-" + start,
		TeacherID:   teacherID,
		Start:       timetable.MustParseClock(start),
		End:         timetable.MustParseClock(end),
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Run("overlapping periods of one teacher produce a conflict", func(t *testing.T) {
		existing := []Booking{booking("tt-b", "rao", timetable.Monday, "08:30", "09:15")}
		candidate := []Booking{booking("tt-a", "rao", timetable.Monday, "08:00", "08:45")}

		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 1 {
			t.Fatalf("expected one conflict, got %d", len(conflicts))
		}
		if conflicts[0].TeacherID != "rao" || conflicts[0].With.TimetableID != "tt-b" {
			t.Fatalf("unexpected conflict %#v", conflicts[0])
		}
	})

	t.Run("back to back periods and other days do not conflict", func(t *testing.T) {
		existing := []Booking{
			booking("tt-b", "rao", timetable.Monday, "08:45", "09:30"),
			booking("tt-b", "rao", timetable.Tuesday, "08:00", "08:45"),
			booking("tt-b", "iyer", timetable.Monday, "08:00", "08:45"),
		}
		candidate := []Booking{booking("tt-a", "rao", timetable.Monday, "08:00", "08:45")}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %#v", conflicts)
		}
	})

	t.Run("the candidate's own timetable is ignored", func(t *testing.T) {
		existing := []Booking{booking("tt-a", "rao", timetable.Monday, "08:00", "08:45")}
		candidate := []Booking{booking("tt-a", "rao", timetable.Monday, "08:00", "08:45")}

		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %#v", conflicts)
		}
	})

	t.Run("conflicts are ordered by day then start", func(t *testing.T) {
		existing := []Booking{
			booking("tt-b", "rao", timetable.Monday, "08:00", "09:00"),
			booking("tt-b", "rao", timetable.Monday, "10:00", "11:00"),
			booking("tt-c", "iyer", timetable.Saturday, "08:00", "09:00"),
		}
		candidate := []Booking{
			booking("tt-a", "iyer", timetable.Saturday, "08:30", "09:00"),
			booking("tt-a", "rao", timetable.Monday, "10:30", "11:15"),
			booking("tt-a", "rao", timetable.Monday, "08:15", "08:45"),
		}

		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 3 {
			t.Fatalf("expected three conflicts, got %d", len(conflicts))
		}
		got := []string{conflicts[0].Booking.Start.String(), conflicts[1].Booking.Start.String(), conflicts[2].Booking.Day.String()}
		want := []string{"08:15", "10:30", "Saturday"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("unexpected order %v", got)
			}
		}
	})
}

func TestBookings(t *testing.T) {
	tt := timetable.Timetable{
		ID:  "tt-a",
		Key: timetable.Key{ClassID: "class-7", SectionID: "A", AcademicYear: "2024-25"},
		Days: []timetable.DaySchedule{{
			Day: timetable.Monday,
			Periods: []timetable.Period{
				{ID: "p1", Kind: timetable.KindTeaching, Number: 1, Teacher: &timetable.TeacherRef{ID: "rao", Name: "Ms. Rao"},
					Start: timetable.MustParseClock("08:00"), End: timetable.MustParseClock("08:45")},
				{ID: "p2", Kind: timetable.KindTeaching, Number: 2,
					Start: timetable.MustParseClock("08:45"), End: timetable.MustParseClock("09:30")},
				{ID: "lunch", Kind: timetable.KindBreak, Number: 2, Teacher: &timetable.TeacherRef{ID: "rao"},
					Start: timetable.MustParseClock("09:30"), End: timetable.MustParseClock("10:00")},
			},
		}},
	}

	got := Bookings(tt)
	if len(got) != 1 {
		t.Fatalf("expected only the allotted teaching period, got %#v", got)
	}
	if got[0].PeriodID != "p1" || got[0].Key != tt.Key || got[0].TeacherName != "Ms. Rao" {
		t.Fatalf("unexpected booking %#v", got[0])
	}
}
