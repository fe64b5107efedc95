package testfixtures

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/persistence"
	"github.com/example/school-timetable/internal/timetable"
)

var (
	timetableCounter uint64
	selectionCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// -------------------------- Timetable fixtures --------------------------

// TimetableFixture represents a deterministic week that can be materialised
// for domain, application or persistence tests.
type TimetableFixture struct {
	ID           string
	ClassID      string
	SectionID    string
	AcademicYear string
	Status       timetable.Status
	Days         []timetable.DaySchedule
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TimetableOption configures the generated timetable fixture.
type TimetableOption func(*TimetableFixture)

// NewTimetableFixture returns a draft week of six school days. Monday to
// Friday carry four teaching periods with a break after the second; Saturday
// carries three periods and no break.
func NewTimetableFixture(opts ...TimetableOption) TimetableFixture {
	idx := atomic.AddUint64(&timetableCounter, 1)
	id := fmt.Sprintf("timetable-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := TimetableFixture{
		ID:           id,
		ClassID:      fmt.Sprintf("class-%03d", idx),
		SectionID:    "A",
		AcademicYear: "2024-25",
		Status:       timetable.StatusDraft,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	fixture.Days = StandardWeek(id)
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTimetableID overrides the generated ID. Period IDs keep their original prefix.
func WithTimetableID(id string) TimetableOption {
	return func(f *TimetableFixture) {
		f.ID = id
	}
}

// WithTimetableKey overrides the class section and academic year.
func WithTimetableKey(classID, sectionID, academicYear string) TimetableOption {
	return func(f *TimetableFixture) {
		f.ClassID = classID
		f.SectionID = sectionID
		f.AcademicYear = academicYear
	}
}

// WithTimetableStatus sets the draft/published status.
func WithTimetableStatus(status timetable.Status) TimetableOption {
	return func(f *TimetableFixture) {
		f.Status = status
	}
}

// WithTimetableDays replaces the generated week.
func WithTimetableDays(days []timetable.DaySchedule) TimetableOption {
	return func(f *TimetableFixture) {
		f.Days = days
	}
}

// WithTimetableTimestamps sets both created and updated timestamps on the fixture.
func WithTimetableTimestamps(created, updated time.Time) TimetableOption {
	return func(f *TimetableFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Key returns the fixture's class section key.
func (f TimetableFixture) Key() timetable.Key {
	return timetable.Key{ClassID: f.ClassID, SectionID: f.SectionID, AcademicYear: f.AcademicYear}
}

// Domain returns the fixture as a timetable.Timetable value.
func (f TimetableFixture) Domain() timetable.Timetable {
	days := make([]timetable.DaySchedule, len(f.Days))
	for i, day := range f.Days {
		days[i] = day.Clone()
	}
	return timetable.Timetable{
		ID:        f.ID,
		Key:       f.Key(),
		Status:    f.Status,
		Days:      days,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Timetable value.
func (f TimetableFixture) Persistence() persistence.Timetable {
	record := persistence.Timetable{
		ID:           f.ID,
		ClassID:      f.ClassID,
		SectionID:    f.SectionID,
		AcademicYear: f.AcademicYear,
		Status:       string(f.Status),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
	for _, day := range f.Days {
		for _, p := range day.Periods {
			row := persistence.Period{
				ID:        p.ID,
				Day:       int(day.Day),
				Kind:      string(p.Kind),
				Number:    p.Number,
				Subject:   p.Subject,
				StartTime: p.Start.String(),
				EndTime:   p.End.String(),
				Room:      p.Room,
			}
			if p.Teacher != nil {
				teacherID, teacherName := p.Teacher.ID, p.Teacher.Name
				row.TeacherID = &teacherID
				row.TeacherName = &teacherName
			}
			record.Periods = append(record.Periods, row)
		}
	}
	return record
}

// StandardWeek builds the default fixture week. Period IDs are prefixed with
// prefix so weeks of different fixtures never share IDs.
func StandardWeek(prefix string) []timetable.DaySchedule {
	subjects := []string{"Mathematics", "English", "Science", "History"}
	days := make([]timetable.DaySchedule, 0, len(timetable.SchoolDays))
	for _, day := range timetable.SchoolDays {
		count, breakAfter := 4, 2
		if day == timetable.Saturday {
			count, breakAfter = 3, 0
		}

		clock := timetable.MustParseClock("08:00")
		periods := make([]timetable.Period, 0, count+1)
		for n := 1; n <= count; n++ {
			period := timetable.Period{
				ID:      periodID(prefix, day, strconv.Itoa(n)),
				Kind:    timetable.KindTeaching,
				Number:  n,
				Subject: subjects[(n-1)%len(subjects)],
				Start:   clock,
				End:     clock.Add(45),
				Room:    "101",
			}
			if n == 1 {
				period.Teacher = &timetable.TeacherRef{ID: "teacher-001", Name: "Ms. Rao"}
			}
			periods = append(periods, period)
			clock = clock.Add(45)

			if n == breakAfter {
				periods = append(periods, timetable.Period{
					ID:      periodID(prefix, day, strconv.Itoa(n)+".5"),
					Kind:    timetable.KindBreak,
					Number:  n,
					Subject: timetable.DefaultBreakSubject,
					Start:   clock,
					End:     clock.Add(30),
				})
				clock = clock.Add(30)
			}
		}
		days = append(days, timetable.DaySchedule{Day: day, Periods: periods})
	}
	return days
}

func periodID(prefix string, day timetable.Weekday, position string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, day.String()[:3], position)
}

// -------------------------- Selection fixtures --------------------------

// SelectionFixture represents a stored dashboard selection.
type SelectionFixture struct {
	UserID       string
	ClassID      string
	SectionID    string
	AcademicYear string
	UpdatedAt    time.Time
}

// SelectionOption configures the generated selection fixture.
type SelectionOption func(*SelectionFixture)

// NewSelectionFixture returns a deterministic selection fixture with optional overrides.
func NewSelectionFixture(opts ...SelectionOption) SelectionFixture {
	idx := atomic.AddUint64(&selectionCounter, 1)
	fixture := SelectionFixture{
		UserID:       fmt.Sprintf("user-%03d", idx),
		ClassID:      "class-7",
		SectionID:    "A",
		AcademicYear: "2024-25",
		UpdatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSelectionUser overrides the user the selection belongs to.
func WithSelectionUser(userID string) SelectionOption {
	return func(f *SelectionFixture) {
		f.UserID = userID
	}
}

// WithSelectionSection overrides the selected class section.
func WithSelectionSection(classID, sectionID string) SelectionOption {
	return func(f *SelectionFixture) {
		f.ClassID = classID
		f.SectionID = sectionID
	}
}

// WithSelectionUpdatedAt sets the selection timestamp.
func WithSelectionUpdatedAt(t time.Time) SelectionOption {
	return func(f *SelectionFixture) {
		f.UpdatedAt = t
	}
}

// Application returns the fixture as an application.Selection value.
func (f SelectionFixture) Application() application.Selection {
	return application.Selection{
		UserID:       f.UserID,
		ClassID:      f.ClassID,
		SectionID:    f.SectionID,
		AcademicYear: f.AcademicYear,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Selection value.
func (f SelectionFixture) Persistence() persistence.Selection {
	return persistence.Selection{
		UserID:       f.UserID,
		ClassID:      f.ClassID,
		SectionID:    f.SectionID,
		AcademicYear: f.AcademicYear,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ------------------------------ Principals ------------------------------

// Admin returns an administrator principal.
func Admin(userID string) application.Principal {
	return application.Principal{UserID: userID, Role: application.RoleAdmin}
}

// Teacher returns a teacher principal.
func Teacher(userID string) application.Principal {
	return application.Principal{UserID: userID, Role: application.RoleTeacher}
}

// Student returns a student principal.
func Student(userID string) application.Principal {
	return application.Principal{UserID: userID, Role: application.RoleStudent}
}

// Parent returns a parent principal.
func Parent(userID string) application.Principal {
	return application.Principal{UserID: userID, Role: application.RoleParent}
}
