package persistence

import "time"

// Timetable is the stored form of a class section's week.
type Timetable struct {
	ID           string
	ClassID      string
	SectionID    string
	AcademicYear string
	Status       string
	Periods      []Period
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Period is one row of timetable_periods. Day counts from 1 for Monday.
type Period struct {
	ID          string
	Day         int
	Kind        string
	Number      int
	Subject     string
	TeacherID   *string
	TeacherName *string
	StartTime   string
	EndTime     string
	Room        string
}

// TimetableFilter narrows timetable queries. Empty fields match everything.
type TimetableFilter struct {
	ClassID      string
	SectionID    string
	AcademicYear string
	Status       string
}

// Selection is the class section a user last opened.
type Selection struct {
	UserID       string
	ClassID      string
	SectionID    string
	AcademicYear string
	UpdatedAt    time.Time
}
