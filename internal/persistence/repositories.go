package persistence

import (
	"context"
	"time"
)

// TimetableRepository stores timetables together with their periods.
type TimetableRepository interface {
	CreateTimetable(ctx context.Context, timetable Timetable) error
	// ReplaceTimetable swaps the key, status and every period of an existing timetable.
	ReplaceTimetable(ctx context.Context, timetable Timetable) error
	// ReplaceDayPeriods swaps the periods of one day and bumps updated_at.
	ReplaceDayPeriods(ctx context.Context, timetableID string, day int, periods []Period, updatedAt time.Time) error
	UpdateTimetableStatus(ctx context.Context, timetableID, status string, updatedAt time.Time) error
	GetTimetable(ctx context.Context, id string) (Timetable, error)
	FindTimetableByKey(ctx context.Context, classID, sectionID, academicYear string) (Timetable, error)
	ListTimetables(ctx context.Context, filter TimetableFilter) ([]Timetable, error)
	DeleteTimetable(ctx context.Context, id string) error
}

// SelectionRepository stores the last class section opened by each user.
type SelectionRepository interface {
	GetSelection(ctx context.Context, userID string) (Selection, error)
	UpsertSelection(ctx context.Context, selection Selection) error
}
