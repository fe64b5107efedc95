package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/persistence"
	"github.com/example/school-timetable/internal/timetable"
)

type timetableRepositoryAdapter struct {
	repo persistence.TimetableRepository
}

func newTimetableRepositoryAdapter(repo persistence.TimetableRepository) *timetableRepositoryAdapter {
	return &timetableRepositoryAdapter{repo: repo}
}

func (a *timetableRepositoryAdapter) CreateTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error) {
	if err := a.repo.CreateTimetable(ctx, toPersistenceTimetable(tt)); err != nil {
		return timetable.Timetable{}, err
	}
	return a.GetTimetable(ctx, tt.ID)
}

func (a *timetableRepositoryAdapter) ReplaceTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error) {
	if err := a.repo.ReplaceTimetable(ctx, toPersistenceTimetable(tt)); err != nil {
		return timetable.Timetable{}, err
	}
	return a.GetTimetable(ctx, tt.ID)
}

func (a *timetableRepositoryAdapter) ReplaceDay(ctx context.Context, timetableID string, day timetable.DaySchedule, updatedAt time.Time) (timetable.Timetable, error) {
	if err := a.repo.ReplaceDayPeriods(ctx, timetableID, int(day.Day), toPersistencePeriods(day), updatedAt); err != nil {
		return timetable.Timetable{}, err
	}
	return a.GetTimetable(ctx, timetableID)
}

func (a *timetableRepositoryAdapter) UpdateStatus(ctx context.Context, timetableID string, status timetable.Status, updatedAt time.Time) (timetable.Timetable, error) {
	if err := a.repo.UpdateTimetableStatus(ctx, timetableID, string(status), updatedAt); err != nil {
		return timetable.Timetable{}, err
	}
	return a.GetTimetable(ctx, timetableID)
}

func (a *timetableRepositoryAdapter) GetTimetable(ctx context.Context, id string) (timetable.Timetable, error) {
	stored, err := a.repo.GetTimetable(ctx, id)
	if err != nil {
		return timetable.Timetable{}, err
	}
	return toDomainTimetable(stored)
}

func (a *timetableRepositoryAdapter) FindTimetableByKey(ctx context.Context, key timetable.Key) (timetable.Timetable, error) {
	stored, err := a.repo.FindTimetableByKey(ctx, key.ClassID, key.SectionID, key.AcademicYear)
	if err != nil {
		return timetable.Timetable{}, err
	}
	return toDomainTimetable(stored)
}

func (a *timetableRepositoryAdapter) ListTimetables(ctx context.Context, filter application.TimetableFilter) ([]timetable.Timetable, error) {
	records, err := a.repo.ListTimetables(ctx, persistence.TimetableFilter{
		ClassID:      filter.ClassID,
		SectionID:    filter.SectionID,
		AcademicYear: filter.AcademicYear,
		Status:       string(filter.Status),
	})
	if err != nil {
		return nil, err
	}
	out := make([]timetable.Timetable, 0, len(records))
	for _, record := range records {
		tt, err := toDomainTimetable(record)
		if err != nil {
			return nil, err
		}
		out = append(out, tt)
	}
	return out, nil
}

func (a *timetableRepositoryAdapter) DeleteTimetable(ctx context.Context, id string) error {
	return a.repo.DeleteTimetable(ctx, id)
}

type selectionRepositoryAdapter struct {
	repo persistence.SelectionRepository
}

func newSelectionRepositoryAdapter(repo persistence.SelectionRepository) *selectionRepositoryAdapter {
	return &selectionRepositoryAdapter{repo: repo}
}

func (a *selectionRepositoryAdapter) GetSelection(ctx context.Context, userID string) (application.Selection, error) {
	stored, err := a.repo.GetSelection(ctx, userID)
	if err != nil {
		return application.Selection{}, err
	}
	return toApplicationSelection(stored), nil
}

func (a *selectionRepositoryAdapter) UpsertSelection(ctx context.Context, selection application.Selection) (application.Selection, error) {
	if err := a.repo.UpsertSelection(ctx, toPersistenceSelection(selection)); err != nil {
		return application.Selection{}, err
	}
	stored, err := a.repo.GetSelection(ctx, selection.UserID)
	if err != nil {
		return application.Selection{}, err
	}
	return toApplicationSelection(stored), nil
}

func toPersistenceTimetable(tt timetable.Timetable) persistence.Timetable {
	record := persistence.Timetable{
		ID:           tt.ID,
		ClassID:      tt.Key.ClassID,
		SectionID:    tt.Key.SectionID,
		AcademicYear: tt.Key.AcademicYear,
		Status:       string(tt.Status),
		CreatedAt:    tt.CreatedAt,
		UpdatedAt:    tt.UpdatedAt,
	}
	for _, day := range tt.Days {
		record.Periods = append(record.Periods, toPersistencePeriods(day)...)
	}
	return record
}

func toPersistencePeriods(day timetable.DaySchedule) []persistence.Period {
	rows := make([]persistence.Period, 0, len(day.Periods))
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
			row.TeacherID = cloneString(&p.Teacher.ID)
			row.TeacherName = cloneString(&p.Teacher.Name)
		}
		rows = append(rows, row)
	}
	return rows
}

// toDomainTimetable groups stored periods into the six school days. Days
// without rows come back empty.
func toDomainTimetable(record persistence.Timetable) (timetable.Timetable, error) {
	status, err := timetable.ParseStatus(record.Status)
	if err != nil {
		return timetable.Timetable{}, fmt.Errorf("timetable %s: %w", record.ID, err)
	}

	byDay := make(map[timetable.Weekday][]timetable.Period, len(timetable.SchoolDays))
	for _, row := range record.Periods {
		day := timetable.Weekday(row.Day)
		if !day.Valid() {
			return timetable.Timetable{}, fmt.Errorf("timetable %s: period %s has invalid day %d", record.ID, row.ID, row.Day)
		}
		period, err := toDomainPeriod(row)
		if err != nil {
			return timetable.Timetable{}, fmt.Errorf("timetable %s: %w", record.ID, err)
		}
		byDay[day] = append(byDay[day], period)
	}

	days := make([]timetable.DaySchedule, 0, len(timetable.SchoolDays))
	for _, day := range timetable.SchoolDays {
		periods := byDay[day]
		timetable.SortPeriods(periods)
		days = append(days, timetable.DaySchedule{Day: day, Periods: periods})
	}

	return timetable.Timetable{
		ID: record.ID,
		Key: timetable.Key{
			ClassID:      record.ClassID,
			SectionID:    record.SectionID,
			AcademicYear: record.AcademicYear,
		},
		Status:    status,
		Days:      days,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func toDomainPeriod(row persistence.Period) (timetable.Period, error) {
	start, err := timetable.ParseClock(row.StartTime)
	if err != nil {
		return timetable.Period{}, fmt.Errorf("period %s start: %w", row.ID, err)
	}
	end, err := timetable.ParseClock(row.EndTime)
	if err != nil {
		return timetable.Period{}, fmt.Errorf("period %s end: %w", row.ID, err)
	}

	period := timetable.Period{
		ID:      row.ID,
		Kind:    timetable.Kind(row.Kind),
		Number:  row.Number,
		Subject: row.Subject,
		Start:   start,
		End:     end,
		Room:    row.Room,
	}
	if row.TeacherID != nil || row.TeacherName != nil {
		teacher := &timetable.TeacherRef{}
		if row.TeacherID != nil {
			teacher.ID = *row.TeacherID
		}
		if row.TeacherName != nil {
			teacher.Name = *row.TeacherName
		}
		period.Teacher = teacher
	}
	return period, nil
}

func toApplicationSelection(model persistence.Selection) application.Selection {
	return application.Selection{
		UserID:       model.UserID,
		ClassID:      model.ClassID,
		SectionID:    model.SectionID,
		AcademicYear: model.AcademicYear,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceSelection(selection application.Selection) persistence.Selection {
	return persistence.Selection{
		UserID:       selection.UserID,
		ClassID:      selection.ClassID,
		SectionID:    selection.SectionID,
		AcademicYear: selection.AcademicYear,
		UpdatedAt:    selection.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
