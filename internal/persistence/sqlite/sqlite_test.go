package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/school-timetable/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "timetable.db")
	storage, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}

	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return storage
}

func strPtr(s string) *string { return &s }

func testTimetable(id, classID, sectionID, year string, now time.Time) persistence.Timetable {
	return persistence.Timetable{
		ID:           id,
		ClassID:      classID,
		SectionID:    sectionID,
		AcademicYear: year,
		Status:       "draft",
		CreatedAt:    now,
		UpdatedAt:    now,
		Periods: []persistence.Period{
			{ID: id + "-p1", Day: 1, Kind: "teaching", Number: 1, Subject: "Maths", TeacherID: strPtr("t-1"), TeacherName: strPtr("Ms. Rao"), StartTime: "08:00", EndTime: "08:45", Room: "101"},
			{ID: id + "-b1", Day: 1, Kind: "break", Number: 1, Subject: "Lunch Break", StartTime: "08:45", EndTime: "09:15"},
			{ID: id + "-p2", Day: 1, Kind: "teaching", Number: 2, Subject: "Science", StartTime: "09:15", EndTime: "10:00"},
			{ID: id + "-p3", Day: 2, Kind: "teaching", Number: 1, Subject: "History", StartTime: "08:00", EndTime: "08:45"},
		},
	}
}

func TestStorage_MigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	status, err := storage.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if status.CurrentVersion != "002" || status.PendingCount != 0 {
		t.Fatalf("unexpected migration status %+v", status)
	}
	if err := storage.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestStorage_OpenInMemory(t *testing.T) {
	storage, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory storage: %v", err)
	}
	defer storage.Close()

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
}

func TestTimetableRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	if err := storage.CreateTimetable(ctx, testTimetable("tt-1", "class-7", "A", "2024-25", now)); err != nil {
		t.Fatalf("CreateTimetable failed: %v", err)
	}

	fetched, err := storage.GetTimetable(ctx, "tt-1")
	if err != nil {
		t.Fatalf("GetTimetable failed: %v", err)
	}
	if fetched.ClassID != "class-7" || fetched.Status != "draft" || !fetched.CreatedAt.Equal(now) {
		t.Fatalf("unexpected timetable %#v", fetched)
	}
	if len(fetched.Periods) != 4 {
		t.Fatalf("expected 4 periods, got %d", len(fetched.Periods))
	}

	// day 1: period 1, break after 1, period 2, then day 2
	wantOrder := []string{"tt-1-p1", "tt-1-b1", "tt-1-p2", "tt-1-p3"}
	for i, id := range wantOrder {
		if fetched.Periods[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, fetched.Periods[i].ID)
		}
	}
	if p := fetched.Periods[0]; p.TeacherID == nil || *p.TeacherID != "t-1" || *p.TeacherName != "Ms. Rao" {
		t.Fatalf("teacher not round-tripped: %#v", p)
	}
	if fetched.Periods[2].TeacherID != nil {
		t.Fatalf("expected nil teacher for unallotted period")
	}

	byKey, err := storage.FindTimetableByKey(ctx, "class-7", "A", "2024-25")
	if err != nil {
		t.Fatalf("FindTimetableByKey failed: %v", err)
	}
	if byKey.ID != "tt-1" {
		t.Fatalf("expected tt-1, got %s", byKey.ID)
	}

	if _, err := storage.FindTimetableByKey(ctx, "class-7", "B", "2024-25"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimetableRepository_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	now := time.Now().UTC().Truncate(time.Second)

	if err := storage.CreateTimetable(ctx, testTimetable("tt-1", "class-7", "A", "2024-25", now)); err != nil {
		t.Fatalf("CreateTimetable failed: %v", err)
	}

	err := storage.CreateTimetable(ctx, testTimetable("tt-2", "class-7", "A", "2024-25", now))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// the failed insert must not leave periods behind
	if _, err := storage.GetTimetable(ctx, "tt-2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for rolled back timetable, got %v", err)
	}
}

func TestTimetableRepository_ConstraintViolations(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	now := time.Now().UTC().Truncate(time.Second)

	twoBreaks := testTimetable("tt-1", "class-7", "A", "2024-25", now)
	twoBreaks.Periods = append(twoBreaks.Periods, persistence.Period{
		ID: "tt-1-b2", Day: 1, Kind: "break", Number: 2, StartTime: "10:00", EndTime: "10:15",
	})
	if err := storage.CreateTimetable(ctx, twoBreaks); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second break, got %v", err)
	}

	backwards := testTimetable("tt-2", "class-8", "A", "2024-25", now)
	backwards.Periods[0].EndTime = "07:00"
	if err := storage.CreateTimetable(ctx, backwards); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for end before start, got %v", err)
	}

	badStatus := testTimetable("tt-3", "class-9", "A", "2024-25", now)
	badStatus.Status = "archived"
	if err := storage.CreateTimetable(ctx, badStatus); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for unknown status, got %v", err)
	}

	if err := storage.CreateTimetable(ctx, persistence.Timetable{ID: "tt-4"}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for missing key, got %v", err)
	}
}

func TestTimetableRepository_ReplaceTimetable(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	original := testTimetable("tt-1", "class-7", "A", "2024-25", created)
	if err := storage.CreateTimetable(ctx, original); err != nil {
		t.Fatalf("CreateTimetable failed: %v", err)
	}

	replacement := original
	replacement.UpdatedAt = created.Add(time.Hour)
	replacement.CreatedAt = created.Add(48 * time.Hour)
	replacement.Periods = []persistence.Period{
		{ID: "new-1", Day: 3, Kind: "teaching", Number: 1, Subject: "Art", StartTime: "09:00", EndTime: "09:40"},
	}
	if err := storage.ReplaceTimetable(ctx, replacement); err != nil {
		t.Fatalf("ReplaceTimetable failed: %v", err)
	}

	fetched, err := storage.GetTimetable(ctx, "tt-1")
	if err != nil {
		t.Fatalf("GetTimetable failed: %v", err)
	}
	if len(fetched.Periods) != 1 || fetched.Periods[0].ID != "new-1" {
		t.Fatalf("expected periods to be replaced, got %#v", fetched.Periods)
	}
	if !fetched.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at to be preserved, got %v", fetched.CreatedAt)
	}
	if !fetched.UpdatedAt.Equal(created.Add(time.Hour)) {
		t.Fatalf("expected updated_at to change, got %v", fetched.UpdatedAt)
	}

	missing := replacement
	missing.ID = "missing"
	if err := storage.ReplaceTimetable(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimetableRepository_ReplaceDayPeriods(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	if err := storage.CreateTimetable(ctx, testTimetable("tt-1", "class-7", "A", "2024-25", now)); err != nil {
		t.Fatalf("CreateTimetable failed: %v", err)
	}

	monday := []persistence.Period{
		{ID: "m-1", Day: 1, Kind: "teaching", Number: 1, Subject: "English", StartTime: "08:00", EndTime: "08:50"},
	}
	later := now.Add(30 * time.Minute)
	if err := storage.ReplaceDayPeriods(ctx, "tt-1", 1, monday, later); err != nil {
		t.Fatalf("ReplaceDayPeriods failed: %v", err)
	}

	fetched, err := storage.GetTimetable(ctx, "tt-1")
	if err != nil {
		t.Fatalf("GetTimetable failed: %v", err)
	}
	if len(fetched.Periods) != 2 {
		t.Fatalf("expected monday replaced and tuesday kept, got %#v", fetched.Periods)
	}
	if fetched.Periods[0].ID != "m-1" || fetched.Periods[1].ID != "tt-1-p3" {
		t.Fatalf("unexpected periods %#v", fetched.Periods)
	}
	if !fetched.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated_at %v, got %v", later, fetched.UpdatedAt)
	}

	wrongDay := []persistence.Period{{ID: "x", Day: 2, Kind: "teaching", Number: 2, StartTime: "09:00", EndTime: "09:30"}}
	if err := storage.ReplaceDayPeriods(ctx, "tt-1", 1, wrongDay, later); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	if err := storage.ReplaceDayPeriods(ctx, "missing", 1, nil, later); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimetableRepository_StatusListAndDelete(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	fixtures := []persistence.Timetable{
		testTimetable("tt-1", "class-7", "B", "2024-25", now),
		testTimetable("tt-2", "class-7", "A", "2024-25", now),
		testTimetable("tt-3", "class-7", "A", "2023-24", now),
		testTimetable("tt-4", "class-8", "A", "2024-25", now),
	}
	for _, timetable := range fixtures {
		if err := storage.CreateTimetable(ctx, timetable); err != nil {
			t.Fatalf("CreateTimetable(%s) failed: %v", timetable.ID, err)
		}
	}

	if err := storage.UpdateTimetableStatus(ctx, "tt-2", "published", now.Add(time.Minute)); err != nil {
		t.Fatalf("UpdateTimetableStatus failed: %v", err)
	}
	if err := storage.UpdateTimetableStatus(ctx, "missing", "published", now); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, err := storage.ListTimetables(ctx, persistence.TimetableFilter{})
	if err != nil {
		t.Fatalf("ListTimetables failed: %v", err)
	}
	wantOrder := []string{"tt-2", "tt-1", "tt-4", "tt-3"}
	if len(all) != len(wantOrder) {
		t.Fatalf("expected %d timetables, got %d", len(wantOrder), len(all))
	}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
		if len(all[i].Periods) != 4 {
			t.Fatalf("expected periods loaded for %s", all[i].ID)
		}
	}

	published, err := storage.ListTimetables(ctx, persistence.TimetableFilter{Status: "published"})
	if err != nil {
		t.Fatalf("ListTimetables failed: %v", err)
	}
	if len(published) != 1 || published[0].ID != "tt-2" {
		t.Fatalf("expected only tt-2 published, got %#v", published)
	}

	filtered, err := storage.ListTimetables(ctx, persistence.TimetableFilter{ClassID: "class-7", AcademicYear: "2024-25"})
	if err != nil {
		t.Fatalf("ListTimetables failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 filtered timetables, got %d", len(filtered))
	}

	if err := storage.DeleteTimetable(ctx, "tt-1"); err != nil {
		t.Fatalf("DeleteTimetable failed: %v", err)
	}
	if _, err := storage.GetTimetable(ctx, "tt-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := storage.DeleteTimetable(ctx, "tt-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	none, err := storage.ListTimetables(ctx, persistence.TimetableFilter{ClassID: "class-99"})
	if err != nil {
		t.Fatalf("ListTimetables failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no timetables, got %d", len(none))
	}
}

func TestSelectionRepository(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	now := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	if _, err := storage.GetSelection(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	selection := persistence.Selection{UserID: "user-1", ClassID: "class-7", SectionID: "A", UpdatedAt: now}
	if err := storage.UpsertSelection(ctx, selection); err != nil {
		t.Fatalf("UpsertSelection failed: %v", err)
	}

	selection.SectionID = "B"
	selection.AcademicYear = "2024-25"
	selection.UpdatedAt = now.Add(time.Hour)
	if err := storage.UpsertSelection(ctx, selection); err != nil {
		t.Fatalf("second UpsertSelection failed: %v", err)
	}

	fetched, err := storage.GetSelection(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSelection failed: %v", err)
	}
	if fetched.SectionID != "B" || fetched.AcademicYear != "2024-25" || !fetched.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected selection %#v", fetched)
	}

	if err := storage.UpsertSelection(ctx, persistence.Selection{UserID: "user-2"}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}
