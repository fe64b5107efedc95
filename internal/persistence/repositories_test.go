package persistence_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/school-timetable/internal/persistence"
	"github.com/example/school-timetable/internal/testfixtures"
	"github.com/example/school-timetable/internal/timetable"
)

func newPersistenceTimetable(opts ...testfixtures.TimetableOption) persistence.Timetable {
	return testfixtures.NewTimetableFixture(opts...).Persistence()
}

func periodIDs(periods []persistence.Period) []string {
	ids := make([]string, len(periods))
	for i, p := range periods {
		ids[i] = p.ID
	}
	return ids
}

func TestTimetableRepository(t *testing.T) {
	t.Parallel()

	t.Run("creates, reads, replaces, and deletes timetables", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)
		defer harness.Close()

		base := testfixtures.ReferenceTime()
		record := newPersistenceTimetable(
			testfixtures.WithTimetableID("tt-1"),
			testfixtures.WithTimetableKey("class-7", "A", "2024-25"),
			testfixtures.WithTimetableTimestamps(base, base),
		)

		if err := harness.Timetables.CreateTimetable(ctx, record); err != nil {
			t.Fatalf("CreateTimetable failed: %v", err)
		}

		fetched, err := harness.Timetables.GetTimetable(ctx, "tt-1")
		if err != nil {
			t.Fatalf("GetTimetable failed: %v", err)
		}
		if fetched.Status != "draft" || !fetched.CreatedAt.Equal(base) {
			t.Fatalf("unexpected timetable: %#v", fetched)
		}
		if !slices.Equal(periodIDs(fetched.Periods), periodIDs(record.Periods)) {
			t.Fatalf("periods not returned in day/position order:\n got %v\nwant %v", periodIDs(fetched.Periods), periodIDs(record.Periods))
		}

		replacement := record
		replacement.UpdatedAt = base.Add(time.Hour)
		replacement.Periods = record.Periods[:3]
		if err := harness.Timetables.ReplaceTimetable(ctx, replacement); err != nil {
			t.Fatalf("ReplaceTimetable failed: %v", err)
		}

		fetched, err = harness.Timetables.FindTimetableByKey(ctx, "class-7", "A", "2024-25")
		if err != nil {
			t.Fatalf("FindTimetableByKey failed: %v", err)
		}
		if len(fetched.Periods) != 3 || !fetched.UpdatedAt.Equal(base.Add(time.Hour)) {
			t.Fatalf("replacement not stored: %#v", fetched)
		}

		if err := harness.Timetables.DeleteTimetable(ctx, "tt-1"); err != nil {
			t.Fatalf("DeleteTimetable failed: %v", err)
		}
		if _, err := harness.Timetables.GetTimetable(ctx, "tt-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("rejects a second timetable for the same class section", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		first := newPersistenceTimetable(testfixtures.WithTimetableKey("class-8", "B", "2024-25"))
		second := newPersistenceTimetable(testfixtures.WithTimetableKey("class-8", "B", "2024-25"))

		if err := harness.Timetables.CreateTimetable(ctx, first); err != nil {
			t.Fatalf("CreateTimetable failed: %v", err)
		}
		if err := harness.Timetables.CreateTimetable(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		other := newPersistenceTimetable(testfixtures.WithTimetableKey("class-8", "B", "2025-26"))
		if err := harness.Timetables.CreateTimetable(ctx, other); err != nil {
			t.Fatalf("expected a different academic year to be accepted, got %v", err)
		}
	})

	t.Run("replaces one day and updates status", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		record := newPersistenceTimetable()
		if err := harness.Timetables.CreateTimetable(ctx, record); err != nil {
			t.Fatalf("CreateTimetable failed: %v", err)
		}

		saturday := int(timetable.Saturday)
		periods := []persistence.Period{
			{ID: "sat-1", Day: saturday, Kind: "teaching", Number: 1, Subject: "Games", StartTime: "09:00", EndTime: "10:00"},
		}
		updated := record.UpdatedAt.Add(10 * time.Minute)
		if err := harness.Timetables.ReplaceDayPeriods(ctx, record.ID, saturday, periods, updated); err != nil {
			t.Fatalf("ReplaceDayPeriods failed: %v", err)
		}
		if err := harness.Timetables.UpdateTimetableStatus(ctx, record.ID, "published", updated.Add(time.Minute)); err != nil {
			t.Fatalf("UpdateTimetableStatus failed: %v", err)
		}

		fetched, err := harness.Timetables.GetTimetable(ctx, record.ID)
		if err != nil {
			t.Fatalf("GetTimetable failed: %v", err)
		}
		if fetched.Status != "published" || !fetched.UpdatedAt.Equal(updated.Add(time.Minute)) {
			t.Fatalf("status not updated: %#v", fetched)
		}

		var saturdayIDs []string
		for _, p := range fetched.Periods {
			if p.Day == saturday {
				saturdayIDs = append(saturdayIDs, p.ID)
			}
		}
		if !slices.Equal(saturdayIDs, []string{"sat-1"}) {
			t.Fatalf("expected saturday replaced, got %v", saturdayIDs)
		}
		if len(fetched.Periods) != len(record.Periods)-3+1 {
			t.Fatalf("other days should be untouched, got %d periods", len(fetched.Periods))
		}
	})

	t.Run("lists with filters in academic year order", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		harness := testfixtures.NewSQLiteHarness(t)

		records := []persistence.Timetable{
			newPersistenceTimetable(testfixtures.WithTimetableKey("class-1", "A", "2023-24")),
			newPersistenceTimetable(testfixtures.WithTimetableKey("class-1", "A", "2024-25"), testfixtures.WithTimetableStatus(timetable.StatusPublished)),
			newPersistenceTimetable(testfixtures.WithTimetableKey("class-2", "A", "2024-25")),
		}
		for _, record := range records {
			if err := harness.Timetables.CreateTimetable(ctx, record); err != nil {
				t.Fatalf("CreateTimetable failed: %v", err)
			}
		}

		all, err := harness.Timetables.ListTimetables(ctx, persistence.TimetableFilter{})
		if err != nil {
			t.Fatalf("ListTimetables failed: %v", err)
		}
		var years []string
		for _, record := range all {
			years = append(years, record.AcademicYear+"/"+record.ClassID)
		}
		if !slices.Equal(years, []string{"2024-25/class-1", "2024-25/class-2", "2023-24/class-1"}) {
			t.Fatalf("unexpected order %v", years)
		}

		published, err := harness.Timetables.ListTimetables(ctx, persistence.TimetableFilter{Status: "published"})
		if err != nil {
			t.Fatalf("ListTimetables failed: %v", err)
		}
		if len(published) != 1 || published[0].ID != records[1].ID {
			t.Fatalf("expected only the published timetable, got %d", len(published))
		}
	})
}

func TestSelectionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	selection := testfixtures.NewSelectionFixture(testfixtures.WithSelectionUser("parent-1")).Persistence()
	if err := harness.Selections.UpsertSelection(ctx, selection); err != nil {
		t.Fatalf("UpsertSelection failed: %v", err)
	}

	moved := testfixtures.NewSelectionFixture(
		testfixtures.WithSelectionUser("parent-1"),
		testfixtures.WithSelectionSection("class-8", "C"),
	).Persistence()
	if err := harness.Selections.UpsertSelection(ctx, moved); err != nil {
		t.Fatalf("UpsertSelection failed: %v", err)
	}

	fetched, err := harness.Selections.GetSelection(ctx, "parent-1")
	if err != nil {
		t.Fatalf("GetSelection failed: %v", err)
	}
	if fetched.ClassID != "class-8" || fetched.SectionID != "C" || !fetched.UpdatedAt.Equal(moved.UpdatedAt) {
		t.Fatalf("unexpected selection %#v", fetched)
	}

	if _, err := harness.Selections.GetSelection(ctx, "nobody"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
