package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/school-timetable/internal/persistence"
	"github.com/example/school-timetable/internal/persistence/sqlite"
)

// SQLiteHarness is a migrated timetable database in a temporary directory.
type SQLiteHarness struct {
	Storage    *sqlite.Storage
	Timetables persistence.TimetableRepository
	Selections persistence.SelectionRepository

	closed bool
}

// Close releases the database. It is also registered with tb.Cleanup, so
// calling it is optional.
func (h *SQLiteHarness) Close() {
	if h == nil || h.closed {
		return
	}
	h.closed = true
	_ = h.Storage.Close()
}

// NewSQLiteHarness opens and migrates a fresh database, then stores every
// seed timetable through the repository.
func NewSQLiteHarness(tb testing.TB, seed ...TimetableFixture) *SQLiteHarness {
	tb.Helper()

	storage, err := sqlite.Open(filepath.Join(tb.TempDir(), "timetable.db"))
	if err != nil {
		tb.Fatalf("open timetable database: %v", err)
	}
	harness := &SQLiteHarness{Storage: storage, Timetables: storage, Selections: storage}
	tb.Cleanup(harness.Close)

	ctx := context.Background()
	if err := storage.Migrate(ctx); err != nil {
		tb.Fatalf("migrate timetable database: %v", err)
	}
	for _, fixture := range seed {
		if err := storage.CreateTimetable(ctx, fixture.Persistence()); err != nil {
			tb.Fatalf("seed timetable %s: %v", fixture.ID, err)
		}
	}
	return harness
}
