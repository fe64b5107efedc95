package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/timetable"
)

// MemoryStore is an in-memory implementation of the application timetable and
// selection repositories for handler and service tests.
type MemoryStore struct {
	mu         sync.RWMutex
	timetables map[string]timetable.Timetable
	selections map[string]application.Selection
}

// NewMemoryStore returns an empty store, optionally seeded with timetables.
func NewMemoryStore(seed ...timetable.Timetable) *MemoryStore {
	store := &MemoryStore{
		timetables: make(map[string]timetable.Timetable),
		selections: make(map[string]application.Selection),
	}
	for _, tt := range seed {
		store.timetables[tt.ID] = tt.Clone()
	}
	return store
}

// CreateTimetable stores a new timetable. The key must be unused.
func (s *MemoryStore) CreateTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timetables[tt.ID]; ok {
		return timetable.Timetable{}, application.ErrAlreadyExists
	}
	for _, existing := range s.timetables {
		if existing.Key == tt.Key {
			return timetable.Timetable{}, application.ErrAlreadyExists
		}
	}
	s.timetables[tt.ID] = tt.Clone()
	return tt.Clone(), nil
}

// ReplaceTimetable overwrites an existing timetable, keeping its creation time.
func (s *MemoryStore) ReplaceTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.timetables[tt.ID]
	if !ok {
		return timetable.Timetable{}, application.ErrNotFound
	}
	stored := tt.Clone()
	stored.CreatedAt = existing.CreatedAt
	s.timetables[tt.ID] = stored
	return stored.Clone(), nil
}

// ReplaceDay swaps the periods of one day.
func (s *MemoryStore) ReplaceDay(ctx context.Context, timetableID string, day timetable.DaySchedule, updatedAt time.Time) (timetable.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tt, ok := s.timetables[timetableID]
	if !ok {
		return timetable.Timetable{}, application.ErrNotFound
	}
	replaced := false
	for i := range tt.Days {
		if tt.Days[i].Day == day.Day {
			tt.Days[i] = day.Clone()
			replaced = true
		}
	}
	if !replaced {
		tt.Days = append(tt.Days, day.Clone())
	}
	tt.UpdatedAt = updatedAt
	s.timetables[timetableID] = tt
	return tt.Clone(), nil
}

// UpdateStatus sets the draft/published status.
func (s *MemoryStore) UpdateStatus(ctx context.Context, timetableID string, status timetable.Status, updatedAt time.Time) (timetable.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tt, ok := s.timetables[timetableID]
	if !ok {
		return timetable.Timetable{}, application.ErrNotFound
	}
	tt.Status = status
	tt.UpdatedAt = updatedAt
	s.timetables[timetableID] = tt
	return tt.Clone(), nil
}

// GetTimetable returns a timetable by ID.
func (s *MemoryStore) GetTimetable(ctx context.Context, id string) (timetable.Timetable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tt, ok := s.timetables[id]
	if !ok {
		return timetable.Timetable{}, application.ErrNotFound
	}
	return tt.Clone(), nil
}

// FindTimetableByKey returns the timetable stored for key.
func (s *MemoryStore) FindTimetableByKey(ctx context.Context, key timetable.Key) (timetable.Timetable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tt := range s.timetables {
		if tt.Key == key {
			return tt.Clone(), nil
		}
	}
	return timetable.Timetable{}, application.ErrNotFound
}

// ListTimetables returns timetables matching filter ordered by ID.
func (s *MemoryStore) ListTimetables(ctx context.Context, filter application.TimetableFilter) ([]timetable.Timetable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []timetable.Timetable
	for _, tt := range s.timetables {
		switch {
		case filter.ClassID != "" && tt.Key.ClassID != filter.ClassID:
		case filter.SectionID != "" && tt.Key.SectionID != filter.SectionID:
		case filter.AcademicYear != "" && tt.Key.AcademicYear != filter.AcademicYear:
		case filter.Status != "" && tt.Status != filter.Status:
		default:
			out = append(out, tt.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteTimetable removes a timetable.
func (s *MemoryStore) DeleteTimetable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timetables[id]; !ok {
		return application.ErrNotFound
	}
	delete(s.timetables, id)
	return nil
}

// GetSelection returns the stored selection for a user.
func (s *MemoryStore) GetSelection(ctx context.Context, userID string) (application.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selection, ok := s.selections[userID]
	if !ok {
		return application.Selection{}, application.ErrNotFound
	}
	return selection, nil
}

// UpsertSelection stores or replaces a user's selection.
func (s *MemoryStore) UpsertSelection(ctx context.Context, selection application.Selection) (application.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selections[selection.UserID] = selection
	return selection, nil
}

// Snapshot returns copies of every stored timetable ordered by ID.
func (s *MemoryStore) Snapshot() []timetable.Timetable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]timetable.Timetable, 0, len(s.timetables))
	for _, tt := range s.timetables {
		out = append(out, tt.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
