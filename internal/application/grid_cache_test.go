package application

import (
	"testing"
	"time"

	"github.com/example/school-timetable/internal/timetable"
)

func sampleGrids(t *testing.T) []DayGrid {
	t.Helper()
	periods := []timetable.Period{
		{ID: "p1", Kind: timetable.KindTeaching, Number: 1, Subject: "Maths", Start: timetable.MustParseClock("08:00"), End: timetable.MustParseClock("08:45")},
		{ID: "lunch", Kind: timetable.KindBreak, Number: 1, Subject: timetable.DefaultBreakSubject, Start: timetable.MustParseClock("08:45"), End: timetable.MustParseClock("09:15")},
	}
	grid, err := timetable.Place(periods)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	return []DayGrid{{Day: timetable.Monday, Grid: grid}}
}

func TestGridCache(t *testing.T) {
	t.Parallel()

	t.Run("returns copies", func(t *testing.T) {
		t.Parallel()
		cache := NewGridCache(4, time.Minute)
		cache.Store("tt-1", cache.Generation(), sampleGrids(t))

		first, ok := cache.Get("tt-1")
		if !ok {
			t.Fatal("expected a cache hit")
		}
		first[0].Grid[0].Subject = "Changed"

		second, _ := cache.Get("tt-1")
		if second[0].Grid[0].Subject != "Maths" {
			t.Fatalf("cached grid was mutated through a returned copy: %q", second[0].Grid[0].Subject)
		}
		if second[0].Grid[timetable.LunchSlot] == nil || !second[0].Grid[timetable.LunchSlot].IsBreak() {
			t.Fatal("expected the break in the lunch slot")
		}
	})

	t.Run("invalidates and evicts", func(t *testing.T) {
		t.Parallel()
		cache := NewGridCache(2, time.Minute)
		cache.Store("tt-1", 0, sampleGrids(t))
		cache.Store("tt-2", 0, sampleGrids(t))
		cache.Store("tt-3", 0, sampleGrids(t))

		if _, ok := cache.Get("tt-1"); ok {
			t.Fatal("expected the oldest entry to be evicted")
		}
		cache.Invalidate("tt-2")
		if _, ok := cache.Get("tt-2"); ok {
			t.Fatal("expected invalidated entry to be gone")
		}
		if cache.Len() != 1 {
			t.Fatalf("expected one live entry, got %d", cache.Len())
		}
		cache.Purge()
		if cache.Len() != 0 {
			t.Fatalf("expected empty cache after purge, got %d", cache.Len())
		}
	})

	t.Run("refuses grids loaded before an invalidation", func(t *testing.T) {
		t.Parallel()
		cache := NewGridCache(4, time.Minute)
		generation := cache.Generation()
		cache.Invalidate("tt-1")

		if cache.Store("tt-1", generation, sampleGrids(t)) {
			t.Fatal("expected the store to be refused")
		}
		if _, ok := cache.Get("tt-1"); ok {
			t.Fatal("expected no entry after a refused store")
		}
		if !cache.Store("tt-1", cache.Generation(), sampleGrids(t)) {
			t.Fatal("expected a store with the current generation to be kept")
		}
		cache.Purge()
		if cache.Store("tt-2", generation+1, sampleGrids(t)) {
			t.Fatal("purge should advance the generation")
		}
	})

	t.Run("nil cache is a no-op", func(t *testing.T) {
		t.Parallel()
		var cache *GridCache
		if cache.Store("tt-1", cache.Generation(), sampleGrids(t)) {
			t.Fatal("nil cache should not keep grids")
		}
		cache.Invalidate("tt-1")
		if _, ok := cache.Get("tt-1"); ok || cache.Len() != 0 {
			t.Fatal("nil cache should never hit")
		}
	})
}
