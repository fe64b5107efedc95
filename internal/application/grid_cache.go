package application

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultGridCacheSize = 256
	defaultGridCacheTTL  = 5 * time.Minute
)

// GridCache stores placed week grids per timetable so dashboards re-rendering
// an unchanged timetable skip placement. Entries are dropped on every write to
// the timetable.
//
// Every Invalidate and Purge advances a generation counter. A reader takes the
// generation before loading a timetable and hands it to Store, which refuses
// grids loaded before a later invalidation.
type GridCache struct {
	mu         sync.Mutex
	generation uint64
	lru        *expirable.LRU[string, []DayGrid]
}

// NewGridCache builds a cache bounded by size entries that each live for ttl.
func NewGridCache(size int, ttl time.Duration) *GridCache {
	if size <= 0 {
		size = defaultGridCacheSize
	}
	if ttl <= 0 {
		ttl = defaultGridCacheTTL
	}
	return &GridCache{lru: expirable.NewLRU[string, []DayGrid](size, nil, ttl)}
}

// Get returns a copy of the cached grids for a timetable.
func (c *GridCache) Get(timetableID string) ([]DayGrid, bool) {
	if c == nil {
		return nil, false
	}
	grids, ok := c.lru.Get(timetableID)
	if !ok {
		return nil, false
	}
	return cloneDayGrids(grids), true
}

// Generation returns the current invalidation generation.
func (c *GridCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Store caches a copy of grids for a timetable when no invalidation happened
// since generation was taken. It reports whether the grids were kept.
func (c *GridCache) Store(timetableID string, generation uint64, grids []DayGrid) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.lru.Add(timetableID, cloneDayGrids(grids))
	return true
}

// Invalidate drops the entry for a timetable.
func (c *GridCache) Invalidate(timetableID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.lru.Remove(timetableID)
}

// Purge drops every entry.
func (c *GridCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.lru.Purge()
}

// Len reports the number of live entries.
func (c *GridCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func cloneDayGrids(grids []DayGrid) []DayGrid {
	if len(grids) == 0 {
		return nil
	}
	out := make([]DayGrid, len(grids))
	for i, dg := range grids {
		out[i].Day = dg.Day
		for slot, p := range dg.Grid {
			if p == nil {
				continue
			}
			cloned := p.Clone()
			out[i].Grid[slot] = &cloned
		}
	}
	return out
}
