package timetable

import "fmt"

const (
	// SlotCount is the fixed width of the display grid.
	SlotCount = 9
	// MorningSlots is the number of teaching slots before the lunch column.
	MorningSlots = 4
	// LunchSlot is the column reserved for the day's break.
	LunchSlot = MorningSlots
	// MaxTeachingNumber is the highest teaching period the grid can show.
	MaxTeachingNumber = SlotCount - 1
)

// Grid is a day's periods laid out on the fixed display columns. Empty slots are nil.
type Grid [SlotCount]*Period

// SlotCollisionError reports two periods resolving to the same column.
type SlotCollisionError struct {
	Slot     int
	Existing Period
	Incoming Period
}

func (e *SlotCollisionError) Error() string {
	return fmt.Sprintf("timetable: slot %d collision between period %v (%s-%s) and period %v (%s-%s)",
		e.Slot,
		e.Existing.Position(), e.Existing.Start, e.Existing.End,
		e.Incoming.Position(), e.Incoming.Start, e.Incoming.End,
	)
}

// SlotRangeError reports a teaching period whose number has no column.
type SlotRangeError struct {
	Period Period
}

func (e *SlotRangeError) Error() string {
	return fmt.Sprintf("timetable: period %d has no grid slot (1-%d supported)", e.Period.Number, MaxTeachingNumber)
}

// SlotFor returns the column a period occupies: breaks take the lunch column,
// morning periods fill the first four columns, and later periods shift right
// past the lunch column.
func SlotFor(p Period) (int, error) {
	if p.IsBreak() {
		return LunchSlot, nil
	}
	n := p.Number
	switch {
	case n < 1 || n > MaxTeachingNumber:
		return 0, &SlotRangeError{Period: p}
	case n <= MorningSlots:
		return n - 1, nil
	default:
		return n, nil
	}
}

// NumberForSlot maps a teaching column back to its period number. The lunch
// column and out-of-range columns report false.
func NumberForSlot(slot int) (int, bool) {
	switch {
	case slot < 0 || slot >= SlotCount || slot == LunchSlot:
		return 0, false
	case slot < LunchSlot:
		return slot + 1, true
	default:
		return slot, true
	}
}

// Place lays out a day's periods, given in any order, onto the grid.
// Two periods landing on the same column produce a *SlotCollisionError.
func Place(periods []Period) (Grid, error) {
	var grid Grid

	sorted := ClonePeriods(periods)
	SortPeriods(sorted)

	for i := range sorted {
		p := &sorted[i]
		slot, err := SlotFor(*p)
		if err != nil {
			return Grid{}, err
		}
		if existing := grid[slot]; existing != nil {
			return Grid{}, &SlotCollisionError{Slot: slot, Existing: *existing, Incoming: *p}
		}
		grid[slot] = p
	}
	return grid, nil
}

// AddTargets lists empty columns that may receive a new period.
// The lunch column is never offered.
func (g Grid) AddTargets() []int {
	var targets []int
	for slot, p := range g {
		if p == nil && slot != LunchSlot {
			targets = append(targets, slot)
		}
	}
	return targets
}

// Filled returns the number of occupied columns.
func (g Grid) Filled() int {
	count := 0
	for _, p := range g {
		if p != nil {
			count++
		}
	}
	return count
}
