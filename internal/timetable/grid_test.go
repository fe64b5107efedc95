package timetable

import (
	"errors"
	"reflect"
	"testing"
)

func TestPlace_BreakScenarioRoundTrip(t *testing.T) {
	t.Parallel()

	periods, _, err := GenerateDay(breakScenario())
	if err != nil {
		t.Fatalf("GenerateDay returned error: %v", err)
	}

	// feed in reverse to show placement does not depend on input order
	reversed := make([]Period, len(periods))
	for i, p := range periods {
		reversed[len(periods)-1-i] = p
	}

	grid, err := Place(reversed)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	for slot := 0; slot < 4; slot++ {
		if grid[slot] == nil || grid[slot].IsBreak() || grid[slot].Number != slot+1 {
			t.Fatalf("slot %d: expected teaching period %d, got %+v", slot, slot+1, grid[slot])
		}
	}
	if grid[LunchSlot] == nil || !grid[LunchSlot].IsBreak() {
		t.Fatalf("expected break in lunch slot, got %+v", grid[LunchSlot])
	}
	if grid[5] == nil || grid[5].Number != 5 {
		t.Fatalf("expected period 5 in slot 5, got %+v", grid[5])
	}
	if grid[6] == nil || grid[6].Number != 6 {
		t.Fatalf("expected period 6 in slot 6, got %+v", grid[6])
	}
	if grid[7] != nil || grid[8] != nil {
		t.Fatalf("expected slots 7 and 8 empty, got %+v %+v", grid[7], grid[8])
	}
	if got := grid.AddTargets(); !reflect.DeepEqual(got, []int{7, 8}) {
		t.Fatalf("expected add targets [7 8], got %v", got)
	}
}

func TestPlace_NoBreakDay(t *testing.T) {
	t.Parallel()

	periods, _, err := GenerateDay(DayParams{PeriodCount: 4, Start: MustParseClock("08:00"), PeriodDuration: 45})
	if err != nil {
		t.Fatalf("GenerateDay returned error: %v", err)
	}
	grid, err := Place(periods)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	for slot := 0; slot < SlotCount; slot++ {
		filled := grid[slot] != nil
		if filled != (slot < 4) {
			t.Fatalf("slot %d: filled=%v", slot, filled)
		}
	}
	if got := grid.AddTargets(); !reflect.DeepEqual(got, []int{5, 6, 7, 8}) {
		t.Fatalf("lunch slot must never be an add target, got %v", got)
	}
}

func TestPlace_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	periods := []Period{{Kind: KindTeaching, Number: 1, Start: 480, End: 525, Teacher: &TeacherRef{Name: "B"}}}
	grid, err := Place(periods)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	grid[0].Teacher.Name = "changed"
	if periods[0].Teacher.Name != "B" {
		t.Fatal("grid shares teacher pointer with input")
	}
}

func TestPlace_Collision(t *testing.T) {
	t.Parallel()

	periods := []Period{
		{Kind: KindTeaching, Number: 2, Subject: "Physics", Start: 525, End: 570},
		{Kind: KindTeaching, Number: 2, Subject: "Chemistry", Start: 570, End: 615},
	}
	_, err := Place(periods)

	var collision *SlotCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected SlotCollisionError, got %v", err)
	}
	if collision.Slot != 1 {
		t.Fatalf("expected collision in slot 1, got %d", collision.Slot)
	}
	if collision.Existing.Subject != "Physics" || collision.Incoming.Subject != "Chemistry" {
		t.Fatalf("collision should identify both periods, got %+v", collision)
	}
}

func TestPlace_OutOfRange(t *testing.T) {
	t.Parallel()

	_, err := Place([]Period{{Kind: KindTeaching, Number: 9, Start: 480, End: 525}})
	var rangeErr *SlotRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected SlotRangeError, got %v", err)
	}
}

func TestNumberForSlot(t *testing.T) {
	t.Parallel()

	for n := 1; n <= MaxTeachingNumber; n++ {
		slot, err := SlotFor(Period{Kind: KindTeaching, Number: n})
		if err != nil {
			t.Fatalf("SlotFor(%d) returned error: %v", n, err)
		}
		back, ok := NumberForSlot(slot)
		if !ok || back != n {
			t.Fatalf("slot %d mapped back to %d (ok=%v), want %d", slot, back, ok, n)
		}
	}
	if _, ok := NumberForSlot(LunchSlot); ok {
		t.Fatal("lunch slot must not map to a teaching number")
	}
}

func BenchmarkGenerateAndPlace(b *testing.B) {
	params := breakScenario()
	for i := 0; i < b.N; i++ {
		periods, _, err := GenerateDay(params)
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
		if _, err := Place(periods); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
