package timetable

import (
	"errors"
	"testing"
)

func TestDecodePosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		position   float64
		wantKind   Kind
		wantNumber int
		wantErr    bool
	}{
		{position: 1, wantKind: KindTeaching, wantNumber: 1},
		{position: 7, wantKind: KindTeaching, wantNumber: 7},
		{position: 4.5, wantKind: KindBreak, wantNumber: 4},
		{position: 4.25, wantErr: true},
		{position: 0, wantErr: true},
		{position: -1, wantErr: true},
	}

	for _, tc := range tests {
		kind, number, err := DecodePosition(tc.position)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPosition) {
				t.Fatalf("DecodePosition(%v): expected ErrInvalidPosition, got %v", tc.position, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("DecodePosition(%v) returned error: %v", tc.position, err)
		}
		if kind != tc.wantKind || number != tc.wantNumber {
			t.Fatalf("DecodePosition(%v) = %s %d", tc.position, kind, number)
		}
		if got := (Period{Kind: kind, Number: number}).Position(); got != tc.position {
			t.Fatalf("Position round trip: got %v, want %v", got, tc.position)
		}
	}
}

func TestTeacherLabel(t *testing.T) {
	t.Parallel()

	if got := (Period{Kind: KindTeaching, Number: 1}).TeacherLabel(); got != NotAllotted {
		t.Fatalf("expected %q, got %q", NotAllotted, got)
	}
	p := Period{Kind: KindTeaching, Number: 1, Teacher: &TeacherRef{ID: "t-9", Name: "R. Okello"}}
	if got := p.TeacherLabel(); got != "R. Okello" {
		t.Fatalf("expected teacher name, got %q", got)
	}
}

func TestValidateDay(t *testing.T) {
	t.Parallel()

	valid, _, err := GenerateDay(breakScenario())
	if err != nil {
		t.Fatalf("GenerateDay returned error: %v", err)
	}
	if err := ValidateDay(valid); err != nil {
		t.Fatalf("generated day should be valid: %v", err)
	}

	tests := []struct {
		name    string
		periods []Period
	}{
		{
			name: "duplicate number",
			periods: []Period{
				{Kind: KindTeaching, Number: 1, Start: 480, End: 525},
				{Kind: KindTeaching, Number: 1, Start: 525, End: 570},
			},
		},
		{
			name: "two breaks",
			periods: []Period{
				{Kind: KindTeaching, Number: 1, Start: 480, End: 525},
				{Kind: KindBreak, Number: 1, Start: 525, End: 540},
				{Kind: KindTeaching, Number: 2, Start: 540, End: 585},
				{Kind: KindBreak, Number: 2, Start: 585, End: 600},
			},
		},
		{
			name:    "ends before it starts",
			periods: []Period{{Kind: KindTeaching, Number: 1, Start: 525, End: 480}},
		},
		{
			name:    "unknown kind",
			periods: []Period{{Kind: "assembly", Number: 1, Start: 480, End: 525}},
		},
		{
			name: "later number starts earlier",
			periods: []Period{
				{Kind: KindTeaching, Number: 1, Start: 660, End: 705},
				{Kind: KindTeaching, Number: 2, Start: 480, End: 525},
			},
		},
		{
			name: "break starts before the period it follows",
			periods: []Period{
				{Kind: KindTeaching, Number: 1, Start: 660, End: 705},
				{Kind: KindTeaching, Number: 2, Start: 705, End: 750},
				{Kind: KindBreak, Number: 2, Start: 420, End: 450},
			},
		},
		{
			name: "same start",
			periods: []Period{
				{Kind: KindTeaching, Number: 1, Start: 480, End: 525},
				{Kind: KindTeaching, Number: 2, Start: 480, End: 525},
			},
		},
		{
			name: "break after a missing period",
			periods: []Period{
				{Kind: KindTeaching, Number: 1, Start: 480, End: 525},
				{Kind: KindTeaching, Number: 2, Start: 525, End: 570},
				{Kind: KindTeaching, Number: 3, Start: 570, End: 615},
				{Kind: KindTeaching, Number: 4, Start: 615, End: 660},
				{Kind: KindBreak, Number: 9, Start: 660, End: 690},
			},
		},
		{
			name:    "break without teaching periods",
			periods: []Period{{Kind: KindBreak, Number: 1, Start: 660, End: 690}},
		},
	}

	overlapping, warnings, err := GenerateDay(DayParams{
		PeriodCount:    4,
		Start:          MustParseClock("08:00"),
		PeriodDuration: 45,
		BreakAfter:     2,
		BreakStart:     MustParseClock("09:00"),
		BreakDuration:  30,
	})
	if err != nil || len(warnings) == 0 {
		t.Fatalf("expected an overlap warning, got %v (%v)", warnings, err)
	}
	if err := ValidateDay(overlapping); err != nil {
		t.Fatalf("a break starting inside the previous period keeps the order of starts: %v", err)
	}

	trailing := []Period{
		{Kind: KindTeaching, Number: 1, Start: 480, End: 525},
		{Kind: KindTeaching, Number: 2, Start: 525, End: 570},
		{Kind: KindBreak, Number: 2, Start: 570, End: 600},
	}
	if err := ValidateDay(trailing); err != nil {
		t.Fatalf("break after the last period should be valid: %v", err)
	}

	for _, tc := range tests {
		if err := ValidateDay(tc.periods); !errors.Is(err, ErrInvalidDay) {
			t.Fatalf("%s: expected ErrInvalidDay, got %v", tc.name, err)
		}
	}
}

func TestNormalizeWeek(t *testing.T) {
	t.Parallel()

	days, _, err := GenerateWeek(TemplateParams{
		Weekday:  DayParams{PeriodCount: 2, Start: 480, PeriodDuration: 45},
		Saturday: DayParams{PeriodCount: 1, Start: 480, PeriodDuration: 45},
	})
	if err != nil {
		t.Fatalf("GenerateWeek returned error: %v", err)
	}

	shuffled := []DaySchedule{days[5], days[2], days[0], days[4], days[1], days[3]}
	normalized, err := NormalizeWeek(shuffled)
	if err != nil {
		t.Fatalf("NormalizeWeek returned error: %v", err)
	}
	for i, day := range normalized {
		if day.Day != SchoolDays[i] {
			t.Fatalf("expected %s at %d, got %s", SchoolDays[i], i, day.Day)
		}
	}

	if _, err := NormalizeWeek(days[:5]); !errors.Is(err, ErrIncompleteWeek) {
		t.Fatalf("expected ErrIncompleteWeek for five days, got %v", err)
	}
	dup := append([]DaySchedule{}, days[:5]...)
	dup = append(dup, days[0])
	if _, err := NormalizeWeek(dup); !errors.Is(err, ErrIncompleteWeek) {
		t.Fatalf("expected ErrIncompleteWeek for repeated day, got %v", err)
	}
}
