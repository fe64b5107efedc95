package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/school-timetable/internal/persistence"
)

type selectionRepoStub struct {
	items     map[string]Selection
	upsertErr error
}

func (r *selectionRepoStub) GetSelection(ctx context.Context, userID string) (Selection, error) {
	selection, ok := r.items[userID]
	if !ok {
		return Selection{}, persistence.ErrNotFound
	}
	return selection, nil
}

func (r *selectionRepoStub) UpsertSelection(ctx context.Context, selection Selection) (Selection, error) {
	if r.upsertErr != nil {
		return Selection{}, r.upsertErr
	}
	if r.items == nil {
		r.items = make(map[string]Selection)
	}
	r.items[selection.UserID] = selection
	return selection, nil
}

func TestSelectionService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("remembers the last section per user", func(t *testing.T) {
		t.Parallel()
		svc := NewSelectionService(&selectionRepoStub{}, fixedNow)

		if _, err := svc.GetSelection(ctx, studentPrincipal); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound before any save, got %v", err)
		}

		saved, err := svc.SaveSelection(ctx, SaveSelectionParams{
			Principal: studentPrincipal,
			Input:     SelectionInput{ClassID: " class-7 ", SectionID: "B", AcademicYear: "2024-25"},
		})
		if err != nil {
			t.Fatalf("SaveSelection returned error: %v", err)
		}
		if saved.ClassID != "class-7" || saved.UserID != studentPrincipal.UserID || !saved.UpdatedAt.Equal(fixedNow()) {
			t.Fatalf("unexpected selection %#v", saved)
		}

		got, err := svc.GetSelection(ctx, studentPrincipal)
		if err != nil || got != saved {
			t.Fatalf("GetSelection = %#v, %v", got, err)
		}
		if _, err := svc.GetSelection(ctx, teacherPrincipal); !errors.Is(err, ErrNotFound) {
			t.Fatalf("selections must not leak between users, got %v", err)
		}
	})

	t.Run("rejects blank sections", func(t *testing.T) {
		t.Parallel()
		svc := NewSelectionService(&selectionRepoStub{}, fixedNow)

		_, err := svc.SaveSelection(ctx, SaveSelectionParams{Principal: studentPrincipal, Input: SelectionInput{ClassID: "class-7", SectionID: "  "}})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["sectionId"]; !ok {
			t.Fatalf("expected sectionId error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("requires an identity", func(t *testing.T) {
		t.Parallel()
		svc := NewSelectionService(&selectionRepoStub{}, fixedNow)

		if _, err := svc.GetSelection(ctx, Principal{}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		_, err := svc.SaveSelection(ctx, SaveSelectionParams{Input: SelectionInput{ClassID: "class-7", SectionID: "A"}})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("surfaces storage failures", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("disk full")
		svc := NewSelectionService(&selectionRepoStub{upsertErr: boom}, fixedNow)

		_, err := svc.SaveSelection(ctx, SaveSelectionParams{Principal: studentPrincipal, Input: SelectionInput{ClassID: "class-7", SectionID: "A"}})
		if !errors.Is(err, boom) {
			t.Fatalf("expected storage error, got %v", err)
		}
	})
}
