package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/school-timetable/internal/persistence"
	"github.com/example/school-timetable/internal/validation"
)

// SelectionRepository stores the class section each user last opened.
type SelectionRepository interface {
	GetSelection(ctx context.Context, userID string) (Selection, error)
	UpsertSelection(ctx context.Context, selection Selection) (Selection, error)
}

// SelectionService remembers dashboard selections per user.
type SelectionService struct {
	selections SelectionRepository
	now        func() time.Time
	logger     *slog.Logger
	validator  *validation.Validator
}

// NewSelectionService constructs a selection service with the provided dependencies.
func NewSelectionService(selections SelectionRepository, now func() time.Time) *SelectionService {
	return NewSelectionServiceWithLogger(selections, now, nil, nil)
}

// NewSelectionServiceWithLogger constructs a selection service with a specified logger.
func NewSelectionServiceWithLogger(selections SelectionRepository, now func() time.Time, logger *slog.Logger, v *validation.Validator) *SelectionService {
	if now == nil {
		now = time.Now
	}
	if v == nil {
		v = validation.New()
	}
	return &SelectionService{selections: selections, now: now, logger: defaultLogger(logger), validator: v}
}

func (s *SelectionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SelectionService", operation, attrs...)
}

// GetSelection returns the principal's last selection. A user who never chose
// a section receives ErrNotFound.
func (s *SelectionService) GetSelection(ctx context.Context, principal Principal) (selection Selection, err error) {
	if s == nil {
		err = fmt.Errorf("SelectionService is nil")
		return
	}
	if !principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	if s.selections == nil {
		err = ErrNotFound
		return
	}

	selection, err = s.selections.GetSelection(ctx, principal.UserID)
	if err != nil {
		err = mapSelectionRepoError(err)
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "GetSelection", "principal_id", principal.UserID).
				ErrorContext(ctx, "failed to get selection", "error", err, "error_kind", ErrorKind(err))
		}
	}
	return
}

// SaveSelection stores the section the principal just opened.
func (s *SelectionService) SaveSelection(ctx context.Context, params SaveSelectionParams) (selection Selection, err error) {
	if s == nil {
		err = fmt.Errorf("SelectionService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SaveSelection",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save selection", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "selection saved")
	}()

	if !params.Principal.Authenticated() {
		err = ErrUnauthorized
		return
	}

	var fieldErrs map[string]string
	fieldErrs, err = s.validator.Struct(params.Input)
	if err != nil {
		return
	}
	if len(fieldErrs) > 0 {
		vErr := &ValidationError{}
		vErr.addAll(fieldErrs)
		err = vErr
		return
	}

	selection = Selection{
		UserID:       params.Principal.UserID,
		ClassID:      strings.TrimSpace(params.Input.ClassID),
		SectionID:    strings.TrimSpace(params.Input.SectionID),
		AcademicYear: strings.TrimSpace(params.Input.AcademicYear),
		UpdatedAt:    s.now(),
	}
	if s.selections == nil {
		return
	}

	selection, err = s.selections.UpsertSelection(ctx, selection)
	if err != nil {
		err = mapSelectionRepoError(err)
	}
	return
}

func mapSelectionRepoError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
