package sqlite

import (
	"context"
	"fmt"

	"github.com/example/school-timetable/internal/persistence"
)

// SelectionRepository implements persistence.SelectionRepository using SQLite
type SelectionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSelectionRepository creates a new SQLite selection repository
func NewSelectionRepository(pool *ConnectionPool) *SelectionRepository {
	return &SelectionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// GetSelection returns the class section a user last opened
func (r *SelectionRepository) GetSelection(ctx context.Context, userID string) (persistence.Selection, error) {
	if userID == "" {
		return persistence.Selection{}, persistence.ErrNotFound
	}

	query := `
		SELECT user_id, class_id, section_id, academic_year, updated_at
		FROM user_selections
		WHERE user_id = ?
	`

	var selection persistence.Selection
	var updatedAtStr string
	err := r.helper.QueryRow(ctx, query, userID).Scan(
		&selection.UserID,
		&selection.ClassID,
		&selection.SectionID,
		&selection.AcademicYear,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Selection{}, r.mapper.MapError(err)
	}

	if selection.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.Selection{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return selection, nil
}

// UpsertSelection records the selection, replacing any earlier one for the user
func (r *SelectionRepository) UpsertSelection(ctx context.Context, selection persistence.Selection) error {
	if selection.UserID == "" || selection.ClassID == "" || selection.SectionID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO user_selections (user_id, class_id, section_id, academic_year, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			class_id = excluded.class_id,
			section_id = excluded.section_id,
			academic_year = excluded.academic_year,
			updated_at = excluded.updated_at
	`
	_, err := r.helper.Exec(ctx, query,
		selection.UserID,
		selection.ClassID,
		selection.SectionID,
		selection.AcademicYear,
		formatTimestamp(selection.UpdatedAt),
	)
	return r.mapper.MapError(err)
}
