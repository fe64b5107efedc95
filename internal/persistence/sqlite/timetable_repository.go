package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/school-timetable/internal/persistence"
)

// TimetableRepository implements persistence.TimetableRepository using SQLite
type TimetableRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewTimetableRepository creates a new SQLite timetable repository
func NewTimetableRepository(pool *ConnectionPool) *TimetableRepository {
	return &TimetableRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

const timetableColumns = `id, class_id, section_id, academic_year, status, created_at, updated_at`

const periodColumns = `id, day, kind, period_number, subject, teacher_id, teacher_name, start_time, end_time, room`

// CreateTimetable inserts a timetable and all of its periods in one transaction
func (r *TimetableRepository) CreateTimetable(ctx context.Context, timetable persistence.Timetable) error {
	if err := validateTimetable(timetable); err != nil {
		return err
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			query := `
				INSERT INTO timetables (` + timetableColumns + `)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`
			if _, err := r.helper.ExecTx(ctx, tx, query,
				timetable.ID,
				timetable.ClassID,
				timetable.SectionID,
				timetable.AcademicYear,
				timetable.Status,
				formatTimestamp(timetable.CreatedAt),
				formatTimestamp(timetable.UpdatedAt),
			); err != nil {
				return err
			}
			return r.insertPeriodsTx(ctx, tx, timetable.ID, timetable.Periods)
		})
	})
}

// ReplaceTimetable overwrites the key, status, timestamps and every period of
// an existing timetable. CreatedAt is left untouched.
func (r *TimetableRepository) ReplaceTimetable(ctx context.Context, timetable persistence.Timetable) error {
	if err := validateTimetable(timetable); err != nil {
		return err
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			query := `
				UPDATE timetables
				SET class_id = ?, section_id = ?, academic_year = ?, status = ?, updated_at = ?
				WHERE id = ?
			`
			result, err := r.helper.ExecTx(ctx, tx, query,
				timetable.ClassID,
				timetable.SectionID,
				timetable.AcademicYear,
				timetable.Status,
				formatTimestamp(timetable.UpdatedAt),
				timetable.ID,
			)
			if err != nil {
				return err
			}
			if err := requireRow(result); err != nil {
				return err
			}

			if _, err := r.helper.ExecTx(ctx, tx, `DELETE FROM timetable_periods WHERE timetable_id = ?`, timetable.ID); err != nil {
				return err
			}
			return r.insertPeriodsTx(ctx, tx, timetable.ID, timetable.Periods)
		})
	})
}

// ReplaceDayPeriods swaps the periods of one day and bumps updated_at
func (r *TimetableRepository) ReplaceDayPeriods(ctx context.Context, timetableID string, day int, periods []persistence.Period, updatedAt time.Time) error {
	if timetableID == "" {
		return persistence.ErrNotFound
	}
	for _, period := range periods {
		if period.Day != day {
			return fmt.Errorf("%w: period %s belongs to day %d, not %d", persistence.ErrConstraintViolation, period.ID, period.Day, day)
		}
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			result, err := r.helper.ExecTx(ctx, tx,
				`UPDATE timetables SET updated_at = ? WHERE id = ?`,
				formatTimestamp(updatedAt), timetableID,
			)
			if err != nil {
				return err
			}
			if err := requireRow(result); err != nil {
				return err
			}

			if _, err := r.helper.ExecTx(ctx, tx,
				`DELETE FROM timetable_periods WHERE timetable_id = ? AND day = ?`,
				timetableID, day,
			); err != nil {
				return err
			}
			return r.insertPeriodsTx(ctx, tx, timetableID, periods)
		})
	})
}

// UpdateTimetableStatus sets the draft/published status
func (r *TimetableRepository) UpdateTimetableStatus(ctx context.Context, timetableID, status string, updatedAt time.Time) error {
	if timetableID == "" {
		return persistence.ErrNotFound
	}

	return r.retry.WithRetry(ctx, func() error {
		result, err := r.helper.Exec(ctx,
			`UPDATE timetables SET status = ?, updated_at = ? WHERE id = ?`,
			status, formatTimestamp(updatedAt), timetableID,
		)
		if err != nil {
			return err
		}
		return requireRow(result)
	})
}

// GetTimetable retrieves a timetable and its periods by ID
func (r *TimetableRepository) GetTimetable(ctx context.Context, id string) (persistence.Timetable, error) {
	if id == "" {
		return persistence.Timetable{}, persistence.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+timetableColumns+` FROM timetables WHERE id = ?`, id)
}

// FindTimetableByKey retrieves the timetable for one class section and academic year
func (r *TimetableRepository) FindTimetableByKey(ctx context.Context, classID, sectionID, academicYear string) (persistence.Timetable, error) {
	query := `
		SELECT ` + timetableColumns + `
		FROM timetables
		WHERE class_id = ? AND section_id = ? AND academic_year = ?
	`
	return r.getOne(ctx, query, classID, sectionID, academicYear)
}

func (r *TimetableRepository) getOne(ctx context.Context, query string, args ...any) (persistence.Timetable, error) {
	var timetable persistence.Timetable
	err := r.pool.WithReadOnlyTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		timetable, err = scanTimetable(r.helper.QueryRowTx(ctx, tx, query, args...))
		if err != nil {
			return err
		}

		periods, err := r.periodsTx(ctx, tx, []string{timetable.ID})
		if err != nil {
			return err
		}
		timetable.Periods = periods[timetable.ID]
		return nil
	})
	if err != nil {
		return persistence.Timetable{}, r.mapper.MapError(err)
	}
	return timetable, nil
}

// ListTimetables returns timetables matching filter ordered by academic year
// (newest first), class, section and ID
func (r *TimetableRepository) ListTimetables(ctx context.Context, filter persistence.TimetableFilter) ([]persistence.Timetable, error) {
	var (
		conditions []string
		args       []any
	)
	addCondition := func(column, value string) {
		if value != "" {
			conditions = append(conditions, column+" = ?")
			args = append(args, value)
		}
	}
	addCondition("class_id", filter.ClassID)
	addCondition("section_id", filter.SectionID)
	addCondition("academic_year", filter.AcademicYear)
	addCondition("status", filter.Status)

	query := `SELECT ` + timetableColumns + ` FROM timetables`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY academic_year DESC, class_id ASC, section_id ASC, id ASC`

	var timetables []persistence.Timetable
	err := r.pool.WithReadOnlyTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := r.helper.QueryTx(ctx, tx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids := make([]string, 0)
		for rows.Next() {
			timetable, err := scanTimetable(rows)
			if err != nil {
				return err
			}
			timetables = append(timetables, timetable)
			ids = append(ids, timetable.ID)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()
		if len(ids) == 0 {
			return nil
		}

		periods, err := r.periodsTx(ctx, tx, ids)
		if err != nil {
			return err
		}
		for i := range timetables {
			timetables[i].Periods = periods[timetables[i].ID]
		}
		return nil
	})
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	return timetables, nil
}

// DeleteTimetable removes a timetable and its periods
func (r *TimetableRepository) DeleteTimetable(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := r.helper.ExecTx(ctx, tx, `DELETE FROM timetable_periods WHERE timetable_id = ?`, id); err != nil {
				return err
			}
			result, err := r.helper.ExecTx(ctx, tx, `DELETE FROM timetables WHERE id = ?`, id)
			if err != nil {
				return err
			}
			return requireRow(result)
		})
	})
}

func (r *TimetableRepository) insertPeriodsTx(ctx context.Context, tx *sql.Tx, timetableID string, periods []persistence.Period) error {
	if len(periods) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timetable_periods (timetable_id, `+periodColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, period := range periods {
		if _, err := stmt.ExecContext(ctx,
			timetableID,
			period.ID,
			period.Day,
			period.Kind,
			period.Number,
			period.Subject,
			nullString(period.TeacherID),
			nullString(period.TeacherName),
			period.StartTime,
			period.EndTime,
			period.Room,
		); err != nil {
			return fmt.Errorf("insert period %s: %w", period.ID, err)
		}
	}
	return nil
}

// periodsTx loads the periods of every listed timetable keyed by timetable ID
func (r *TimetableRepository) periodsTx(ctx context.Context, tx *sql.Tx, timetableIDs []string) (map[string][]persistence.Period, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(timetableIDs)), ", ")
	args := make([]any, len(timetableIDs))
	for i, id := range timetableIDs {
		args[i] = id
	}

	query := `
		SELECT timetable_id, ` + periodColumns + `
		FROM timetable_periods
		WHERE timetable_id IN (` + placeholders + `)
		ORDER BY timetable_id ASC, day ASC, period_number ASC, kind DESC
	`
	rows, err := r.helper.QueryTx(ctx, tx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]persistence.Period, len(timetableIDs))
	for rows.Next() {
		var (
			timetableID string
			period      persistence.Period
			teacherID   sql.NullString
			teacherName sql.NullString
		)
		if err := rows.Scan(
			&timetableID,
			&period.ID,
			&period.Day,
			&period.Kind,
			&period.Number,
			&period.Subject,
			&teacherID,
			&teacherName,
			&period.StartTime,
			&period.EndTime,
			&period.Room,
		); err != nil {
			return nil, err
		}
		period.TeacherID = stringPtr(teacherID)
		period.TeacherName = stringPtr(teacherName)
		result[timetableID] = append(result[timetableID], period)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimetable(row rowScanner) (persistence.Timetable, error) {
	var (
		timetable                  persistence.Timetable
		createdAtStr, updatedAtStr string
	)
	if err := row.Scan(
		&timetable.ID,
		&timetable.ClassID,
		&timetable.SectionID,
		&timetable.AcademicYear,
		&timetable.Status,
		&createdAtStr,
		&updatedAtStr,
	); err != nil {
		return persistence.Timetable{}, err
	}

	var err error
	if timetable.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return persistence.Timetable{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if timetable.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return persistence.Timetable{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return timetable, nil
}

func validateTimetable(timetable persistence.Timetable) error {
	if timetable.ID == "" || timetable.ClassID == "" || timetable.SectionID == "" || timetable.AcademicYear == "" {
		return persistence.ErrConstraintViolation
	}
	for _, period := range timetable.Periods {
		if period.ID == "" {
			return fmt.Errorf("%w: period without id", persistence.ErrConstraintViolation)
		}
	}
	return nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
