package application

import (
	"context"
	"fmt"

	"github.com/example/school-timetable/internal/scheduler"
	"github.com/example/school-timetable/internal/timetable"
)

// TeacherConflicts lists periods of the timetable whose teacher is also booked
// at an overlapping time by another timetable of the same academic year.
// Drafts take part, so only staff may ask.
func (s *TimetableService) TeacherConflicts(ctx context.Context, principal Principal, id string) (warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("TimetableService is nil")
		return
	}

	logger := s.loggerWith(ctx, "TeacherConflicts",
		"principal_id", principal.UserID,
		"timetable_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to detect teacher conflicts", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "teacher conflicts detected", "count", len(warnings))
	}()

	if !principal.CanViewDrafts() {
		err = ErrUnauthorized
		return
	}

	var tt timetable.Timetable
	tt, err = s.loadVisible(ctx, principal, id)
	if err != nil {
		return
	}

	var others []timetable.Timetable
	others, err = s.timetables.ListTimetables(ctx, TimetableFilter{AcademicYear: tt.Key.AcademicYear})
	if err != nil {
		err = mapTimetableRepoError(err)
		return
	}

	var existing []scheduler.Booking
	for _, other := range others {
		if other.ID == tt.ID {
			continue
		}
		existing = append(existing, scheduler.Bookings(other)...)
	}

	warnings = toConflictWarnings(scheduler.DetectConflicts(existing, scheduler.Bookings(tt)))
	return
}

func toConflictWarnings(conflicts []scheduler.Conflict) []ConflictWarning {
	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{
			TeacherID:       conflict.TeacherID,
			TeacherName:     conflict.Booking.TeacherName,
			Day:             conflict.Booking.Day,
			PeriodID:        conflict.Booking.PeriodID,
			Start:           conflict.Booking.Start,
			End:             conflict.Booking.End,
			WithTimetableID: conflict.With.TimetableID,
			WithKey:         conflict.With.Key,
			WithPeriodID:    conflict.With.PeriodID,
			WithStart:       conflict.With.Start,
			WithEnd:         conflict.With.End,
		})
	}
	return warnings
}
