package http

import (
	"time"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/timetable"
)

type teacherDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type periodDTO struct {
	ID           string      `json:"id"`
	PeriodNumber float64     `json:"periodNumber"`
	Subject      string      `json:"subject"`
	Teacher      *teacherDTO `json:"teacher"`
	TeacherLabel string      `json:"teacherLabel"`
	StartTime    string      `json:"startTime"`
	EndTime      string      `json:"endTime"`
	IsBreak      bool        `json:"isBreak"`
	Room         string      `json:"room"`
}

func toPeriodDTO(p timetable.Period) periodDTO {
	dto := periodDTO{
		ID:           p.ID,
		PeriodNumber: p.Position(),
		Subject:      p.Subject,
		TeacherLabel: p.TeacherLabel(),
		StartTime:    p.Start.String(),
		EndTime:      p.End.String(),
		IsBreak:      p.IsBreak(),
		Room:         p.Room,
	}
	if p.Teacher != nil {
		dto.Teacher = &teacherDTO{ID: p.Teacher.ID, Name: p.Teacher.Name}
	}
	return dto
}

type dayDTO struct {
	Day     string      `json:"day"`
	Periods []periodDTO `json:"periods"`
}

func toDayDTOs(days []timetable.DaySchedule) []dayDTO {
	out := make([]dayDTO, 0, len(days))
	for _, day := range days {
		periods := make([]periodDTO, 0, len(day.Periods))
		for _, p := range day.Periods {
			periods = append(periods, toPeriodDTO(p))
		}
		out = append(out, dayDTO{Day: day.Day.String(), Periods: periods})
	}
	return out
}

// Cell kinds of the display grid.
const (
	cellPeriod = "period"
	cellEmpty  = "empty"
	cellLunch  = "lunch"
)

type cellDTO struct {
	Slot    int        `json:"slot"`
	Kind    string     `json:"kind"`
	Period  *periodDTO `json:"period,omitempty"`
	Addable bool       `json:"addable"`
}

type gridDTO struct {
	Day   string    `json:"day"`
	Slots []cellDTO `json:"slots"`
}

func toGridDTOs(grids []application.DayGrid) []gridDTO {
	out := make([]gridDTO, 0, len(grids))
	for _, g := range grids {
		addable := make(map[int]bool)
		for _, slot := range g.Grid.AddTargets() {
			addable[slot] = true
		}
		cells := make([]cellDTO, 0, timetable.SlotCount)
		for slot, p := range g.Grid {
			cell := cellDTO{Slot: slot, Kind: cellEmpty, Addable: addable[slot]}
			if slot == timetable.LunchSlot {
				cell.Kind = cellLunch
			}
			if p != nil {
				dto := toPeriodDTO(*p)
				cell.Period = &dto
				if !p.IsBreak() {
					cell.Kind = cellPeriod
				}
			}
			cells = append(cells, cell)
		}
		out = append(out, gridDTO{Day: g.Day.String(), Slots: cells})
	}
	return out
}

type warningDTO struct {
	Scope   string `json:"scope"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toWarningDTOs(warnings []timetable.Warning) []warningDTO {
	out := make([]warningDTO, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, warningDTO{Scope: string(w.Scope), Code: string(w.Code), Message: w.Message})
	}
	return out
}

type templateResponse struct {
	Days     []dayDTO     `json:"days"`
	Grids    []gridDTO    `json:"grids"`
	Warnings []warningDTO `json:"warnings"`
}

type timetableDTO struct {
	ID           string   `json:"id"`
	ClassID      string   `json:"classId"`
	SectionID    string   `json:"sectionId"`
	AcademicYear string   `json:"academicYear"`
	Status       string   `json:"status"`
	Days         []dayDTO `json:"days"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

func toTimetableDTO(tt timetable.Timetable) timetableDTO {
	return timetableDTO{
		ID:           tt.ID,
		ClassID:      tt.Key.ClassID,
		SectionID:    tt.Key.SectionID,
		AcademicYear: tt.Key.AcademicYear,
		Status:       string(tt.Status),
		Days:         toDayDTOs(tt.Days),
		CreatedAt:    tt.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    tt.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type timetableResponse struct {
	Timetable timetableDTO `json:"timetable"`
	Replaced  *bool        `json:"replaced,omitempty"`
}

type timetableSummaryDTO struct {
	ID           string `json:"id"`
	ClassID      string `json:"classId"`
	SectionID    string `json:"sectionId"`
	AcademicYear string `json:"academicYear"`
	Status       string `json:"status"`
	UpdatedAt    string `json:"updatedAt"`
}

type listTimetablesResponse struct {
	Timetables []timetableSummaryDTO `json:"timetables"`
}

func toTimetableSummaries(timetables []timetable.Timetable) []timetableSummaryDTO {
	out := make([]timetableSummaryDTO, 0, len(timetables))
	for _, tt := range timetables {
		out = append(out, timetableSummaryDTO{
			ID:           tt.ID,
			ClassID:      tt.Key.ClassID,
			SectionID:    tt.Key.SectionID,
			AcademicYear: tt.Key.AcademicYear,
			Status:       string(tt.Status),
			UpdatedAt:    tt.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

type weekGridResponse struct {
	TimetableID string    `json:"timetableId"`
	Grids       []gridDTO `json:"grids"`
}

type conflictPeerDTO struct {
	TimetableID string `json:"timetableId"`
	ClassID     string `json:"classId"`
	SectionID   string `json:"sectionId"`
	PeriodID    string `json:"periodId"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

type conflictDTO struct {
	TeacherID   string          `json:"teacherId"`
	TeacherName string          `json:"teacherName"`
	Day         string          `json:"day"`
	PeriodID    string          `json:"periodId"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	With        conflictPeerDTO `json:"with"`
}

type conflictsResponse struct {
	TimetableID string        `json:"timetableId"`
	Conflicts   []conflictDTO `json:"conflicts"`
}

func toConflictDTOs(warnings []application.ConflictWarning) []conflictDTO {
	out := make([]conflictDTO, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, conflictDTO{
			TeacherID:   w.TeacherID,
			TeacherName: w.TeacherName,
			Day:         w.Day.String(),
			PeriodID:    w.PeriodID,
			StartTime:   w.Start.String(),
			EndTime:     w.End.String(),
			With: conflictPeerDTO{
				TimetableID: w.WithTimetableID,
				ClassID:     w.WithKey.ClassID,
				SectionID:   w.WithKey.SectionID,
				PeriodID:    w.WithPeriodID,
				StartTime:   w.WithStart.String(),
				EndTime:     w.WithEnd.String(),
			},
		})
	}
	return out
}

type selectionDTO struct {
	ClassID      string `json:"classId"`
	SectionID    string `json:"sectionId"`
	AcademicYear string `json:"academicYear"`
	UpdatedAt    string `json:"updatedAt"`
}

func toSelectionDTO(selection application.Selection) selectionDTO {
	return selectionDTO{
		ClassID:      selection.ClassID,
		SectionID:    selection.SectionID,
		AcademicYear: selection.AcademicYear,
		UpdatedAt:    selection.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
