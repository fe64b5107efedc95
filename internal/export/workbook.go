// Package export renders stored timetables as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/timetable"
)

const (
	WeekSheet    = "Week"
	PeriodsSheet = "Periods"
)

var periodColumns = []any{"Day", "Period", "Subject", "Teacher", "Start", "End", "Room"}

// WorkbookWriter lays a timetable out as a Week sheet mirroring the nine-column
// grid and a flat Periods sheet.
type WorkbookWriter struct{}

func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

var _ application.WorkbookWriter = (*WorkbookWriter)(nil)

func (WorkbookWriter) WriteTimetable(w io.Writer, tt timetable.Timetable, grids []application.DayGrid) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", WeekSheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := writeWeek(f, tt, grids); err != nil {
		return err
	}
	if _, err := f.NewSheet(PeriodsSheet); err != nil {
		return fmt.Errorf("export: add sheet: %w", err)
	}
	if err := writePeriods(f, tt); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeWeek(f *excelize.File, tt timetable.Timetable, grids []application.DayGrid) error {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("export: cell style: %w", err)
	}
	lunchStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FCE4D6"}},
	})
	if err != nil {
		return fmt.Errorf("export: lunch style: %w", err)
	}

	if err := f.SetCellValue(WeekSheet, "A1", tt.Key.String()); err != nil {
		return err
	}
	row := []any{"Day"}
	for slot := 0; slot < timetable.SlotCount; slot++ {
		row = append(row, slotHeading(slot))
	}
	if err := f.SetSheetRow(WeekSheet, "A2", &row); err != nil {
		return fmt.Errorf("export: header row: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(timetable.SlotCount+1, 2)
	if err := f.SetCellStyle(WeekSheet, "A2", last, header); err != nil {
		return err
	}

	for i, g := range grids {
		r := i + 3
		values := []any{g.Day.String()}
		for _, p := range g.Grid {
			values = append(values, cellText(p))
		}
		start, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(WeekSheet, start, &values); err != nil {
			return fmt.Errorf("export: %s row: %w", g.Day, err)
		}
		end, _ := excelize.CoordinatesToCellName(timetable.SlotCount+1, r)
		if err := f.SetCellStyle(WeekSheet, start, end, cellStyle); err != nil {
			return err
		}
		lunch, _ := excelize.CoordinatesToCellName(timetable.LunchSlot+2, r)
		if err := f.SetCellStyle(WeekSheet, lunch, lunch, lunchStyle); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(timetable.SlotCount + 1)
	if err := f.SetColWidth(WeekSheet, "A", "A", 12); err != nil {
		return err
	}
	return f.SetColWidth(WeekSheet, "B", lastCol, 18)
}

func writePeriods(f *excelize.File, tt timetable.Timetable) error {
	if err := f.SetSheetRow(PeriodsSheet, "A1", &periodColumns); err != nil {
		return fmt.Errorf("export: periods header: %w", err)
	}
	r := 2
	for _, day := range tt.Days {
		for _, p := range day.Periods {
			values := []any{day.Day.String(), p.Position(), p.Subject, p.TeacherLabel(), p.Start.String(), p.End.String(), p.Room}
			cell, _ := excelize.CoordinatesToCellName(1, r)
			if err := f.SetSheetRow(PeriodsSheet, cell, &values); err != nil {
				return fmt.Errorf("export: period %s: %w", p.ID, err)
			}
			r++
		}
	}
	return nil
}

func slotHeading(slot int) string {
	if number, ok := timetable.NumberForSlot(slot); ok {
		return fmt.Sprintf("Period %d", number)
	}
	return "Lunch"
}

func cellText(p *timetable.Period) string {
	if p == nil {
		return ""
	}
	lines := []string{p.Subject}
	if label := p.TeacherLabel(); label != "" {
		lines = append(lines, label)
	}
	lines = append(lines, p.Start.String()+"-"+p.End.String())
	if p.Room != "" {
		lines = append(lines, "Room "+p.Room)
	}
	return strings.Join(lines, "\n")
}
