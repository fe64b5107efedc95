package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/school-timetable/internal/application"
	"github.com/example/school-timetable/internal/timetable"
)

const (
	dayColumnWidth  = 11
	slotColumnWidth = 13
)

var (
	colorHeader  = color.New(color.Bold)
	colorBreak   = color.New(color.FgYellow, color.Bold)
	colorEmpty   = color.New(color.Faint)
	colorWarning = color.New(color.FgRed)
)

// renderWeek prints each day as two rows of the nine-column grid: labels,
// then times. The lunch column is highlighted.
func renderWeek(w io.Writer, result application.TemplateResult) {
	header := pad("Day", dayColumnWidth)
	for slot := 0; slot < timetable.SlotCount; slot++ {
		header += pad(slotHeading(slot), slotColumnWidth)
	}
	fmt.Fprintln(w, colorHeader.Sprint(strings.TrimRight(header, " ")))
	fmt.Fprintln(w, strings.Repeat("-", dayColumnWidth+timetable.SlotCount*slotColumnWidth))

	for _, g := range result.Grids {
		labels := pad(g.Day.String(), dayColumnWidth)
		times := pad("", dayColumnWidth)
		for slot, p := range g.Grid {
			label, span := cellLines(slot, p)
			labels += paint(p, pad(label, slotColumnWidth))
			times += paint(p, pad(span, slotColumnWidth))
		}
		fmt.Fprintln(w, strings.TrimRight(labels, " "))
		fmt.Fprintln(w, strings.TrimRight(times, " "))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, colorWarning.Sprintf("warning [%s] %s: %s", warning.Scope, warning.Code, warning.Message))
		}
	}
}

func slotHeading(slot int) string {
	if number, ok := timetable.NumberForSlot(slot); ok {
		return fmt.Sprintf("P%d", number)
	}
	return "Lunch"
}

func cellLines(slot int, p *timetable.Period) (string, string) {
	if p == nil {
		if slot == timetable.LunchSlot {
			return "-", ""
		}
		return ".", ""
	}
	label := p.Subject
	if label == "" {
		label = fmt.Sprintf("Period %d", p.Number)
	}
	return label, p.Start.String() + "-" + p.End.String()
}

func paint(p *timetable.Period, text string) string {
	switch {
	case p == nil:
		return colorEmpty.Sprint(text)
	case p.IsBreak():
		return colorBreak.Sprint(text)
	default:
		return text
	}
}

// pad truncates s to fit width with one trailing space.
func pad(s string, width int) string {
	if len(s) > width-1 {
		s = s[:width-1]
	}
	return s + strings.Repeat(" ", width-len(s))
}
