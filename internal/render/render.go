// Package render は投影結果を端末向けの表に整形する。
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("25")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// hours 0時間は "-"、それ以外は小数1桁
func hours(h float64) string {
	if h == 0 {
		return "-"
	}
	return strconv.FormatFloat(h, 'f', 1, 64)
}

// Timesheet 週次タイムシートを表で出力
func Timesheet(w io.Writer, sheet calendar.Timesheet) error {
	headers := []string{"Project"}
	for _, d := range sheet.WeekDates {
		headers = append(headers, d.Format("Mon 1/2"))
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(sheet.Rows)+1)
	for _, r := range sheet.Rows {
		row := []string{r.Project}
		for _, h := range r.Hours {
			row = append(row, hours(h))
		}
		row = append(row, strconv.FormatFloat(r.Total, 'f', 1, 64))
		rows = append(rows, row)
	}

	footer := []string{"Daily Total"}
	for _, h := range sheet.DailyTotals {
		footer = append(footer, hours(h))
	}
	footer = append(footer, strconv.FormatFloat(sheet.GrandTotal, 'f', 1, 64))
	rows = append(rows, footer)
	lastRow := len(rows) - 1

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == lastRow:
				return totalStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Timesheet %s", sheet.DateRangeLabel())))
	b.WriteString(fmt.Sprintf("  Total: %.1f hrs\n", sheet.GrandTotal))
	if len(sheet.Rows) == 0 {
		b.WriteString(dimStyle.Render("No time logged for this week."))
		b.WriteString("\n")
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Day 日表示。時間枠ごとに開始する予定と縦位置を出力
func Day(w io.Writer, day time.Time, placements []calendar.Placement, layout calendar.DayLayout) error {
	byHour := make(map[int][]calendar.Placement)
	for _, p := range placements {
		h := p.Event.Start.In(day.Location()).Hour()
		byHour[h] = append(byHour[h], p)
	}

	rows := make([][]string, 0, layout.HourCount)
	for _, h := range layout.Hours() {
		slot := fmt.Sprintf("%02d:00", h)
		if len(byHour[h]) == 0 {
			rows = append(rows, []string{slot, "", "", ""})
			continue
		}
		for i, p := range byHour[h] {
			label := slot
			if i > 0 {
				label = ""
			}
			rows = append(rows, []string{
				label,
				fmt.Sprintf("%s-%s %s", p.Event.Start.Format("15:04"), p.Event.End.Format("15:04"), p.Event.Title),
				domain.ProjectOrUnassigned(p.Event.Project),
				fmt.Sprintf("top=%.0f h=%.0f", p.Top, p.Height),
			})
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Time", "Event", "Project", "Layout").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := io.WriteString(w, titleStyle.Render(day.Format("Monday, January 2, 2006"))+"\n"+t.String()+"\n")
	return err
}

// Month 月表示。日曜始まりの7列で、各日の予定件数を出力
func Month(w io.Writer, grid calendar.MonthGrid) error {
	cells := make([]string, grid.LeadingBlanks, grid.Rows()*7)
	for _, d := range grid.Days {
		cell := strconv.Itoa(d.Day)
		if n := len(d.Events); n > 0 {
			cell = fmt.Sprintf("%d (%d)", d.Day, n)
		}
		cells = append(cells, cell)
	}
	for len(cells)%7 != 0 {
		cells = append(cells, "")
	}

	rows := make([][]string, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		rows = append(rows, cells[i:i+7])
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	title := time.Date(grid.Year, grid.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	_, err := io.WriteString(w, titleStyle.Render(title)+"\n"+t.String()+"\n")
	return err
}

// Tasks バックログのタスク一覧
func Tasks(w io.Writer, tasks []domain.Task) error {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.Project, t.TaskType, t.Description})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Project", "Type", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := io.WriteString(w, t.String()+"\n")
	return err
}

// Events 予定の一覧
func Events(w io.Writer, events []domain.Event) error {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Start.Format("01/02 15:04"),
			e.End.Format("15:04"),
			e.Title,
			domain.ProjectOrUnassigned(e.Project),
			string(e.Type),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Start", "End", "Title", "Project", "Type").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := io.WriteString(w, t.String()+"\n")
	return err
}
