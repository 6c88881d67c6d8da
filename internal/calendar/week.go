package calendar

import (
	"slices"
	"strings"
	"time"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// ProjectHoursRow プロジェクト1行分の曜日別工数（月曜〜日曜）
type ProjectHoursRow struct {
	Project string     `json:"project"`
	Hours   [7]float64 `json:"hours"`
	Total   float64    `json:"total"`
}

// Timesheet 週次タイムシートの集計結果
type Timesheet struct {
	Window      Window            `json:"window"`
	WeekDates   [7]time.Time      `json:"weekDates"`
	Rows        []ProjectHoursRow `json:"rows"`
	DailyTotals [7]float64        `json:"dailyTotals"`
	GrandTotal  float64           `json:"grandTotal"`
}

// AggregateWeek refを含む週（月曜始まり）の予定をプロジェクト×曜日で集計する。
//
// 予定は開始時刻の暦日にまとめて計上し、日付をまたぐ予定も分割しない。
// 終了が開始より前の予定は負の工数として計上する。
func (c Calendar) AggregateWeek(ref time.Time, events []domain.Event) Timesheet {
	sheet := Timesheet{
		Window:    c.WeekWindow(ref),
		WeekDates: c.WeekDates(ref),
		Rows:      []ProjectHoursRow{},
	}

	byProject := make(map[string]*ProjectHoursRow)

	for _, event := range events {
		if !sheet.Window.Contains(event.Start) {
			continue
		}

		// 日付の一致で曜日を決める（夏時間で24時間でない日があるため差分計算は使わない）
		dayIndex := -1
		for i, d := range sheet.WeekDates {
			if c.SameDate(d, event.Start) {
				dayIndex = i
				break
			}
		}
		if dayIndex == -1 {
			continue
		}

		hours := event.Duration().Hours()
		project := domain.ProjectOrUnassigned(event.Project)

		row, ok := byProject[project]
		if !ok {
			row = &ProjectHoursRow{Project: project}
			byProject[project] = row
		}
		row.Hours[dayIndex] += hours

		sheet.DailyTotals[dayIndex] += hours
		sheet.GrandTotal += hours
	}

	for _, row := range byProject {
		for _, h := range row.Hours {
			row.Total += h
		}
		sheet.Rows = append(sheet.Rows, *row)
	}
	slices.SortFunc(sheet.Rows, func(a, b ProjectHoursRow) int {
		return strings.Compare(a.Project, b.Project)
	})

	return sheet
}

// DateRangeLabel "Jan 13 - Jan 19, 2025" 形式の週ラベル
func (t Timesheet) DateRangeLabel() string {
	start := t.WeekDates[0]
	end := t.WeekDates[6]
	return start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006")
}
