package calendar

import (
	"time"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// DayBucket 月表示の1日分
type DayBucket struct {
	Day    int            `json:"day"`
	Date   time.Time      `json:"date"`
	Events []domain.Event `json:"events"`
}

// MonthGrid 月表示のグリッド
type MonthGrid struct {
	Year          int         `json:"year"`
	Month         time.Month  `json:"month"`
	LeadingBlanks int         `json:"leadingBlanks"`
	DayCount      int         `json:"dayCount"`
	Days          []DayBucket `json:"days"`
}

// CellCount 先頭の空白セルを含むセル数
func (g MonthGrid) CellCount() int {
	return g.LeadingBlanks + g.DayCount
}

// Rows 7列グリッドに必要な行数
func (g MonthGrid) Rows() int {
	return (g.CellCount() + 6) / 7
}

// BuildMonth refを含む月のグリッドを作成し、予定を開始日ごとに振り分ける
func (c Calendar) BuildMonth(ref time.Time, events []domain.Event) MonthGrid {
	ref = ref.In(c.Location())
	year, month := ref.Year(), ref.Month()

	// 翌月0日 = 当月末日
	dayCount := c.Date(year, month+1, 0).Day()
	first := c.Date(year, month, 1)

	grid := MonthGrid{
		Year:          year,
		Month:         month,
		LeadingBlanks: int(first.Weekday()),
		DayCount:      dayCount,
		Days:          make([]DayBucket, 0, dayCount),
	}

	for day := 1; day <= dayCount; day++ {
		date := c.Date(year, month, day)
		bucket := DayBucket{Day: day, Date: date, Events: []domain.Event{}}
		for _, event := range events {
			if c.SameDate(event.Start, date) {
				bucket.Events = append(bucket.Events, event)
			}
		}
		grid.Days = append(grid.Days, bucket)
	}

	return grid
}
