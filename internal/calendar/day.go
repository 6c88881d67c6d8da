package calendar

import (
	"time"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// DayLayout 日表示の時間軸設定
type DayLayout struct {
	FirstHour      int     `json:"firstHour"`
	HourCount      int     `json:"hourCount"`
	HourHeight     float64 `json:"hourHeight"`
	MinEventHeight float64 `json:"minEventHeight"`
}

// DefaultDayLayout 07:00から13時間、1時間80px、最小40px
func DefaultDayLayout() DayLayout {
	return DayLayout{
		FirstHour:      7,
		HourCount:      13,
		HourHeight:     80,
		MinEventHeight: 40,
	}
}

// Hours 表示する時間枠（タスクのドロップ先）
func (l DayLayout) Hours() []int {
	hours := make([]int, 0, l.HourCount)
	for i := 0; i < l.HourCount; i++ {
		hours = append(hours, l.FirstHour+i)
	}
	return hours
}

// Placement 日表示での予定の縦位置と高さ（px）
type Placement struct {
	Event  domain.Event `json:"event"`
	Top    float64      `json:"top"`
	Height float64      `json:"height"`
}

// ProjectDay dayと同じ暦日に開始する予定を時間軸上の座標に変換する。
//
// 表示開始時刻より前に始まる予定は切り詰めずに除外する。
// 長さは時・分だけで計算するため、日付をまたぐ予定は負の長さとなり最小高さになる。
func (c Calendar) ProjectDay(day time.Time, events []domain.Event, layout DayLayout) []Placement {
	perMinute := layout.HourHeight / 60
	placements := make([]Placement, 0)

	for _, event := range events {
		if !c.SameDate(event.Start, day) {
			continue
		}

		start := event.Start.In(c.Location())
		end := event.End.In(c.Location())
		if start.Hour() < layout.FirstHour {
			continue
		}

		startMinutes := start.Hour()*60 + start.Minute()
		endMinutes := end.Hour()*60 + end.Minute()
		offsetMinutes := (start.Hour()-layout.FirstHour)*60 + start.Minute()
		durationMinutes := endMinutes - startMinutes

		height := float64(durationMinutes) * perMinute
		if height < layout.MinEventHeight {
			height = layout.MinEventHeight
		}

		placements = append(placements, Placement{
			Event:  event,
			Top:    float64(offsetMinutes) * perMinute,
			Height: height,
		})
	}

	return placements
}
