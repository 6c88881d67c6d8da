package calendar

import (
	"fmt"
	"strings"
	"time"
)

// View 表示モード
type View string

const (
	ViewMonth     View = "month"
	ViewDay       View = "day"
	ViewTimesheet View = "timesheet"
)

// ParseView 文字列から表示モードを判定
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewMonth:
		return ViewMonth, nil
	case ViewDay:
		return ViewDay, nil
	case ViewTimesheet:
		return ViewTimesheet, nil
	default:
		return "", fmt.Errorf("不明な表示モードです: %q", s)
	}
}

// Navigate 表示モードに応じて前後へ移動する。
// 月表示は1か月、タイムシートは7日、日表示は1日単位。directionは正なら次、負なら前
func (c Calendar) Navigate(view View, current time.Time, direction int) time.Time {
	step := 1
	if direction < 0 {
		step = -1
	}
	current = current.In(c.Location())

	switch view {
	case ViewMonth:
		return current.AddDate(0, step, 0)
	case ViewTimesheet:
		return current.AddDate(0, 0, step*7)
	default:
		return current.AddDate(0, 0, step)
	}
}
