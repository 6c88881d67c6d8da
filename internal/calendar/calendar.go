// Package calendar はタイムシート・日表示・月表示の投影計算を提供する。
// 日付の境界はすべて Calendar が保持するタイムゾーンで判定し、ホストのローカル時刻には依存しない。
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Calendar 表示用タイムゾーンを固定した暦計算
type Calendar struct {
	loc *time.Location
}

// New 指定タイムゾーンのCalendarを作成。nilの場合はUTC
func New(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Location 暦計算に使うタイムゾーン
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Date 指定日の00:00
func (c Calendar) Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, c.Location())
}

// Midnight tと同じ暦日の00:00
func (c Calendar) Midnight(t time.Time) time.Time {
	t = t.In(c.Location())
	return c.Date(t.Year(), t.Month(), t.Day())
}

// SameDate 2つの時刻が同じ暦日かどうか
func (c Calendar) SameDate(a, b time.Time) bool {
	a = a.In(c.Location())
	b = b.In(c.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ParseDate "2006-01-02" 形式の日付を暦日の00:00として解析
func (c Calendar) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("日付の解析に失敗しました: %w", err)
	}
	return t, nil
}

// FormatDate "2006-01-02" 形式に整形
func (c Calendar) FormatDate(t time.Time) string {
	return t.In(c.Location()).Format("2006-01-02")
}

// Window 週の範囲。StartとEndはどちらも含む
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains tが範囲内（両端含む）かどうか
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WeekStart refを含む週の月曜日00:00。日曜日は前の月曜日（-6日）に属する
func (c Calendar) WeekStart(ref time.Time) time.Time {
	ref = ref.In(c.Location())
	weekday := int(ref.Weekday())
	offset := 1 - weekday
	if weekday == 0 {
		offset = -6
	}
	return c.Date(ref.Year(), ref.Month(), ref.Day()+offset)
}

// WeekWindow 月曜日00:00から日曜日23:59:59.999までの範囲
func (c Calendar) WeekWindow(ref time.Time) Window {
	start := c.WeekStart(ref)
	sunday := start.AddDate(0, 0, 6)
	end := time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, int(999*time.Millisecond), c.Location())
	return Window{Start: start, End: end}
}

// WeekDates 月曜日から日曜日までの7日分の日付
func (c Calendar) WeekDates(ref time.Time) [7]time.Time {
	var dates [7]time.Time
	start := c.WeekStart(ref)
	for i := range dates {
		dates[i] = c.Date(start.Year(), start.Month(), start.Day()+i)
	}
	return dates
}
