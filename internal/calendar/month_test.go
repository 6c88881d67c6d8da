package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

func TestBuildMonth_SaturdayStartThirtyDays(t *testing.T) {
	c := newTokyoCalendar(t)

	// 2025年11月は土曜日始まりで30日
	grid := c.BuildMonth(at(c, 2025, 11, 18, 10, 0), nil)

	assert.Equal(t, 2025, grid.Year)
	assert.Equal(t, time.November, grid.Month)
	assert.Equal(t, 6, grid.LeadingBlanks)
	assert.Equal(t, 30, grid.DayCount)
	assert.Equal(t, 36, grid.CellCount())
	assert.Equal(t, 6, grid.Rows())
	require.Len(t, grid.Days, 30)
	assert.Equal(t, 1, grid.Days[0].Day)
	assert.Equal(t, 30, grid.Days[29].Day)
}

func TestBuildMonth_DayCounts(t *testing.T) {
	c := newTokyoCalendar(t)

	tests := []struct {
		name     string
		ref      time.Time
		dayCount int
		blanks   int
	}{
		{"うるう年の2月", at(c, 2024, 2, 10, 0, 0), 29, 4},
		{"平年の2月", at(c, 2025, 2, 10, 0, 0), 28, 6},
		{"31日の月", at(c, 2025, 1, 31, 23, 0), 31, 3},
		{"日曜日始まり", at(c, 2025, 6, 1, 0, 0), 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := c.BuildMonth(tt.ref, nil)
			assert.Equal(t, tt.dayCount, grid.DayCount)
			assert.Equal(t, tt.blanks, grid.LeadingBlanks)
		})
	}
}

func TestBuildMonth_BucketsByStartDate(t *testing.T) {
	c := newTokyoCalendar(t)

	events := []domain.Event{
		{ID: "1", Start: at(c, 2025, 1, 5, 9, 0), End: at(c, 2025, 1, 5, 10, 0)},
		{ID: "2", Start: at(c, 2025, 1, 5, 14, 0), End: at(c, 2025, 1, 5, 15, 0)},
		{ID: "3", Start: at(c, 2025, 1, 31, 23, 0), End: at(c, 2025, 2, 1, 1, 0)},
		// 別の年の同じ月日は含めない
		{ID: "4", Start: at(c, 2024, 1, 5, 9, 0), End: at(c, 2024, 1, 5, 10, 0)},
		{ID: "5", Start: at(c, 2025, 2, 1, 9, 0), End: at(c, 2025, 2, 1, 10, 0)},
	}

	grid := c.BuildMonth(at(c, 2025, 1, 15, 0, 0), events)

	require.Len(t, grid.Days, 31)
	require.Len(t, grid.Days[4].Events, 2)
	assert.Equal(t, "1", grid.Days[4].Events[0].ID)
	assert.Equal(t, "2", grid.Days[4].Events[1].ID)
	require.Len(t, grid.Days[30].Events, 1)
	assert.Equal(t, "3", grid.Days[30].Events[0].ID)

	total := 0
	for _, d := range grid.Days {
		total += len(d.Events)
	}
	assert.Equal(t, 3, total)
}

func TestBuildMonth_UsesCalendarLocation(t *testing.T) {
	c := newTokyoCalendar(t)

	// UTC 2025-01-31 20:00 は JST 2025-02-01 05:00
	utcEvent := domain.Event{ID: "utc", Start: time.Date(2025, 1, 31, 20, 0, 0, 0, time.UTC)}

	feb := c.BuildMonth(at(c, 2025, 2, 1, 0, 0), []domain.Event{utcEvent})
	require.Len(t, feb.Days[0].Events, 1)

	jan := c.BuildMonth(at(c, 2025, 1, 1, 0, 0), []domain.Event{utcEvent})
	assert.Empty(t, jan.Days[30].Events)
}
