package calendar

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

func TestDefaultDayLayout_Hours(t *testing.T) {
	layout := DefaultDayLayout()

	hours := layout.Hours()
	require.Len(t, hours, 13)
	assert.Equal(t, 7, hours[0])
	assert.Equal(t, 19, hours[12])
}

func TestProjectDay(t *testing.T) {
	c := newTokyoCalendar(t)
	day := at(c, 2025, 1, 15, 0, 0)
	layout := DefaultDayLayout()

	tests := []struct {
		name       string
		event      domain.Event
		wantPlaced bool
		wantTop    float64
		wantHeight float64
	}{
		{
			name:       "通常の予定",
			event:      domain.Event{ID: "a", Start: at(c, 2025, 1, 15, 9, 0), End: at(c, 2025, 1, 15, 10, 30)},
			wantPlaced: true,
			wantTop:    160,
			wantHeight: 120,
		},
		{
			name:       "表示開始時刻ちょうど",
			event:      domain.Event{ID: "b", Start: at(c, 2025, 1, 15, 7, 0), End: at(c, 2025, 1, 15, 8, 0)},
			wantPlaced: true,
			wantTop:    0,
			wantHeight: 80,
		},
		{
			name:       "短い予定は最小高さ",
			event:      domain.Event{ID: "c", Start: at(c, 2025, 1, 15, 12, 0), End: at(c, 2025, 1, 15, 12, 15)},
			wantPlaced: true,
			wantTop:    400,
			wantHeight: 40,
		},
		{
			name:       "日付をまたぐ予定は最小高さ",
			event:      domain.Event{ID: "d", Start: at(c, 2025, 1, 15, 18, 0), End: at(c, 2025, 1, 16, 1, 0)},
			wantPlaced: true,
			wantTop:    880,
			wantHeight: 40,
		},
		{
			name:       "表示開始前の予定は除外",
			event:      domain.Event{ID: "e", Start: at(c, 2025, 1, 15, 6, 30), End: at(c, 2025, 1, 15, 8, 0)},
			wantPlaced: false,
		},
		{
			name:       "別の日の予定は除外",
			event:      domain.Event{ID: "f", Start: at(c, 2025, 1, 16, 9, 0), End: at(c, 2025, 1, 16, 10, 0)},
			wantPlaced: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placements := c.ProjectDay(day, []domain.Event{tt.event}, layout)

			if !tt.wantPlaced {
				assert.Empty(t, placements)
				return
			}
			require.Len(t, placements, 1)
			assert.Equal(t, tt.event, placements[0].Event)
			assert.InDelta(t, tt.wantTop, placements[0].Top, 1e-9)
			assert.InDelta(t, tt.wantHeight, placements[0].Height, 1e-9)
		})
	}
}

func TestProjectDay_MonotonicTopsAndMinimumHeight(t *testing.T) {
	c := newTokyoCalendar(t)
	day := at(c, 2025, 1, 15, 0, 0)

	events := []domain.Event{
		{ID: "3", Start: at(c, 2025, 1, 15, 16, 45), End: at(c, 2025, 1, 15, 16, 50)},
		{ID: "1", Start: at(c, 2025, 1, 15, 8, 5), End: at(c, 2025, 1, 15, 9, 0)},
		{ID: "4", Start: at(c, 2025, 1, 15, 19, 30), End: at(c, 2025, 1, 15, 20, 0)},
		{ID: "2", Start: at(c, 2025, 1, 15, 8, 5), End: at(c, 2025, 1, 15, 11, 0)},
	}

	placements := c.ProjectDay(day, events, DefaultDayLayout())
	require.Len(t, placements, 4)

	sort.SliceStable(placements, func(i, j int) bool {
		return placements[i].Event.Start.Before(placements[j].Event.Start)
	})
	for i, p := range placements {
		assert.GreaterOrEqual(t, p.Height, 40.0)
		if i > 0 {
			assert.GreaterOrEqual(t, p.Top, placements[i-1].Top)
		}
	}
}

func TestProjectDay_PreservesInputOrderAndIsPure(t *testing.T) {
	c := newTokyoCalendar(t)
	day := at(c, 2025, 1, 15, 0, 0)

	events := []domain.Event{
		{ID: "late", Start: at(c, 2025, 1, 15, 15, 0), End: at(c, 2025, 1, 15, 16, 0)},
		{ID: "early", Start: at(c, 2025, 1, 15, 9, 0), End: at(c, 2025, 1, 15, 10, 0)},
	}

	first := c.ProjectDay(day, events, DefaultDayLayout())
	second := c.ProjectDay(day, events, DefaultDayLayout())

	require.Len(t, first, 2)
	assert.Equal(t, "late", first[0].Event.ID)
	assert.Equal(t, "early", first[1].Event.ID)
	assert.Equal(t, first, second)
}

func TestProjectDay_CustomLayout(t *testing.T) {
	c := newTokyoCalendar(t)
	day := at(c, 2025, 1, 15, 0, 0)
	layout := DayLayout{FirstHour: 9, HourCount: 8, HourHeight: 60, MinEventHeight: 20}

	events := []domain.Event{
		{ID: "x", Start: at(c, 2025, 1, 15, 8, 0), End: at(c, 2025, 1, 15, 10, 0)},
		{ID: "y", Start: at(c, 2025, 1, 15, 10, 30), End: at(c, 2025, 1, 15, 11, 0)},
	}

	placements := c.ProjectDay(day, events, layout)

	require.Len(t, placements, 1)
	assert.Equal(t, "y", placements[0].Event.ID)
	assert.InDelta(t, 90, placements[0].Top, 1e-9)
	assert.InDelta(t, 30, placements[0].Height, 1e-9)
}
