package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
)

func testCalendar(t *testing.T) calendar.Calendar {
	t.Helper()
	jst, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return calendar.New(jst)
}

func TestTimesheet(t *testing.T) {
	cal := testCalendar(t)
	events := []domain.Event{
		{Project: "Alpha", Start: time.Date(2025, 1, 13, 9, 0, 0, 0, cal.Location()), End: time.Date(2025, 1, 13, 10, 30, 0, 0, cal.Location())},
		{Project: "Alpha", Start: time.Date(2025, 1, 16, 14, 0, 0, 0, cal.Location()), End: time.Date(2025, 1, 16, 15, 0, 0, 0, cal.Location())},
	}
	sheet := cal.AggregateWeek(time.Date(2025, 1, 15, 0, 0, 0, 0, cal.Location()), events)

	var buf bytes.Buffer
	require.NoError(t, Timesheet(&buf, sheet))

	out := buf.String()
	assert.Contains(t, out, "Timesheet Jan 13 - Jan 19, 2025")
	assert.Contains(t, out, "Total: 2.5 hrs")
	assert.Contains(t, out, "Mon 1/13")
	assert.Contains(t, out, "Sun 1/19")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "Daily Total")
	assert.NotContains(t, out, "No time logged")
}

func TestTimesheet_Empty(t *testing.T) {
	cal := testCalendar(t)
	sheet := cal.AggregateWeek(time.Date(2025, 1, 15, 0, 0, 0, 0, cal.Location()), nil)

	var buf bytes.Buffer
	require.NoError(t, Timesheet(&buf, sheet))
	assert.Contains(t, buf.String(), "No time logged for this week.")
}

func TestDay(t *testing.T) {
	cal := testCalendar(t)
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, cal.Location())
	events := []domain.Event{
		{Title: "Team Call", Project: "Klinera", Start: time.Date(2025, 1, 15, 9, 0, 0, 0, cal.Location()), End: time.Date(2025, 1, 15, 10, 30, 0, 0, cal.Location())},
	}
	layout := calendar.DefaultDayLayout()

	var buf bytes.Buffer
	require.NoError(t, Day(&buf, day, cal.ProjectDay(day, events, layout), layout))

	out := buf.String()
	assert.Contains(t, out, "Wednesday, January 15, 2025")
	assert.Contains(t, out, "07:00")
	assert.Contains(t, out, "19:00")
	assert.Contains(t, out, "09:00-10:30 Team Call")
	assert.Contains(t, out, "top=160 h=120")
}

func TestMonth(t *testing.T) {
	cal := testCalendar(t)
	events := []domain.Event{
		{Start: time.Date(2025, 11, 18, 9, 0, 0, 0, cal.Location())},
		{Start: time.Date(2025, 11, 18, 13, 0, 0, 0, cal.Location())},
	}
	grid := cal.BuildMonth(time.Date(2025, 11, 1, 0, 0, 0, 0, cal.Location()), events)

	var buf bytes.Buffer
	require.NoError(t, Month(&buf, grid))

	out := buf.String()
	assert.Contains(t, out, "November 2025")
	assert.Contains(t, out, "Sun")
	assert.Contains(t, out, "18 (2)")
	assert.Contains(t, out, "30")
}

func TestTasksAndEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tasks(&buf, []domain.Task{{ID: "11", Project: "Klinera", TaskType: "Meetings", Description: "Team Call"}}))
	assert.Contains(t, buf.String(), "Klinera")
	assert.Contains(t, buf.String(), "Team Call")

	buf.Reset()
	require.NoError(t, Events(&buf, []domain.Event{{Title: "Lunch", Type: domain.EventTypeAIGenerated,
		Start: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)}}))
	assert.Contains(t, buf.String(), "Lunch")
	assert.Contains(t, buf.String(), domain.UnassignedProject)
	assert.Contains(t, buf.String(), "ai-generated")
}

func TestHours(t *testing.T) {
	assert.Equal(t, "-", hours(0))
	assert.Equal(t, "1.5", hours(1.5))
	assert.Equal(t, "-1.0", hours(-1))
}
