package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseView(t *testing.T) {
	for _, s := range []string{"month", "Day", " timesheet "} {
		_, err := ParseView(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseView("year")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "不明な表示モードです")
}

func TestNavigate(t *testing.T) {
	c := newTokyoCalendar(t)
	current := at(c, 2025, 1, 15, 10, 0)

	assert.Equal(t, at(c, 2025, 2, 15, 10, 0), c.Navigate(ViewMonth, current, 1))
	assert.Equal(t, at(c, 2024, 12, 15, 10, 0), c.Navigate(ViewMonth, current, -1))
	assert.Equal(t, at(c, 2025, 1, 22, 10, 0), c.Navigate(ViewTimesheet, current, 1))
	assert.Equal(t, at(c, 2025, 1, 8, 10, 0), c.Navigate(ViewTimesheet, current, -3))
	assert.Equal(t, at(c, 2025, 1, 16, 10, 0), c.Navigate(ViewDay, current, 1))
	assert.Equal(t, at(c, 2025, 1, 14, 10, 0), c.Navigate(ViewDay, current, -1))
}

func TestNavigate_MonthOverflowNormalizes(t *testing.T) {
	c := newTokyoCalendar(t)

	// 1/31 の翌月は 2/31 → 3/3 に正規化される
	assert.Equal(t, at(c, 2025, 3, 3, 0, 0), c.Navigate(ViewMonth, at(c, 2025, 1, 31, 0, 0), 1))
}
