package usecase

import (
	"time"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// PlaceTask タスクを指定日の hour:00 から1時間の手動予定として配置する
func PlaceTask(cal calendar.Calendar, task domain.Task, day time.Time, hour int, newID func() string) domain.Event {
	d := day.In(cal.Location())
	start := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, cal.Location())

	return domain.Event{
		ID:          newID(),
		Title:       task.Description,
		Start:       start,
		End:         start.Add(time.Hour),
		Project:     task.Project,
		Type:        domain.EventTypeManual,
		Description: task.TaskType,
	}
}
