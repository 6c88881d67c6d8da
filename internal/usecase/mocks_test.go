package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// MockEventSource は EventSource のテスト用モック
type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) ListEvents(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

// MockNotifier は Notifier のテスト用モック
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendTimesheetReport(ctx context.Context, sheet calendar.Timesheet) error {
	args := m.Called(ctx, sheet)
	return args.Error(0)
}

// MockScheduleModel は ScheduleModel のテスト用モック
type MockScheduleModel struct {
	mock.Mock
}

func (m *MockScheduleModel) GenerateSchedule(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
