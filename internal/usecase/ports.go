package usecase

import (
	"context"
	"time"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// EventSource 外部カレンダーから予定を取得するポート
type EventSource interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]domain.Event, error)
}

// Notifier 週次タイムシートを送信するポート
type Notifier interface {
	SendTimesheetReport(ctx context.Context, sheet calendar.Timesheet) error
}

// ScheduleModel プロンプトからスケジュールJSONを生成するAIモデルのポート。
// 応答本文（JSON配列の文字列）をそのまま返す
type ScheduleModel interface {
	GenerateSchedule(ctx context.Context, prompt string) (string, error)
}
