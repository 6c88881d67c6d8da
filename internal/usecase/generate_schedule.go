package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// ScheduledItem AIが返すJSON配列の1要素
type ScheduledItem struct {
	TaskID      string `json:"taskId"`
	Title       string `json:"title"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description,omitempty"`
}

// タイムゾーン指定のないISO 8601日時はカレンダーのタイムゾーンで解釈する
var localTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// GenerateScheduleUseCase バックログのタスクからAIで1日分の予定を生成するユースケース
type GenerateScheduleUseCase struct {
	model  ScheduleModel
	cal    calendar.Calendar
	logger *zap.Logger
	newID  func() string

	// 同時に生成を要求された場合は順番に処理する（容量1）
	slot chan struct{}
}

// GenerateOption GenerateScheduleUseCaseのオプション
type GenerateOption func(*GenerateScheduleUseCase)

// WithIDGenerator 予定IDの生成関数を差し替える
func WithIDGenerator(newID func() string) GenerateOption {
	return func(uc *GenerateScheduleUseCase) {
		uc.newID = newID
	}
}

// NewGenerateScheduleUseCase ユースケースを生成。modelがnilの場合、Executeは設定エラーを返す
func NewGenerateScheduleUseCase(model ScheduleModel, cal calendar.Calendar, logger *zap.Logger, opts ...GenerateOption) *GenerateScheduleUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &GenerateScheduleUseCase{
		model:  model,
		cal:    cal,
		logger: logger,
		newID:  uuid.NewString,
		slot:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// BuildSchedulePrompt タスク一覧と対象日からAIへの指示文を組み立てる
func BuildSchedulePrompt(cal calendar.Calendar, tasks []domain.Task, target time.Time) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- ID: %s, Project: %s, Type: %s, Desc: %s", t.ID, t.Project, t.TaskType, t.Description))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("I need to schedule the following project tasks for the workday starting on %s.\n", cal.FormatDate(target)))
	b.WriteString("Please assign them to realistic time slots between 08:00 and 18:00.\n")
	b.WriteString("Prioritize meetings and trainings for mid-day.\n")
	b.WriteString("Keep development blocks contiguous if possible.\n")
	b.WriteString("\n")
	b.WriteString("Tasks:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString("Return a JSON array of events.\n")
	return b.String()
}

// Execute AIにスケジュールを依頼し、応答をai-generatedの予定に変換する。
// 空の応答は空スライス、taskIdが一致しない要素はプロジェクト "AI Generated" として扱う
func (uc *GenerateScheduleUseCase) Execute(ctx context.Context, tasks []domain.Task, target time.Time) ([]domain.Event, error) {
	if uc.model == nil {
		return nil, fmt.Errorf("%w: AIモデルが設定されていません", domain.ErrConfiguration)
	}

	select {
	case uc.slot <- struct{}{}:
		defer func() { <-uc.slot }()
	case <-ctx.Done():
		return nil, fmt.Errorf("スケジュール生成の順番待ち中に中断されました: %w", ctx.Err())
	}

	prompt := BuildSchedulePrompt(uc.cal, tasks, target)

	text, err := uc.model.GenerateSchedule(ctx, prompt)
	if err != nil {
		uc.logger.Error("スケジュール生成に失敗しました", zap.Error(err))
		if errors.Is(err, domain.ErrConfiguration) || errors.Is(err, domain.ErrRemoteCall) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteCall, err)
	}

	if strings.TrimSpace(text) == "" {
		uc.logger.Info("AIの応答が空のため予定は生成されません")
		return []domain.Event{}, nil
	}

	var items []ScheduledItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("%w: 応答のJSON解析に失敗しました: %w", domain.ErrRemoteCall, err)
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		start, err := uc.parseTimestamp(item.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: 開始時刻の解析に失敗しました: %w", domain.ErrRemoteCall, err)
		}
		end, err := uc.parseTimestamp(item.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: 終了時刻の解析に失敗しました: %w", domain.ErrRemoteCall, err)
		}

		project := domain.AIGeneratedProject
		if task, ok := domain.FindTask(tasks, item.TaskID); ok {
			project = task.Project
		}

		events = append(events, domain.Event{
			ID:          uc.newID(),
			Title:       item.Title,
			Start:       start,
			End:         end,
			Project:     project,
			Type:        domain.EventTypeAIGenerated,
			Description: item.Description,
		})
	}

	uc.logger.Info("スケジュールを生成しました",
		zap.String("date", uc.cal.FormatDate(target)),
		zap.Int("tasks", len(tasks)),
		zap.Int("events", len(events)),
	)
	return events, nil
}

// parseTimestamp RFC3339、またはタイムゾーンなしの日時をカレンダーのタイムゾーンで解析
func (uc *GenerateScheduleUseCase) parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(uc.cal.Location()), nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, uc.cal.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("不正な日時形式です: %q", s)
}
