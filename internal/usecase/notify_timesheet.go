package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
)

// ErrEventSource 予定の取得元のいずれかが失敗した
var ErrEventSource = errors.New("予定の取得に失敗しました")

// NotifyTimesheetUseCase 週次タイムシート通知ユースケース
type NotifyTimesheetUseCase struct {
	sources  []EventSource
	notifier Notifier
	cal      calendar.Calendar
	logger   *zap.Logger
}

// NewNotifyTimesheetUseCase ユースケースを生成
func NewNotifyTimesheetUseCase(sources []EventSource, notifier Notifier, cal calendar.Calendar, logger *zap.Logger) *NotifyTimesheetUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifyTimesheetUseCase{
		sources:  sources,
		notifier: notifier,
		cal:      cal,
		logger:   logger,
	}
}

// Execute refを含む週の予定を集計し、通知を送信する
func (uc *NotifyTimesheetUseCase) Execute(ctx context.Context, ref time.Time) (skipped bool, err error) {
	window := uc.cal.WeekWindow(ref)
	events, err := CollectEvents(ctx, uc.logger, uc.sources, window.Start, window.End)
	if err != nil {
		// 一部の予定が欠けたままの集計は送らない
		uc.logger.Error("予定の取得に失敗しました", zap.Error(err))
		return false, fmt.Errorf("%w: %w", ErrEventSource, err)
	}

	sheet := uc.cal.AggregateWeek(ref, events)

	// 集計対象の予定がない週はスキップ
	if len(sheet.Rows) == 0 {
		uc.logger.Info("予定がないため通知をスキップしました", zap.String("week", sheet.DateRangeLabel()))
		return true, nil
	}

	if err := uc.notifier.SendTimesheetReport(ctx, sheet); err != nil {
		uc.logger.Error("タイムシート通知の送信に失敗しました", zap.Error(err))
		return false, err
	}

	uc.logger.Info("タイムシートを通知しました",
		zap.String("week", sheet.DateRangeLabel()),
		zap.Float64("grandTotal", sheet.GrandTotal),
	)
	return false, nil
}
