package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// CollectEvents 複数の取得元から予定を集める。
// 失敗した取得元があっても成功分の予定は返し、失敗はまとめてエラーとして返す
func CollectEvents(ctx context.Context, logger *zap.Logger, sources []EventSource, from, to time.Time) ([]domain.Event, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	events := make([]domain.Event, 0)
	var errs []error
	for i, source := range sources {
		got, err := source.ListEvents(ctx, from, to)
		if err != nil {
			logger.Warn("予定の取得に失敗しました", zap.Int("source", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("取得元%d: %w", i, err))
			continue
		}
		events = append(events, got...)
	}
	return events, errors.Join(errs...)
}
