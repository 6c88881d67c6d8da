package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
	"github.com/k-negishi/smart-timesheet/internal/usecase"
)

// ImportedStore 取り込んだ予定の置き換え先
type ImportedStore interface {
	SetImported(events []domain.Event)
}

// Refresher 外部カレンダーの予定を定期的に取り込み直す
type Refresher struct {
	sources []usecase.EventSource
	store   ImportedStore
	cal     calendar.Calendar
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRefresher Refresherを作成
func NewRefresher(sources []usecase.EventSource, store ImportedStore, cal calendar.Calendar, metrics *Metrics, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		sources: sources,
		store:   store,
		cal:     cal,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Window 取り込み対象の期間。前月1日から翌月末日まで
func (r *Refresher) Window() calendar.Window {
	now := r.now().In(r.cal.Location())
	start := r.cal.Date(now.Year(), now.Month()-1, 1)
	end := r.cal.Date(now.Year(), now.Month()+2, 1).Add(-time.Millisecond)
	return calendar.Window{Start: start, End: end}
}

// Refresh 全取得元から予定を集め、取り込み分を置き換える。
// 失敗した取得元が1つでもあれば前回の取り込み分をそのまま残す
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	window := r.Window()
	events, err := usecase.CollectEvents(ctx, r.logger, r.sources, window.Start, window.End)
	if err != nil {
		r.logger.Warn("予定の取り込みに失敗したため前回の取り込み分を維持します", zap.Error(err))
		return 0, err
	}
	r.store.SetImported(events)

	if r.metrics != nil {
		r.metrics.SetImported(len(events))
	}
	r.logger.Info("予定を取り込みました",
		zap.Int("events", len(events)),
		zap.Time("from", window.Start),
		zap.Time("to", window.End),
	)
	return len(events), nil
}

// Schedule cron式で定期実行を登録して開始する。呼び出し側がStopする
func (r *Refresher) Schedule(expr string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(r.cal.Location()))
	if _, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = r.Refresh(ctx)
	}); err != nil {
		return nil, fmt.Errorf("REFRESH_CRONが不正です: %w", err)
	}
	c.Start()
	return c, nil
}
