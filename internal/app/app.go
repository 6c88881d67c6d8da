// Package app は設定から各コンポーネントを組み立てる。
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/catalog"
	"github.com/k-negishi/smart-timesheet/internal/config"
	"github.com/k-negishi/smart-timesheet/internal/domain"
	"github.com/k-negishi/smart-timesheet/internal/gateway"
	"github.com/k-negishi/smart-timesheet/internal/logger"
	"github.com/k-negishi/smart-timesheet/internal/server"
	"github.com/k-negishi/smart-timesheet/internal/usecase"
)

// App 組み立て済みのコンポーネント
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Cal     calendar.Calendar
	Catalog *catalog.Catalog
	Sources []usecase.EventSource
}

// New 設定を読み込み、ロガー・暦・タスク一覧・予定の取得元を用意する
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("設定読み込みエラー: %w", err)
	}
	return FromConfig(ctx, cfg)
}

// FromConfig 読み込み済みの設定から組み立てる
func FromConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	tasks, err := catalog.Load(cfg.TasksFile)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		Cal:     cfg.Calendar(),
		Catalog: tasks,
	}
	a.Sources, err = a.buildSources(ctx)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// buildSources 設定されている取得元だけを並べる
func (a *App) buildSources(ctx context.Context) ([]usecase.EventSource, error) {
	sources := make([]usecase.EventSource, 0, 3)

	if a.Config.GoogleCredentials != "" {
		repo, err := gateway.NewGoogleCalendarRepository(ctx, []byte(a.Config.GoogleCredentials), a.Config.CalendarID, a.Cal.Location(), a.Logger)
		if err != nil {
			return nil, fmt.Errorf("Google Calendar初期化エラー: %w", err)
		}
		sources = append(sources, repo)
	}
	if len(a.Config.ICSURLs) > 0 {
		sources = append(sources, gateway.NewICSSource(a.Config.ICSURLs, a.Cal.Location(), a.Logger))
	}
	if a.Config.EventsFile != "" {
		sources = append(sources, gateway.NewFileSource(a.Config.EventsFile))
	}

	a.Logger.Info("予定の取得元を設定しました", zap.Int("sources", len(sources)))
	return sources, nil
}

// ScheduleGenerator Geminiを使うスケジュール生成。APIキー未設定ならnilを返す
func (a *App) ScheduleGenerator(ctx context.Context) (server.ScheduleGenerator, error) {
	model, err := gateway.NewGeminiScheduler(ctx, a.Config.GeminiAPIKey, a.Config.GeminiModel)
	if errors.Is(err, domain.ErrConfiguration) && a.Config.GeminiAPIKey == "" {
		a.Logger.Warn("GEMINI_API_KEYが未設定のためAIスケジューラは無効です")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return usecase.NewGenerateScheduleUseCase(model, a.Cal, a.Logger), nil
}

// Notifier LINEの週次レポート送信
func (a *App) Notifier() *gateway.LINENotifier {
	return gateway.NewLINENotifier(a.Config.LineChannelAccessToken, a.Config.LineUserID)
}
