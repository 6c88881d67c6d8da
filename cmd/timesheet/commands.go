package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/app"
	"github.com/k-negishi/smart-timesheet/internal/domain"
	"github.com/k-negishi/smart-timesheet/internal/gateway"
	"github.com/k-negishi/smart-timesheet/internal/render"
	"github.com/k-negishi/smart-timesheet/internal/server"
	"github.com/k-negishi/smart-timesheet/internal/usecase"
)

type rootOptions struct {
	date string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "timesheet",
		Short:         "カレンダーの予定からタイムシートを作成する",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.date, "date", "", "対象日（YYYY-MM-DD）。省略時は今日")

	root.AddCommand(
		newWeekCmd(opts),
		newDayCmd(opts),
		newMonthCmd(opts),
		newTasksCmd(),
		newPlaceCmd(opts),
		newScheduleCmd(opts),
		newReportCmd(opts),
		newServeCmd(),
	)
	return root
}

// loadApp コマンド共通の初期化
func loadApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.New(cmd.Context())
	if err != nil {
		return nil, err
	}
	cobra.OnFinalize(func() { _ = a.Logger.Sync() })
	return a, nil
}

// targetDate --date の値。省略時は今日
func targetDate(a *app.App, opts *rootOptions) (time.Time, error) {
	if opts.date == "" {
		return a.Cal.Midnight(time.Now()), nil
	}
	return a.Cal.ParseDate(opts.date)
}

func newWeekCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "週次タイムシートを表示",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ref, err := targetDate(a, opts)
			if err != nil {
				return err
			}

			window := a.Cal.WeekWindow(ref)
			events := collectEvents(cmd, a, window.Start, window.End)
			return render.Timesheet(cmd.OutOrStdout(), a.Cal.AggregateWeek(ref, events))
		},
	}
}

func newDayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "day",
		Short: "1日の予定を時間枠ごとに表示",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			day, err := targetDate(a, opts)
			if err != nil {
				return err
			}

			end := day.AddDate(0, 0, 1).Add(-time.Millisecond)
			events := collectEvents(cmd, a, day, end)
			layout := a.Config.DayLayout()
			return render.Day(cmd.OutOrStdout(), day, a.Cal.ProjectDay(day, events, layout), layout)
		},
	}
}

func newMonthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "月のカレンダーと日ごとの予定数を表示",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ref, err := targetDate(a, opts)
			if err != nil {
				return err
			}

			first := a.Cal.Date(ref.Year(), ref.Month(), 1)
			last := first.AddDate(0, 1, 0).Add(-time.Millisecond)
			events := collectEvents(cmd, a, first, last)
			return render.Month(cmd.OutOrStdout(), a.Cal.BuildMonth(ref, events))
		},
	}
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "バックログのタスクを表示",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return render.Tasks(cmd.OutOrStdout(), a.Catalog.Tasks())
		},
	}
}

func newPlaceCmd(opts *rootOptions) *cobra.Command {
	var (
		taskID string
		hour   int
	)

	cmd := &cobra.Command{
		Use:   "place",
		Short: "タスクを指定時刻に1時間の予定として配置し、EVENTS_FILEに保存",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if a.Config.EventsFile == "" {
				return fmt.Errorf("%w: EVENTS_FILEが設定されていません", domain.ErrConfiguration)
			}
			task, ok := a.Catalog.Find(taskID)
			if !ok {
				return fmt.Errorf("タスクが見つかりません: %s", taskID)
			}
			layout := a.Config.DayLayout()
			if hour < layout.FirstHour || hour >= layout.FirstHour+layout.HourCount {
				return fmt.Errorf("表示時間帯の外には配置できません: %d時", hour)
			}
			day, err := targetDate(a, opts)
			if err != nil {
				return err
			}

			event := usecase.PlaceTask(a.Cal, task, day, hour, uuid.NewString)
			if err := appendToEventsFile(a, event); err != nil {
				return err
			}
			return render.Events(cmd.OutOrStdout(), []domain.Event{event})
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "タスクID")
	cmd.Flags().IntVar(&hour, "hour", 9, "開始時刻（時）")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "AIでバックログのタスクを1日に割り当てる",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			target, err := targetDate(a, opts)
			if err != nil {
				return err
			}
			generator, err := a.ScheduleGenerator(cmd.Context())
			if err != nil {
				return err
			}
			if generator == nil {
				return fmt.Errorf("%w: GEMINI_API_KEYが設定されていません", domain.ErrConfiguration)
			}

			events, err := generator.Execute(cmd.Context(), a.Catalog.Tasks(), target)
			if err != nil {
				return err
			}
			if save {
				if a.Config.EventsFile == "" {
					return fmt.Errorf("%w: EVENTS_FILEが設定されていません", domain.ErrConfiguration)
				}
				if err := appendToEventsFile(a, events...); err != nil {
					return err
				}
			}
			return render.Events(cmd.OutOrStdout(), events)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "生成した予定をEVENTS_FILEに追記する")
	return cmd
}

// collectEvents 予定を集める。失敗した取得元は警告を表示し、取得できた予定だけで表示する
func collectEvents(cmd *cobra.Command, a *app.App, from, to time.Time) []domain.Event {
	events, err := usecase.CollectEvents(cmd.Context(), a.Logger, a.Sources, from, to)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "警告: 一部の予定を取得できませんでした: %v\n", err)
	}
	return events
}

// appendToEventsFile 既存の予定ファイルに追記する
func appendToEventsFile(a *app.App, events ...domain.Event) error {
	existing, err := gateway.LoadEvents(a.Config.EventsFile)
	if err != nil {
		return err
	}
	return gateway.SaveEvents(a.Config.EventsFile, append(existing, events...))
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "週次タイムシートをLINEに送信",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ref, err := targetDate(a, opts)
			if err != nil {
				return err
			}

			uc := usecase.NewNotifyTimesheetUseCase(a.Sources, a.Notifier(), a.Cal, a.Logger)
			skipped, err := uc.Execute(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "予定なしのため通知スキップ")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "通知送信完了")
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTP APIを起動",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			generator, err := a.ScheduleGenerator(ctx)
			if err != nil {
				return err
			}

			book := gateway.NewEventBook()
			metrics := server.NewMetrics("smart_timesheet")

			refresher := server.NewRefresher(a.Sources, book, a.Cal, metrics, a.Logger)
			if _, err := refresher.Refresh(ctx); err != nil {
				a.Logger.Warn("起動時の予定の取り込みに失敗しました", zap.Error(err))
			}
			scheduler, err := refresher.Schedule(a.Config.RefreshCron)
			if err != nil {
				return err
			}
			defer scheduler.Stop()

			srv := server.New(server.Deps{
				Calendar:  a.Cal,
				Layout:    a.Config.DayLayout(),
				Catalog:   a.Catalog,
				Events:    book,
				Generator: generator,
				Metrics:   metrics,
				Logger:    a.Logger,

				GenerateTimeout: a.Config.GenerateTimeout,
				AllowedOrigins:  a.Config.CORSOrigins,
			})

			httpServer := &http.Server{
				Addr:              a.Config.ListenAddr,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("HTTPサーバーを起動します", zap.String("addr", a.Config.ListenAddr))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("HTTPサーバーが停止しました: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.Logger.Info("HTTPサーバーを停止します")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}
