package main

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/app"
	"github.com/k-negishi/smart-timesheet/internal/domain"
	"github.com/k-negishi/smart-timesheet/internal/usecase"
)

// LambdaEvent Lambda実行時のイベント構造体
type LambdaEvent struct {
	// EventBridge Schedulerからの実行では空。再送時のみ対象日（YYYY-MM-DD）を指定する
	Date string `json:"date,omitempty"`
}

// LambdaResponse Lambda実行結果のレスポンス
type LambdaResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// handler Lambda関数のメインハンドラー
func handler(ctx context.Context, event LambdaEvent) (LambdaResponse, error) {
	a, err := app.New(ctx)
	if err != nil {
		return LambdaResponse{
			StatusCode: 500,
			Message:    "設定読み込みエラー",
		}, err
	}
	defer func() { _ = a.Logger.Sync() }()

	ref := time.Now().In(a.Cal.Location())
	if event.Date != "" {
		ref, err = a.Cal.ParseDate(event.Date)
		if err != nil {
			return LambdaResponse{
				StatusCode: 400,
				Message:    "対象日の形式が不正です",
			}, err
		}
	}

	uc := usecase.NewNotifyTimesheetUseCase(a.Sources, a.Notifier(), a.Cal, a.Logger)
	skipped, err := uc.Execute(ctx, ref)
	if err != nil {
		a.Logger.Error("週次レポートの送信に失敗しました", zap.Error(err))
	}
	return reportResponse(skipped, err), err
}

// reportResponse 週次レポートの結果をLambdaのレスポンスに変換
func reportResponse(skipped bool, err error) LambdaResponse {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return LambdaResponse{StatusCode: 503, Message: "設定エラー"}
	case errors.Is(err, usecase.ErrEventSource):
		return LambdaResponse{StatusCode: 500, Message: "予定取得エラー"}
	case err != nil:
		return LambdaResponse{StatusCode: 500, Message: "LINE通知送信エラー"}
	case skipped:
		return LambdaResponse{StatusCode: 200, Message: "予定なしのため通知スキップ"}
	default:
		return LambdaResponse{StatusCode: 200, Message: "通知送信完了"}
	}
}

func main() {
	lambda.Start(handler)
}
