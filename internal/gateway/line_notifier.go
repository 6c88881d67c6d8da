package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/k-negishi/smart-timesheet/internal/calendar"
	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// LINENotifier LINE Messaging APIを使用したNotifierの実装
type LINENotifier struct {
	channelAccessToken string
	userID             string
	httpClient         *http.Client
	endpoint           string
}

// lineMessage LINE APIに送信するメッセージ構造体
type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// linePushRequest LINE Push APIのリクエスト構造体
type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

// lineErrorResponse LINE APIのエラーレスポンス構造体
type lineErrorResponse struct {
	Message string `json:"message"`
	Details []struct {
		Message  string `json:"message"`
		Property string `json:"property"`
	} `json:"details"`
}

// NewLINENotifier LINE通知クライアントを作成
func NewLINENotifier(channelAccessToken, userID string) *LINENotifier {
	return &LINENotifier{
		channelAccessToken: channelAccessToken,
		userID:             userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint: "https://api.line.me/v2/bot/message/push",
	}
}

// SendTimesheetReport 週次タイムシートをLINEで通知
func (n *LINENotifier) SendTimesheetReport(ctx context.Context, sheet calendar.Timesheet) error {
	if n.channelAccessToken == "" || n.userID == "" {
		return fmt.Errorf("%w: LINEの認証情報が設定されていません", domain.ErrConfiguration)
	}
	return n.sendPushMessage(ctx, buildTimesheetMessage(sheet))
}

// buildTimesheetMessage タイムシート通知用のメッセージを構築
func buildTimesheetMessage(sheet calendar.Timesheet) string {
	var b strings.Builder

	b.WriteString("Smart Timesheet 週次レポート\n")
	b.WriteString(fmt.Sprintf("%s〜%s 合計 %.1fh\n",
		formatDay(sheet.WeekDates[0]), formatDay(sheet.WeekDates[6]), sheet.GrandTotal))

	for _, row := range sheet.Rows {
		b.WriteString(fmt.Sprintf("\n■ %s %.1fh\n", row.Project, row.Total))
		days := make([]string, 0, len(row.Hours))
		for i, h := range row.Hours {
			if h == 0 {
				continue
			}
			days = append(days, fmt.Sprintf("%s %.1fh", formatDay(sheet.WeekDates[i]), h))
		}
		if len(days) > 0 {
			b.WriteString("   " + strings.Join(days, " / ") + "\n")
		}
	}

	b.WriteString("\n日別合計:\n")
	for i, total := range sheet.DailyTotals {
		b.WriteString(fmt.Sprintf("🔸 %s %.1fh\n", formatDay(sheet.WeekDates[i]), total))
	}

	return b.String()
}

// formatDay "1/13(月)" 形式
func formatDay(t time.Time) string {
	return fmt.Sprintf("%s(%s)", t.Format("1/2"), getWeekdayJapanese(t.Weekday()))
}

// sendPushMessage LINE Push APIでメッセージを送信
func (n *LINENotifier) sendPushMessage(ctx context.Context, message string) error {
	pushRequest := linePushRequest{
		To: n.userID,
		Messages: []lineMessage{
			{
				Type: "text",
				Text: message,
			},
		},
	}

	requestBody, err := json.Marshal(pushRequest)
	if err != nil {
		return fmt.Errorf("リクエストボディのJSON変換に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", n.channelAccessToken))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("LINE APIリクエストの送信に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorResponse lineErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResponse); err != nil {
			return fmt.Errorf("LINE API呼び出しが失敗しました (Status: %d, レスポンス解析不可: %v)", resp.StatusCode, err)
		}

		errorDetails := errorResponse.Message
		if len(errorResponse.Details) > 0 {
			errorDetails += fmt.Sprintf(" (詳細: %s)", errorResponse.Details[0].Message)
		}

		return fmt.Errorf("LINE API呼び出しが失敗しました (Status: %d): %s", resp.StatusCode, errorDetails)
	}

	return nil
}

// getWeekdayJapanese 曜日を日本語に変換
func getWeekdayJapanese(weekday time.Weekday) string {
	weekdays := map[time.Weekday]string{
		time.Sunday:    "日",
		time.Monday:    "月",
		time.Tuesday:   "火",
		time.Wednesday: "水",
		time.Thursday:  "木",
		time.Friday:    "金",
		time.Saturday:  "土",
	}
	return weekdays[weekday]
}
