package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// ProjectPropertyKey 予定のプロジェクト名を保持する非公開拡張プロパティのキー
const ProjectPropertyKey = "project"

// EventsProvider Google Calendar APIの予定一覧取得
type EventsProvider interface {
	ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*gcal.Event, error)
}

// serviceEventsProvider calendar.Serviceを使ったEventsProviderの実装
type serviceEventsProvider struct {
	service *gcal.Service
}

func (p *serviceEventsProvider) ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*gcal.Event, error) {
	items := make([]*gcal.Event, 0)
	err := p.service.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Pages(ctx, func(page *gcal.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GoogleCalendarRepository Google Calendar APIを使用したEventSourceの実装
type GoogleCalendarRepository struct {
	provider   EventsProvider
	calendarID string
	timezone   *time.Location
	logger     *zap.Logger
}

// NewGoogleCalendarRepository サービスアカウント認証でGoogle Calendarリポジトリを作成
func NewGoogleCalendarRepository(ctx context.Context, credentialsJSON []byte, calendarID string, loc *time.Location, logger *zap.Logger, opts ...option.ClientOption) (*GoogleCalendarRepository, error) {
	if len(credentialsJSON) == 0 {
		return nil, fmt.Errorf("%w: GOOGLE_CREDENTIALSが設定されていません", domain.ErrConfiguration)
	}

	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google認証情報の読み込みに失敗しました: %w", err)
	}

	opts = append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google Calendar APIサービスの作成に失敗しました: %w", err)
	}

	repo := NewGoogleCalendarRepositoryWithProvider(&serviceEventsProvider{service: service}, calendarID, loc)
	if logger != nil {
		repo.logger = logger
	}
	return repo, nil
}

// NewGoogleCalendarRepositoryWithProvider EventsProviderを指定してリポジトリを作成
func NewGoogleCalendarRepositoryWithProvider(provider EventsProvider, calendarID string, loc *time.Location) *GoogleCalendarRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleCalendarRepository{
		provider:   provider,
		calendarID: calendarID,
		timezone:   loc,
		logger:     zap.NewNop(),
	}
}

// ListEvents from〜toの時間指定ありの予定を取得。終日予定は工数に含めないため除外する
func (r *GoogleCalendarRepository) ListEvents(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	timeMin := from.In(r.timezone).Format(time.RFC3339)
	timeMax := to.In(r.timezone).Format(time.RFC3339)

	items, err := r.provider.ListEvents(ctx, r.calendarID, timeMin, timeMax)
	if err != nil {
		return nil, fmt.Errorf("カレンダーイベントの取得に失敗しました: %w", err)
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		event, ok, err := r.convertToEvent(item)
		if err != nil {
			r.logger.Warn("イベントの変換をスキップしました", zap.String("id", item.Id), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

// convertToEvent Google Calendar APIのイベントをドメインエンティティに変換。終日予定はok=false
func (r *GoogleCalendarRepository) convertToEvent(item *gcal.Event) (domain.Event, bool, error) {
	if item.Start == nil || item.End == nil {
		return domain.Event{}, false, fmt.Errorf("開始時刻が設定されていません")
	}
	if item.Start.DateTime == "" {
		if item.Start.Date != "" {
			return domain.Event{}, false, nil
		}
		return domain.Event{}, false, fmt.Errorf("開始時刻が設定されていません")
	}
	if item.End.DateTime == "" {
		return domain.Event{}, false, fmt.Errorf("終了時刻が設定されていません")
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("開始時刻の解析に失敗しました: %w", err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return domain.Event{}, false, fmt.Errorf("終了時刻の解析に失敗しました: %w", err)
	}

	event := domain.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Start:       start.In(r.timezone),
		End:         end.In(r.timezone),
		Type:        domain.EventTypeImported,
		Description: item.Description,
	}

	// タイトルが空の場合は「（無題）」に設定
	if event.Title == "" {
		event.Title = "（無題）"
	}

	if item.ExtendedProperties != nil {
		event.Project = item.ExtendedProperties.Private[ProjectPropertyKey]
	}

	return event, true, nil
}
