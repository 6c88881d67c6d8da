package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// 1つの繰り返し予定から展開する最大件数
const maxOccurrencesPerEvent = 500

// ICSSource ICSフィードから予定を読み込むEventSourceの実装。
// プロジェクト名はCATEGORIESの先頭の値を使う
type ICSSource struct {
	urls       []string
	httpClient *http.Client
	timezone   *time.Location
	logger     *zap.Logger
}

// NewICSSource ICSSourceを作成
func NewICSSource(urls []string, loc *time.Location, logger *zap.Logger) *ICSSource {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ICSSource{
		urls:       urls,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		timezone:   loc,
		logger:     logger,
	}
}

// ListEvents 全フィードを取得し、from〜toに開始する予定を返す。繰り返し予定は展開する
func (s *ICSSource) ListEvents(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	events := make([]domain.Event, 0)
	for _, url := range s.urls {
		body, err := s.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		parsed, err := s.parse(body, from, to)
		if err != nil {
			return nil, fmt.Errorf("ICSの解析に失敗しました (%s): %w", redactURL(url), err)
		}
		events = append(events, parsed...)
	}
	return events, nil
}

func (s *ICSSource) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ICSの取得に失敗しました (%s): %w", redactURL(url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ICSの取得に失敗しました (%s): status %d", redactURL(url), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ICSの読み込みに失敗しました: %w", err)
	}
	return body, nil
}

func (s *ICSSource) parse(body []byte, from, to time.Time) ([]domain.Event, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0)
	for _, ve := range cal.Events() {
		expanded, err := s.expand(ve, from, to)
		if err != nil {
			s.logger.Warn("VEVENTをスキップしました", zap.Error(err))
			continue
		}
		events = append(events, expanded...)
	}
	return events, nil
}

// expand VEVENTを予定に変換する。終日予定は除外
func (s *ICSSource) expand(ve *ical.VEvent, from, to time.Time) ([]domain.Event, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return nil, fmt.Errorf("UIDがありません")
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return nil, fmt.Errorf("DTSTARTがありません: %s", uidProp.Value)
	}
	if isAllDay(dtStart) {
		return nil, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("開始時刻の解析に失敗しました: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = start
	}
	duration := end.Sub(start)

	base := domain.Event{
		ID:   uidProp.Value,
		Type: domain.EventTypeImported,
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		base.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		base.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentProperty("CATEGORIES")); p != nil {
		base.Project = strings.TrimSpace(strings.Split(p.Value, ",")[0])
	}

	rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
	if rruleProp == nil {
		if start.Before(from) || start.After(to) {
			return nil, nil
		}
		base.Start = start.In(s.timezone)
		base.End = end.In(s.timezone)
		return []domain.Event{base}, nil
	}

	r, err := rrule.StrToRRule(rruleProp.Value)
	if err != nil {
		return nil, fmt.Errorf("RRULEの解析に失敗しました: %w", err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, v := range strings.Split(p.Value, ",") {
			if ex, err := parseICSTime(strings.TrimSpace(v), start.Location()); err == nil {
				set.ExDate(ex)
			}
		}
	}

	occurrences := set.Between(from.In(start.Location()), to.In(start.Location()), true)
	if len(occurrences) > maxOccurrencesPerEvent {
		occurrences = occurrences[:maxOccurrencesPerEvent]
	}

	events := make([]domain.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		e := base
		e.ID = fmt.Sprintf("%s-%s", base.ID, occ.UTC().Format("20060102T150405Z"))
		e.Start = occ.In(s.timezone)
		e.End = occ.Add(duration).In(s.timezone)
		events = append(events, e)
	}
	return events, nil
}

// isAllDay DTSTARTがVALUE=DATE、または日付のみの値か
func isAllDay(prop *ical.IANAProperty) bool {
	if vs, ok := prop.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

// parseICSTime EXDATEの値を解析
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}

// redactURL ログ用にクエリ文字列を除いたURL
func redactURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
