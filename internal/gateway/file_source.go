package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// FileSource JSONファイルから予定を読み込むEventSourceの実装
type FileSource struct {
	path string
}

// NewFileSource FileSourceを作成
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// ListEvents 開始時刻がfrom〜to（両端含む）の予定を返す。ファイルがない場合は空
func (s *FileSource) ListEvents(_ context.Context, from, to time.Time) ([]domain.Event, error) {
	all, err := LoadEvents(s.path)
	if err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(all))
	for _, e := range all {
		if e.Start.Before(from) || e.Start.After(to) {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// LoadEvents 予定ファイルの全件を読み込む。種別が空の予定は取り込み扱い
func LoadEvents(path string) ([]domain.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Event{}, nil
		}
		return nil, fmt.Errorf("予定ファイルの読み込みに失敗しました: %w", err)
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("予定ファイルのJSON解析に失敗しました: %w", err)
	}
	for i := range events {
		if events[i].Type == "" {
			events[i].Type = domain.EventTypeImported
		}
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// SaveEvents 予定をJSONファイルに書き出す
func SaveEvents(path string, events []domain.Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("予定のJSON変換に失敗しました: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("予定ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}
