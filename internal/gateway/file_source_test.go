package gateway

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

func TestFileSource_RoundTripAndFilter(t *testing.T) {
	jst := loadJST(t)
	path := filepath.Join(t.TempDir(), "events.json")

	events := []domain.Event{
		{ID: "1", Title: "in", Project: "Alpha", Type: domain.EventTypeManual,
			Start: time.Date(2025, 1, 13, 9, 0, 0, 0, jst), End: time.Date(2025, 1, 13, 10, 0, 0, 0, jst)},
		{ID: "2", Title: "untyped", Project: "Beta",
			Start: time.Date(2025, 1, 14, 9, 0, 0, 0, jst), End: time.Date(2025, 1, 14, 10, 0, 0, 0, jst)},
		{ID: "3", Title: "out",
			Start: time.Date(2025, 1, 21, 9, 0, 0, 0, jst), End: time.Date(2025, 1, 21, 10, 0, 0, 0, jst)},
	}
	require.NoError(t, SaveEvents(path, events))

	source := NewFileSource(path)
	got, err := source.ListEvents(context.Background(),
		time.Date(2025, 1, 13, 0, 0, 0, 0, jst), time.Date(2025, 1, 19, 23, 59, 59, 0, jst))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, domain.EventTypeManual, got[0].Type)
	assert.True(t, got[0].Start.Equal(events[0].Start))
	assert.Equal(t, domain.EventTypeImported, got[1].Type)
}

func TestFileSource_MissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "none.json"))

	got, err := source.ListEvents(context.Background(), time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileSource_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSource(path).ListEvents(context.Background(), time.Time{}, time.Now())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "予定ファイルのJSON解析に失敗しました")
}

func TestLoadEvents_ReturnsAllEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id":"a","title":"x","start":"2020-01-01T09:00:00Z","end":"2020-01-01T10:00:00Z","project":"P","type":"manual"},
  {"id":"b","title":"y","start":"2030-01-01T09:00:00Z","end":"2030-01-01T10:00:00Z","project":"P"}
]`), 0o644))

	got, err := LoadEvents(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EventTypeManual, got[0].Type)
	assert.Equal(t, domain.EventTypeImported, got[1].Type)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`null`), 0o644))
	got, err = LoadEvents(empty)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
