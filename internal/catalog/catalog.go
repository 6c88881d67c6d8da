// Package catalog はバックログのタスク一覧を読み込む。
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

//go:embed tasks.yaml
var defaultTasks []byte

type file struct {
	Tasks []domain.Task `yaml:"tasks" validate:"required,min=1,dive"`
}

// Catalog 読み込み済みのタスク一覧（読み取り専用）
type Catalog struct {
	tasks []domain.Task
}

// Load pathのYAMLを読み込む。pathが空の場合は組み込みのタスク一覧を使う
func Load(path string) (*Catalog, error) {
	data := defaultTasks
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("タスクファイルの読み込みに失敗しました: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse YAMLからタスク一覧を作成し、必須項目とIDの重複を検証する
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("タスクファイルの解析に失敗しました: %w", err)
	}

	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("タスクファイルの検証に失敗しました: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Tasks))
	for _, t := range f.Tasks {
		if _, ok := seen[t.ID]; ok {
			return nil, fmt.Errorf("タスクIDが重複しています: %s", t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	return &Catalog{tasks: f.Tasks}, nil
}

// Tasks タスク一覧のコピー
func (c *Catalog) Tasks() []domain.Task {
	out := make([]domain.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Find IDでタスクを検索
func (c *Catalog) Find(id string) (domain.Task, bool) {
	return domain.FindTask(c.tasks, id)
}
