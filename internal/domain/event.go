package domain

import "time"

// EventType 予定の出所（provenance）
type EventType string

const (
	// EventTypeManual バックログからの手動配置
	EventTypeManual EventType = "manual"
	// EventTypeAIGenerated AIスケジューラが生成した予定
	EventTypeAIGenerated EventType = "ai-generated"
	// EventTypeImported 外部カレンダーから取り込んだ予定
	EventTypeImported EventType = "imported"
)

const (
	// UnassignedProject プロジェクト未設定の予定を集計する際の名前
	UnassignedProject = "Unassigned"
	// AIGeneratedProject AI応答のtaskIdがどのタスクにも一致しない場合のプロジェクト名
	AIGeneratedProject = "AI Generated"
)

// Event カレンダーイベントのドメインエンティティ
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Project     string    `json:"project"`
	Type        EventType `json:"type"`
	Description string    `json:"description,omitempty"`
}

// Duration 予定の長さ。end < start の場合は負の値をそのまま返す
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// ProjectOrUnassigned 空のプロジェクト名を "Unassigned" に置き換える
func ProjectOrUnassigned(project string) string {
	if project == "" {
		return UnassignedProject
	}
	return project
}
