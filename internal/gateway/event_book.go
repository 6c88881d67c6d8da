package gateway

import (
	"sync"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// EventBook アプリケーションが保持する予定の集合（メモリのみ）。
// 外部カレンダーから取り込んだ予定と、手動配置・AI生成の予定を分けて持つ
type EventBook struct {
	mu       sync.RWMutex
	imported []domain.Event
	local    []domain.Event
}

// NewEventBook 空のEventBookを作成
func NewEventBook() *EventBook {
	return &EventBook{}
}

// Snapshot 全予定のコピー。取り込み分、ローカル分の順
func (b *EventBook) Snapshot() []domain.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Event, 0, len(b.imported)+len(b.local))
	out = append(out, b.imported...)
	out = append(out, b.local...)
	return out
}

// SetImported 取り込み分を丸ごと置き換える
func (b *EventBook) SetImported(events []domain.Event) {
	copied := make([]domain.Event, len(events))
	copy(copied, events)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.imported = copied
}

// Append ローカルの予定を追加
func (b *EventBook) Append(events ...domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.local = append(b.local, events...)
}

// Len 予定の件数
func (b *EventBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.imported) + len(b.local)
}
