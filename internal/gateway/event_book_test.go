package gateway

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

func TestEventBook_SetImportedReplacesAndAppendKeeps(t *testing.T) {
	book := NewEventBook()

	book.SetImported([]domain.Event{{ID: "g1"}, {ID: "g2"}})
	book.Append(domain.Event{ID: "m1", Type: domain.EventTypeManual})
	book.SetImported([]domain.Event{{ID: "g3"}})

	snapshot := book.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "g3", snapshot[0].ID)
	assert.Equal(t, "m1", snapshot[1].ID)
	assert.Equal(t, 2, book.Len())
}

func TestEventBook_SnapshotIsCopy(t *testing.T) {
	book := NewEventBook()
	imported := []domain.Event{{ID: "g1"}}
	book.SetImported(imported)
	book.Append(domain.Event{ID: "m1"})

	imported[0].ID = "changed"
	snapshot := book.Snapshot()
	snapshot[1].ID = "changed"

	again := book.Snapshot()
	assert.Equal(t, "g1", again[0].ID)
	assert.Equal(t, "m1", again[1].ID)
}

func TestEventBook_ConcurrentAppend(t *testing.T) {
	book := NewEventBook()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			book.Append(domain.Event{ID: "x"})
			_ = book.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, book.Len())
}
