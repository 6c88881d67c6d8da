package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

func TestCollectEvents_MergesAndReportsFailures(t *testing.T) {
	cal := testCalendar(t)
	from := cal.Date(2025, 1, 13)
	to := cal.Date(2025, 1, 20)

	ok1 := new(MockEventSource)
	broken := new(MockEventSource)
	ok2 := new(MockEventSource)

	feedErr := errors.New("ics feed unavailable")
	ok1.On("ListEvents", mock.Anything, from, to).Return([]domain.Event{{ID: "a"}}, nil)
	broken.On("ListEvents", mock.Anything, from, to).Return(nil, feedErr)
	ok2.On("ListEvents", mock.Anything, from, to).Return([]domain.Event{{ID: "b"}, {ID: "c"}}, nil)

	events, err := CollectEvents(context.Background(), nil, []EventSource{ok1, broken, ok2}, from, to)

	require.Error(t, err)
	assert.ErrorIs(t, err, feedErr)
	assert.Contains(t, err.Error(), "取得元1")

	// 成功した取得元の予定は返す
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	ok1.AssertExpectations(t)
	broken.AssertExpectations(t)
	ok2.AssertExpectations(t)
}

func TestCollectEvents_JoinsEveryFailure(t *testing.T) {
	first := new(MockEventSource)
	second := new(MockEventSource)
	errA := errors.New("google 401 invalid_grant")
	errB := errors.New("ics 503")
	first.On("ListEvents", mock.Anything, mock.Anything, mock.Anything).Return(nil, errA)
	second.On("ListEvents", mock.Anything, mock.Anything, mock.Anything).Return(nil, errB)

	events, err := CollectEvents(context.Background(), nil, []EventSource{first, second}, time.Now(), time.Now())

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestCollectEvents_NoSources(t *testing.T) {
	events, err := CollectEvents(context.Background(), nil, nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
