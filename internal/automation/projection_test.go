package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashbox/internal/model"
)

func newTestProjector(store *memStore, now time.Time) *Projector {
	p := NewProjector(store, store)
	p.now = func() time.Time { return now }
	return p
}

func TestProjectorNextOperations(t *testing.T) {
	// Monday 12:00: today's 09:00 open already ran, 18:00 close is ahead.
	now := monday(12, 0)
	store := newMemStore()
	store.now = func() time.Time { return now }
	store.addClient(1, "UTC", true)
	store.addPeriod(mondayPeriod(10, 1))

	tuesday := mondayPeriod(11, 1)
	tuesday.DayOfWeek = 2
	store.addPeriod(tuesday)

	require.NoError(t, store.InsertOperationLog(context.Background(), &model.OperationLogEntry{
		ClientID:         1,
		OperationType:    model.OperationAutoOpen,
		SchedulePeriodID: 10,
		Status:           model.StatusSuccess,
		ExecutedTime:     monday(9, 1),
	}))

	ops, err := newTestProjector(store, now).NextOperations(context.Background(), 1, 7, 10)
	require.NoError(t, err)
	require.Len(t, ops, 4)

	// Sorted by time: today's executed open, today's close, then Tuesday.
	assert.Equal(t, model.OperationAutoOpen, ops[0].Type)
	assert.Equal(t, "executed", ops[0].ExecutionStatus)
	assert.True(t, ops[0].ExecutedToday)

	assert.Equal(t, model.OperationAutoClose, ops[1].Type)
	assert.Equal(t, "scheduled", ops[1].ExecutionStatus)
	assert.Equal(t, monday(18, 0), ops[1].ScheduledTime)

	assert.Equal(t, time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC), ops[2].ScheduledTime)
	assert.Equal(t, time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC), ops[3].ScheduledTime)
}

func TestProjectorExcludesPastUnexecuted(t *testing.T) {
	// 19:30 is past both of today's targets and nothing ran: neither should
	// appear, only the following days.
	now := monday(19, 30)
	store := newMemStore()
	store.now = func() time.Time { return now }
	store.addClient(1, "UTC", true)
	store.addPeriod(mondayPeriod(10, 1))

	ops, err := newTestProjector(store, now).NextOperations(context.Background(), 1, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, ops, "single Monday window, horizon ends Tuesday")
}

func TestProjectorLimit(t *testing.T) {
	now := monday(6, 0)
	store := newMemStore()
	store.now = func() time.Time { return now }
	store.addClient(1, "UTC", true)
	for day := 1; day <= 7; day++ {
		p := mondayPeriod(int64(day), 1)
		p.DayOfWeek = day
		store.addPeriod(p)
	}

	ops, err := newTestProjector(store, now).NextOperations(context.Background(), 1, 7, 5)
	require.NoError(t, err)
	assert.Len(t, ops, 5)
	for i := 1; i < len(ops); i++ {
		assert.False(t, ops[i].ScheduledTime.Before(ops[i-1].ScheduledTime))
	}
}
