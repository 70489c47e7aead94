package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashbox/internal/model"
)

func testDecision(now time.Time) Decision {
	p := mondayPeriod(10, 1)
	return Decision{ShouldExecute: true, Period: &p, LocalTime: now}
}

func newTestExecutor(store *memStore, now time.Time) *Executor {
	e := NewExecutor(store, store, store, NopLogger{}, nil, time.Minute)
	e.now = func() time.Time { return now }
	return e
}

func TestExecuteAutoOpenCreatesRegister(t *testing.T) {
	now := monday(9, 2)
	store := newMemStore()
	e := newTestExecutor(store, now)

	err := e.ExecuteAutoOpen(context.Background(), 1, testDecision(now))
	require.NoError(t, err)

	reg := store.register(1, "2024-01-08")
	require.NotNil(t, reg)
	assert.True(t, reg.IsOpen)
	assert.Equal(t, "0.00", reg.InitialARS)
	assert.Equal(t, "0.00", reg.InitialUSD)

	entries := store.entries(1, model.OperationAutoOpen)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSuccess, entries[0].Status)
	assert.Equal(t, int64(10), entries[0].SchedulePeriodID)
	assert.Equal(t, reg.ID, entries[0].CashRegisterID)
	assert.Equal(t, monday(9, 0), entries[0].ScheduledTime)
}

func TestExecuteAutoOpenAlreadyOpen(t *testing.T) {
	now := monday(9, 2)
	store := newMemStore()
	e := newTestExecutor(store, now)

	// Merchant opened by hand before the window fired.
	manual := model.NewCashRegister(1, "2024-01-08", monday(8, 15))
	require.NoError(t, store.CreateRegister(context.Background(), manual))

	err := e.ExecuteAutoOpen(context.Background(), 1, testDecision(now))
	require.NoError(t, err)

	assert.Equal(t, 1, store.registerCount(), "no duplicate register")
	entries := store.entries(1, model.OperationAutoOpen)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSuccess, entries[0].Status)
	assert.Contains(t, entries[0].Notes, "already open")
}

func TestExecuteAutoOpenReopensClosedRegister(t *testing.T) {
	now := monday(9, 2)
	store := newMemStore()
	e := newTestExecutor(store, now)

	reg := model.NewCashRegister(1, "2024-01-08", monday(7, 0))
	require.NoError(t, store.CreateRegister(context.Background(), reg))
	closedAt := monday(8, 0)
	require.NoError(t, store.UpdateRegisterState(context.Background(), reg.ID,
		model.RegisterStateUpdate{IsOpen: false, ClosedAt: &closedAt}))

	err := e.ExecuteAutoOpen(context.Background(), 1, testDecision(now))
	require.NoError(t, err)

	got := store.register(1, "2024-01-08")
	require.NotNil(t, got)
	assert.True(t, got.IsOpen)
	require.NotNil(t, got.ReopenedAt)
	assert.Equal(t, now, *got.ReopenedAt)

	entries := store.entries(1, model.OperationAutoOpen)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Notes, "reopened")
}

func TestExecuteAutoOpenFailureLogsFailedEntry(t *testing.T) {
	now := monday(9, 2)
	store := newMemStore()
	store.failCreateRegister = true
	e := newTestExecutor(store, now)

	err := e.ExecuteAutoOpen(context.Background(), 1, testDecision(now))
	require.Error(t, err)

	entries := store.entries(1, model.OperationAutoOpen)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusFailed, entries[0].Status)
	assert.NotEmpty(t, entries[0].ErrorMessage)
}

func TestExecuteAutoCloseNoRegisterIsSkipped(t *testing.T) {
	now := monday(18, 3)
	store := newMemStore()
	e := newTestExecutor(store, now)

	err := e.ExecuteAutoClose(context.Background(), 1, testDecision(now))
	require.NoError(t, err)

	entries := store.entries(1, model.OperationAutoClose)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSkipped, entries[0].Status)
	assert.Equal(t, 0, store.reportCalls, "no report for a day that never opened")
}

func TestExecuteAutoCloseClosesAndGeneratesReport(t *testing.T) {
	now := monday(18, 3)
	store := newMemStore()
	e := newTestExecutor(store, now)

	reg := model.NewCashRegister(1, "2024-01-08", monday(9, 0))
	require.NoError(t, store.CreateRegister(context.Background(), reg))

	err := e.ExecuteAutoClose(context.Background(), 1, testDecision(now))
	require.NoError(t, err)

	got := store.register(1, "2024-01-08")
	require.NotNil(t, got)
	assert.False(t, got.IsOpen)
	require.NotNil(t, got.ClosedAt)
	assert.Equal(t, now, *got.ClosedAt)

	entries := store.entries(1, model.OperationAutoClose)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSuccess, entries[0].Status)
	assert.NotZero(t, entries[0].ReportID)
	assert.Equal(t, 1, store.reportCalls)
}

func TestExecuteAutoCloseAlreadyClosed(t *testing.T) {
	now := monday(18, 3)
	store := newMemStore()
	e := newTestExecutor(store, now)

	reg := model.NewCashRegister(1, "2024-01-08", monday(9, 0))
	require.NoError(t, store.CreateRegister(context.Background(), reg))
	closedAt := monday(17, 45)
	require.NoError(t, store.UpdateRegisterState(context.Background(), reg.ID,
		model.RegisterStateUpdate{IsOpen: false, ClosedAt: &closedAt}))

	err := e.ExecuteAutoClose(context.Background(), 1, testDecision(now))
	require.NoError(t, err)

	entries := store.entries(1, model.OperationAutoClose)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSuccess, entries[0].Status)
	assert.Contains(t, entries[0].Notes, "already closed")
	assert.Equal(t, 0, store.reportCalls, "redundant close must not re-run the report")
}

func TestExecuteAutoCloseReportFailureKeepsClose(t *testing.T) {
	now := monday(18, 3)
	store := newMemStore()
	store.failReport = true
	e := newTestExecutor(store, now)

	reg := model.NewCashRegister(1, "2024-01-08", monday(9, 0))
	require.NoError(t, store.CreateRegister(context.Background(), reg))

	err := e.ExecuteAutoClose(context.Background(), 1, testDecision(now))
	require.NoError(t, err, "report failure must not surface as a close failure")

	got := store.register(1, "2024-01-08")
	require.NotNil(t, got)
	assert.False(t, got.IsOpen, "close stays committed")

	entries := store.entries(1, model.OperationAutoClose)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusSuccess, entries[0].Status)
	assert.Zero(t, entries[0].ReportID)
	assert.Contains(t, entries[0].Notes, "report generation failed")
}
