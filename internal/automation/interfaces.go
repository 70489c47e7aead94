package automation

import (
	"context"
	"time"

	"cashbox/internal/model"
)

// ClientDirectory enumerates the merchants the scheduler evaluates.
type ClientDirectory interface {
	ListActiveClientIDs(ctx context.Context) ([]int64, error)
}

// ScheduleStore provides read access to per-merchant automation settings and
// weekly windows. Writes go through the admin surface, never through here.
type ScheduleStore interface {
	// GetClientConfig returns settings for a merchant, creating defaults on
	// first read.
	GetClientConfig(ctx context.Context, clientID int64) (*model.ClientConfig, error)

	// GetPeriodsForDay returns active windows for one weekday, ordered by
	// priority then open time.
	GetPeriodsForDay(ctx context.Context, clientID int64, dayOfWeek int) ([]model.SchedulePeriod, error)
}

// RegisterStore manages the daily cash register rows.
type RegisterStore interface {
	// GetRegisterForDate returns the register for a local date (YYYY-MM-DD)
	// or sql.ErrNoRows.
	GetRegisterForDate(ctx context.Context, clientID int64, date string) (*model.CashRegister, error)

	CreateRegister(ctx context.Context, r *model.CashRegister) error

	UpdateRegisterState(ctx context.Context, registerID int64, upd model.RegisterStateUpdate) error
}

// ReportGenerator produces the end-of-day report after a close. Best effort:
// a failure here never rolls the close back.
type ReportGenerator interface {
	GenerateDaily(ctx context.Context, clientID int64, localDay time.Time) (*model.DailyReport, error)
}

// OperationLog is the append-only audit sink and the guard's lookup source.
type OperationLog interface {
	InsertOperationLog(ctx context.Context, e *model.OperationLogEntry) error

	// HasRecentSuccess reports whether a success of the same kind for the
	// same window was logged within the lookback horizon.
	HasRecentSuccess(ctx context.Context, clientID int64, opType model.OperationType, periodID int64, within time.Duration) (bool, error)

	// WasExecutedToday reports whether a success of the kind for the window
	// was logged between the given day bounds.
	WasExecutedToday(ctx context.Context, clientID int64, opType model.OperationType, periodID int64, dayStart, dayEnd time.Time) (bool, error)

	GetOperationsLog(ctx context.Context, filter model.OperationLogFilter) ([]model.OperationLogEntry, error)
}

// Notifier delivers manager-facing alerts. Implementations must be safe for
// concurrent use; a nil Notifier disables notifications.
type Notifier interface {
	// UpcomingOperation warns that an automated action is due shortly.
	UpcomingOperation(ctx context.Context, clientID int64, opType model.OperationType, period *model.SchedulePeriod, at time.Time) error
}

// Logger interface for logging.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
}

// NopLogger discards everything. Used in tests.
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Debug(string, ...interface{}) {}
