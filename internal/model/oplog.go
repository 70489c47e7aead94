package model

import "time"

// OperationType identifies an automated cash register action.
type OperationType string

const (
	OperationAutoOpen  OperationType = "auto_open"
	OperationAutoClose OperationType = "auto_close"
)

// OperationStatus is the recorded outcome of an evaluated attempt.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusFailed  OperationStatus = "failed"
	StatusSkipped OperationStatus = "skipped"
)

// OperationLogEntry is one immutable audit record. Entries are insert-only;
// they drive both the operations history view and execution dedup.
type OperationLogEntry struct {
	ID               int64           `json:"id"`
	ClientID         int64           `json:"client_id"`
	OperationType    OperationType   `json:"operation_type"`
	SchedulePeriodID int64           `json:"schedule_period_id,omitempty"`
	ScheduledTime    time.Time       `json:"scheduled_time"`
	ExecutedTime     time.Time       `json:"executed_time"`
	Status           OperationStatus `json:"status"`
	CashRegisterID   int64           `json:"cash_register_id,omitempty"`
	ReportID         int64           `json:"report_id,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OperationLogFilter narrows log queries.
type OperationLogFilter struct {
	ClientID      int64
	OperationType OperationType
	Status        OperationStatus
	Since         time.Time
	Until         time.Time
	Limit         int
}
