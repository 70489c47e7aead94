package automation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cashbox/internal/model"
)

// Executor performs the idempotent open/close transitions. All outcomes,
// including redundant ones, are recorded in the operation log.
type Executor struct {
	registers RegisterStore
	reports   ReportGenerator
	log       OperationLog
	logger    Logger
	metrics   *Metrics

	// opTimeout bounds each backend call so a stuck store surfaces as a
	// failed entry instead of hanging the tick.
	opTimeout time.Duration

	now func() time.Time
}

func NewExecutor(registers RegisterStore, reports ReportGenerator, log OperationLog, logger Logger, metrics *Metrics, opTimeout time.Duration) *Executor {
	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}
	return &Executor{
		registers: registers,
		reports:   reports,
		log:       log,
		logger:    logger,
		metrics:   metrics,
		opTimeout: opTimeout,
		now:       time.Now,
	}
}

// ExecuteAutoOpen drives the register to the open state for the decision's
// local date. Safe to invoke redundantly: an already-open register is the
// goal state and logs success.
func (e *Executor) ExecuteAutoOpen(ctx context.Context, clientID int64, dec Decision) error {
	ctx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	date := dec.LocalTime.Format(DateLayout)
	scheduled := dec.ScheduledTimeFor(model.OperationAutoOpen)

	reg, err := e.registers.GetRegisterForDate(ctx, clientID, date)
	if err != nil && err != sql.ErrNoRows {
		return e.fail(ctx, clientID, model.OperationAutoOpen, dec, scheduled,
			fmt.Errorf("lookup register: %w", err))
	}

	switch {
	case reg != nil && reg.IsOpen:
		// Goal state already holds.
		e.logOutcome(ctx, &model.OperationLogEntry{
			ClientID:         clientID,
			OperationType:    model.OperationAutoOpen,
			SchedulePeriodID: dec.Period.ID,
			ScheduledTime:    scheduled,
			Status:           model.StatusSuccess,
			CashRegisterID:   reg.ID,
			Notes:            fmt.Sprintf("cash register already open for %s", date),
		})
		e.logger.Info("register already open", "client_id", clientID, "register_id", reg.ID, "date", date)

	case reg != nil:
		// Exists but closed: reopen.
		reopenedAt := e.now()
		if err := e.registers.UpdateRegisterState(ctx, reg.ID, model.RegisterStateUpdate{
			IsOpen:     true,
			ReopenedAt: &reopenedAt,
		}); err != nil {
			return e.fail(ctx, clientID, model.OperationAutoOpen, dec, scheduled,
				fmt.Errorf("reopen register %d: %w", reg.ID, err))
		}
		e.logOutcome(ctx, &model.OperationLogEntry{
			ClientID:         clientID,
			OperationType:    model.OperationAutoOpen,
			SchedulePeriodID: dec.Period.ID,
			ScheduledTime:    scheduled,
			Status:           model.StatusSuccess,
			CashRegisterID:   reg.ID,
			Notes:            fmt.Sprintf("cash register reopened for %s", date),
		})
		e.logger.Info("register reopened", "client_id", clientID, "register_id", reg.ID, "date", date)

	default:
		// No register for today: create one with zeroed balances.
		newReg := model.NewCashRegister(clientID, date, e.now())
		if err := e.registers.CreateRegister(ctx, newReg); err != nil {
			return e.fail(ctx, clientID, model.OperationAutoOpen, dec, scheduled,
				fmt.Errorf("create register: %w", err))
		}
		e.logOutcome(ctx, &model.OperationLogEntry{
			ClientID:         clientID,
			OperationType:    model.OperationAutoOpen,
			SchedulePeriodID: dec.Period.ID,
			ScheduledTime:    scheduled,
			Status:           model.StatusSuccess,
			CashRegisterID:   newReg.ID,
			Notes:            fmt.Sprintf("cash register opened automatically for %s", date),
		})
		e.logger.Info("register created", "client_id", clientID, "register_id", newReg.ID, "date", date)
	}

	if e.metrics != nil {
		e.metrics.IncOperation(model.OperationAutoOpen, model.StatusSuccess)
	}
	return nil
}

// ExecuteAutoClose drives the register to the closed state and requests the
// end-of-day report. The close is durable even when the report step fails.
func (e *Executor) ExecuteAutoClose(ctx context.Context, clientID int64, dec Decision) error {
	ctx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	date := dec.LocalTime.Format(DateLayout)
	scheduled := dec.ScheduledTimeFor(model.OperationAutoClose)

	reg, err := e.registers.GetRegisterForDate(ctx, clientID, date)
	if err == sql.ErrNoRows {
		// Nothing to close.
		e.logOutcome(ctx, &model.OperationLogEntry{
			ClientID:         clientID,
			OperationType:    model.OperationAutoClose,
			SchedulePeriodID: dec.Period.ID,
			ScheduledTime:    scheduled,
			Status:           model.StatusSkipped,
			Notes:            fmt.Sprintf("no cash register found for %s", date),
		})
		if e.metrics != nil {
			e.metrics.IncOperation(model.OperationAutoClose, model.StatusSkipped)
		}
		e.logger.Info("no register to close", "client_id", clientID, "date", date)
		return nil
	}
	if err != nil {
		return e.fail(ctx, clientID, model.OperationAutoClose, dec, scheduled,
			fmt.Errorf("lookup register: %w", err))
	}

	if !reg.IsOpen {
		// Goal state already holds.
		e.logOutcome(ctx, &model.OperationLogEntry{
			ClientID:         clientID,
			OperationType:    model.OperationAutoClose,
			SchedulePeriodID: dec.Period.ID,
			ScheduledTime:    scheduled,
			Status:           model.StatusSuccess,
			CashRegisterID:   reg.ID,
			Notes:            fmt.Sprintf("cash register already closed for %s", date),
		})
		if e.metrics != nil {
			e.metrics.IncOperation(model.OperationAutoClose, model.StatusSuccess)
		}
		e.logger.Info("register already closed", "client_id", clientID, "register_id", reg.ID, "date", date)
		return nil
	}

	closedAt := e.now()
	if err := e.registers.UpdateRegisterState(ctx, reg.ID, model.RegisterStateUpdate{
		IsOpen:   false,
		ClosedAt: &closedAt,
	}); err != nil {
		return e.fail(ctx, clientID, model.OperationAutoClose, dec, scheduled,
			fmt.Errorf("close register %d: %w", reg.ID, err))
	}

	// The close is committed. Report generation is best effort from here on:
	// a failure is logged on its own and never propagated, otherwise a retry
	// would re-run the close path for an already-closed day.
	var reportID int64
	notes := "cash register closed automatically with daily report generated"
	if e.reports != nil {
		report, rerr := e.reports.GenerateDaily(ctx, clientID, dec.LocalTime)
		if rerr != nil {
			notes = "cash register closed automatically; report generation failed"
			e.logger.Error("daily report generation failed",
				"client_id", clientID, "date", date, "error", rerr)
			if e.metrics != nil {
				e.metrics.IncReportFailure()
			}
		} else {
			reportID = report.ID
		}
	} else {
		notes = "cash register closed automatically"
	}

	e.logOutcome(ctx, &model.OperationLogEntry{
		ClientID:         clientID,
		OperationType:    model.OperationAutoClose,
		SchedulePeriodID: dec.Period.ID,
		ScheduledTime:    scheduled,
		Status:           model.StatusSuccess,
		CashRegisterID:   reg.ID,
		ReportID:         reportID,
		Notes:            notes,
	})
	if e.metrics != nil {
		e.metrics.IncOperation(model.OperationAutoClose, model.StatusSuccess)
	}
	e.logger.Info("register closed", "client_id", clientID, "register_id", reg.ID, "report_id", reportID)
	return nil
}

// fail records a failed attempt and returns the error so the per-merchant
// isolation boundary in the scheduler sees it.
func (e *Executor) fail(ctx context.Context, clientID int64, opType model.OperationType, dec Decision, scheduled time.Time, err error) error {
	e.logOutcome(ctx, &model.OperationLogEntry{
		ClientID:         clientID,
		OperationType:    opType,
		SchedulePeriodID: dec.Period.ID,
		ScheduledTime:    scheduled,
		Status:           model.StatusFailed,
		ErrorMessage:     err.Error(),
		Notes:            fmt.Sprintf("%s failed: %v", opType, err),
	})
	if e.metrics != nil {
		e.metrics.IncOperation(opType, model.StatusFailed)
	}
	return err
}

func (e *Executor) logOutcome(ctx context.Context, entry *model.OperationLogEntry) {
	entry.ExecutedTime = e.now()
	if err := e.log.InsertOperationLog(ctx, entry); err != nil {
		// The business transition already happened; losing the audit row is
		// reported but cannot undo it.
		e.logger.Error("failed to append operation log",
			"client_id", entry.ClientID,
			"operation", string(entry.OperationType),
			"error", err)
	}
}
