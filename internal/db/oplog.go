package db

import (
	"context"
	"database/sql"
	"time"

	"cashbox/internal/model"
)

// InsertOperationLog appends one audit record. There is deliberately no update
// or delete counterpart; the log is the immutable source of truth for dedup
// and the operations history view.
func (db *DB) InsertOperationLog(ctx context.Context, e *model.OperationLogEntry) error {
	if e.ExecutedTime.IsZero() {
		e.ExecutedTime = time.Now()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO cash_auto_operations_log
			(client_id, operation_type, schedule_period_id, scheduled_time,
			 executed_time, status, cash_register_id, report_id, error_message, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ClientID, string(e.OperationType), nullID(e.SchedulePeriodID), nullTime(e.ScheduledTime),
		e.ExecutedTime, string(e.Status), nullID(e.CashRegisterID), nullID(e.ReportID),
		nullString(e.ErrorMessage), nullString(e.Notes),
	)
	if err != nil {
		return err
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// HasRecentSuccess reports whether a success entry for the same merchant,
// operation kind and window exists within the lookback horizon. Scoping by
// period id keeps two same-kind windows on one day from suppressing each other.
func (db *DB) HasRecentSuccess(ctx context.Context, clientID int64, opType model.OperationType, periodID int64, within time.Duration) (bool, error) {
	cutoff := time.Now().Add(-within)
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cash_auto_operations_log
		WHERE client_id = ? AND operation_type = ? AND status = ?
		  AND schedule_period_id = ? AND executed_time >= ?`,
		clientID, string(opType), string(model.StatusSuccess), periodID, cutoff,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// WasExecutedToday reports whether a success entry for the merchant, kind and
// window was logged between the given day bounds. Used by the next-operations
// projection, not by the execution guard.
func (db *DB) WasExecutedToday(ctx context.Context, clientID int64, opType model.OperationType, periodID int64, dayStart, dayEnd time.Time) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM cash_auto_operations_log
		WHERE client_id = ? AND operation_type = ? AND status = ?
		  AND schedule_period_id = ?
		  AND executed_time >= ? AND executed_time <= ?`,
		clientID, string(opType), string(model.StatusSuccess), periodID, dayStart, dayEnd,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetOperationsLog returns audit records matching the filter, newest first.
func (db *DB) GetOperationsLog(ctx context.Context, filter model.OperationLogFilter) ([]model.OperationLogEntry, error) {
	query := `
		SELECT id, client_id, operation_type, schedule_period_id, scheduled_time,
		       executed_time, status, cash_register_id, report_id, error_message, notes, created_at
		FROM cash_auto_operations_log
		WHERE client_id = ?`
	args := []interface{}{filter.ClientID}

	if filter.OperationType != "" {
		query += " AND operation_type = ?"
		args = append(args, string(filter.OperationType))
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if !filter.Since.IsZero() {
		query += " AND executed_time >= ?"
		args = append(args, filter.Since)
	}
	if !filter.Until.IsZero() {
		query += " AND executed_time <= ?"
		args = append(args, filter.Until)
	}
	query += " ORDER BY executed_time DESC, created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.OperationLogEntry
	for rows.Next() {
		var e model.OperationLogEntry
		var periodID, registerID, reportID sql.NullInt64
		var scheduled sql.NullTime
		var errMsg, notes sql.NullString
		if err := rows.Scan(
			&e.ID, &e.ClientID, &e.OperationType, &periodID, &scheduled,
			&e.ExecutedTime, &e.Status, &registerID, &reportID, &errMsg, &notes, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.SchedulePeriodID = periodID.Int64
		e.CashRegisterID = registerID.Int64
		e.ReportID = reportID.Int64
		if scheduled.Valid {
			e.ScheduledTime = scheduled.Time
		}
		e.ErrorMessage = errMsg.String
		e.Notes = notes.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
