package db

import (
	"context"
	"database/sql"
	"fmt"

	"cashbox/internal/model"
)

// GetRegisterForDate returns the merchant's register for a local date
// (YYYY-MM-DD), or sql.ErrNoRows when none exists.
func (db *DB) GetRegisterForDate(ctx context.Context, clientID int64, date string) (*model.CashRegister, error) {
	var r model.CashRegister
	var openedAt, closedAt, reopenedAt sql.NullTime
	err := db.QueryRowContext(ctx, `
		SELECT id, client_id, date, initial_usd, initial_ars, current_usd,
		       current_ars, daily_sales, is_open, is_active, opened_at, closed_at, reopened_at
		FROM cash_registers
		WHERE client_id = ? AND date = ?
		LIMIT 1`,
		clientID, date,
	).Scan(
		&r.ID, &r.ClientID, &r.Date, &r.InitialUSD, &r.InitialARS, &r.CurrentUSD,
		&r.CurrentARS, &r.DailySales, &r.IsOpen, &r.IsActive, &openedAt, &closedAt, &reopenedAt,
	)
	if err != nil {
		return nil, err
	}
	if openedAt.Valid {
		r.OpenedAt = openedAt.Time
	}
	if closedAt.Valid {
		r.ClosedAt = &closedAt.Time
	}
	if reopenedAt.Valid {
		r.ReopenedAt = &reopenedAt.Time
	}
	return &r, nil
}

// CreateRegister inserts a new register. The UNIQUE(client_id, date) constraint
// makes redundant open attempts fail loudly instead of duplicating a day.
func (db *DB) CreateRegister(ctx context.Context, r *model.CashRegister) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO cash_registers
			(client_id, date, initial_usd, initial_ars, current_usd, current_ars,
			 daily_sales, is_open, is_active, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ClientID, r.Date, r.InitialUSD, r.InitialARS, r.CurrentUSD, r.CurrentARS,
		r.DailySales, r.IsOpen, r.IsActive, r.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("create register for client %d date %s: %w", r.ClientID, r.Date, err)
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

// UpdateRegisterState transitions a register's open/closed state and stamps
// the corresponding timestamp. Balances are never written here.
func (db *DB) UpdateRegisterState(ctx context.Context, registerID int64, upd model.RegisterStateUpdate) error {
	var closedAt, reopenedAt interface{}
	if upd.ClosedAt != nil {
		closedAt = *upd.ClosedAt
	}
	if upd.ReopenedAt != nil {
		reopenedAt = *upd.ReopenedAt
	}
	_, err := db.ExecContext(ctx, `
		UPDATE cash_registers
		SET is_open = ?,
		    closed_at = COALESCE(?, closed_at),
		    reopened_at = COALESCE(?, reopened_at)
		WHERE id = ?`,
		upd.IsOpen, closedAt, reopenedAt, registerID,
	)
	return err
}
