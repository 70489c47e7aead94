package db

import (
	"context"
	"database/sql"
	"fmt"

	"cashbox/internal/model"
)

// Early deployments stored one row per window with the weekdays packed into a
// "1,2,3" string. migrateLegacyPeriods expands such rows into the per-day
// layout on startup and retires the legacy table. Runs as a no-op on every
// start after the table is gone.
func (db *DB) migrateLegacyPeriods(ctx context.Context) error {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'cash_schedule_periods_legacy'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT client_id, days_of_week, period_name, open_hour, open_minute,
		       close_hour, close_minute, auto_open_enabled, auto_close_enabled,
		       is_active, priority_order
		FROM cash_schedule_periods_legacy`)
	if err != nil {
		return fmt.Errorf("read legacy periods: %w", err)
	}

	var expanded []model.SchedulePeriod
	for rows.Next() {
		var p model.SchedulePeriod
		var daysSpec string
		if err := rows.Scan(
			&p.ClientID, &daysSpec, &p.Name, &p.OpenHour, &p.OpenMinute,
			&p.CloseHour, &p.CloseMinute, &p.AutoOpenEnabled, &p.AutoCloseEnabled,
			&p.IsActive, &p.PriorityOrder,
		); err != nil {
			rows.Close()
			return err
		}
		expanded = append(expanded, expandLegacyPeriod(p, daysSpec)...)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range expanded {
		p := &expanded[i]
		if err := db.CreateSchedulePeriod(ctx, p); err != nil {
			return fmt.Errorf("migrate legacy period %q (days %s) for client %d: %w",
				p.Name, model.NewDaySet(p.DayOfWeek).LegacyString(), p.ClientID, err)
		}
	}

	_, err = db.ExecContext(ctx, "DROP TABLE cash_schedule_periods_legacy")
	return err
}

// expandLegacyPeriod fans one legacy row out into per-day rows. A day spec
// that parses to nothing drops the row.
func expandLegacyPeriod(p model.SchedulePeriod, daysSpec string) []model.SchedulePeriod {
	days := model.ParseLegacyDays(daysSpec).Days()
	out := make([]model.SchedulePeriod, 0, len(days))
	for _, day := range days {
		q := p
		q.DayOfWeek = day
		out = append(out, q)
	}
	return out
}
