package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cashbox/internal/model"
)

// GetClientConfig returns the automation settings for a merchant, creating a
// default row on first read.
func (db *DB) GetClientConfig(ctx context.Context, clientID int64) (*model.ClientConfig, error) {
	cfg, err := db.getClientConfig(ctx, clientID)
	if err == nil {
		return cfg, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	return db.createDefaultClientConfig(ctx, clientID)
}

func (db *DB) getClientConfig(ctx context.Context, clientID int64) (*model.ClientConfig, error) {
	var c model.ClientConfig
	err := db.QueryRowContext(ctx, `
		SELECT id, client_id, timezone, auto_schedule_enabled,
		       notification_enabled, notification_minutes_before, created_at, updated_at
		FROM cash_schedule_client_config
		WHERE client_id = ?`,
		clientID,
	).Scan(
		&c.ID, &c.ClientID, &c.Timezone, &c.AutoScheduleEnabled,
		&c.NotificationEnabled, &c.NotificationMinutesBefore, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) createDefaultClientConfig(ctx context.Context, clientID int64) (*model.ClientConfig, error) {
	cfg := model.DefaultClientConfig(clientID)
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO cash_schedule_client_config
			(client_id, timezone, auto_schedule_enabled, notification_enabled,
			 notification_minutes_before, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cfg.ClientID, cfg.Timezone, cfg.AutoScheduleEnabled, cfg.NotificationEnabled,
		cfg.NotificationMinutesBefore, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create default config for client %d: %w", clientID, err)
	}
	cfg.ID, _ = res.LastInsertId()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	return cfg, nil
}

// UpdateClientConfig overwrites mutable settings for a merchant.
func (db *DB) UpdateClientConfig(ctx context.Context, cfg *model.ClientConfig) error {
	_, err := db.ExecContext(ctx, `
		UPDATE cash_schedule_client_config
		SET timezone = ?, auto_schedule_enabled = ?, notification_enabled = ?,
		    notification_minutes_before = ?, updated_at = ?
		WHERE client_id = ?`,
		cfg.Timezone, cfg.AutoScheduleEnabled, cfg.NotificationEnabled,
		cfg.NotificationMinutesBefore, time.Now(), cfg.ClientID,
	)
	return err
}

// GetPeriodsForDay returns active windows for a merchant on a day of week,
// ordered by priority then open time. This ordering makes window matching
// deterministic when several windows are simultaneously eligible.
func (db *DB) GetPeriodsForDay(ctx context.Context, clientID int64, dayOfWeek int) ([]model.SchedulePeriod, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, day_of_week, period_name, open_hour, open_minute,
		       close_hour, close_minute, auto_open_enabled, auto_close_enabled,
		       is_active, priority_order, created_at, updated_at
		FROM cash_schedule_periods
		WHERE client_id = ? AND day_of_week = ? AND is_active = 1
		ORDER BY priority_order, open_hour, open_minute`,
		clientID, dayOfWeek,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPeriods(rows)
}

// GetSchedulePeriods returns all active windows for a merchant across the week.
func (db *DB) GetSchedulePeriods(ctx context.Context, clientID int64) ([]model.SchedulePeriod, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, day_of_week, period_name, open_hour, open_minute,
		       close_hour, close_minute, auto_open_enabled, auto_close_enabled,
		       is_active, priority_order, created_at, updated_at
		FROM cash_schedule_periods
		WHERE client_id = ? AND is_active = 1
		ORDER BY day_of_week, priority_order, open_hour, open_minute`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPeriods(rows)
}

func scanPeriods(rows *sql.Rows) ([]model.SchedulePeriod, error) {
	var periods []model.SchedulePeriod
	for rows.Next() {
		var p model.SchedulePeriod
		if err := rows.Scan(
			&p.ID, &p.ClientID, &p.DayOfWeek, &p.Name, &p.OpenHour, &p.OpenMinute,
			&p.CloseHour, &p.CloseMinute, &p.AutoOpenEnabled, &p.AutoCloseEnabled,
			&p.IsActive, &p.PriorityOrder, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// CreateSchedulePeriod inserts a validated window.
func (db *DB) CreateSchedulePeriod(ctx context.Context, p *model.SchedulePeriod) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid period: %w", err)
	}
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO cash_schedule_periods
			(client_id, day_of_week, period_name, open_hour, open_minute,
			 close_hour, close_minute, auto_open_enabled, auto_close_enabled,
			 is_active, priority_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientID, p.DayOfWeek, p.Name, p.OpenHour, p.OpenMinute,
		p.CloseHour, p.CloseMinute, p.AutoOpenEnabled, p.AutoCloseEnabled,
		p.IsActive, p.PriorityOrder, now, now,
	)
	if err != nil {
		return err
	}
	p.ID, _ = res.LastInsertId()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// UpdateSchedulePeriod overwrites a window's mutable fields.
func (db *DB) UpdateSchedulePeriod(ctx context.Context, p *model.SchedulePeriod) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid period: %w", err)
	}
	_, err := db.ExecContext(ctx, `
		UPDATE cash_schedule_periods
		SET period_name = ?, open_hour = ?, open_minute = ?, close_hour = ?,
		    close_minute = ?, auto_open_enabled = ?, auto_close_enabled = ?,
		    is_active = ?, priority_order = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.OpenHour, p.OpenMinute, p.CloseHour,
		p.CloseMinute, p.AutoOpenEnabled, p.AutoCloseEnabled,
		p.IsActive, p.PriorityOrder, time.Now(), p.ID,
	)
	return err
}

// DeleteSchedulePeriod soft-deletes a window. Rows are never removed so the
// audit log keeps resolving period ids.
func (db *DB) DeleteSchedulePeriod(ctx context.Context, periodID int64) error {
	_, err := db.ExecContext(ctx,
		"UPDATE cash_schedule_periods SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now(), periodID,
	)
	return err
}
