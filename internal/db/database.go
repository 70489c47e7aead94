package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the cashbox service.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	d := &DB{db}
	if err := d.migrateLegacyPeriods(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate legacy periods: %w", err)
	}
	return d, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Merchants
		`CREATE TABLE IF NOT EXISTS clients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			manager_chat_id INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Per-merchant automation settings
		`CREATE TABLE IF NOT EXISTS cash_schedule_client_config (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER UNIQUE NOT NULL,
			timezone TEXT NOT NULL,
			auto_schedule_enabled BOOLEAN NOT NULL DEFAULT 1,
			notification_enabled BOOLEAN NOT NULL DEFAULT 0,
			notification_minutes_before INTEGER NOT NULL DEFAULT 5,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id)
		)`,

		// Weekly windows
		`CREATE TABLE IF NOT EXISTS cash_schedule_periods (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			day_of_week INTEGER NOT NULL,
			period_name TEXT NOT NULL,
			open_hour INTEGER NOT NULL,
			open_minute INTEGER NOT NULL,
			close_hour INTEGER NOT NULL,
			close_minute INTEGER NOT NULL,
			auto_open_enabled BOOLEAN NOT NULL DEFAULT 1,
			auto_close_enabled BOOLEAN NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			priority_order INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id)
		)`,

		// Daily cash registers; one per merchant per local date
		`CREATE TABLE IF NOT EXISTS cash_registers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			initial_usd TEXT NOT NULL DEFAULT '0.00',
			initial_ars TEXT NOT NULL DEFAULT '0.00',
			current_usd TEXT NOT NULL DEFAULT '0.00',
			current_ars TEXT NOT NULL DEFAULT '0.00',
			daily_sales TEXT NOT NULL DEFAULT '0.00',
			is_open BOOLEAN NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			opened_at DATETIME,
			closed_at DATETIME,
			reopened_at DATETIME,
			UNIQUE(client_id, date),
			FOREIGN KEY (client_id) REFERENCES clients(id)
		)`,

		// Append-only automation audit log
		`CREATE TABLE IF NOT EXISTS cash_auto_operations_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			operation_type TEXT NOT NULL,
			schedule_period_id INTEGER,
			scheduled_time DATETIME,
			executed_time DATETIME NOT NULL,
			status TEXT NOT NULL,
			cash_register_id INTEGER,
			report_id INTEGER,
			error_message TEXT,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id)
		)`,

		// End-of-day reports
		`CREATE TABLE IF NOT EXISTS daily_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT UNIQUE NOT NULL,
			client_id INTEGER NOT NULL,
			report_date TEXT NOT NULL,
			total_income TEXT NOT NULL DEFAULT '0.00',
			total_expenses TEXT NOT NULL DEFAULT '0.00',
			total_debt_payments TEXT NOT NULL DEFAULT '0.00',
			net_profit TEXT NOT NULL DEFAULT '0.00',
			vendor_commissions TEXT NOT NULL DEFAULT '0.00',
			total_movements INTEGER NOT NULL DEFAULT 0,
			report_data TEXT,
			is_auto_generated BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id)
		)`,

		// Stored export files
		`CREATE TABLE IF NOT EXISTS generated_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			report_id INTEGER,
			file_name TEXT NOT NULL,
			report_type TEXT NOT NULL,
			file_data BLOB,
			report_date TEXT NOT NULL,
			is_auto_generated BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(id)
		)`,

		// POS entities aggregated into daily reports
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			vendor_id INTEGER,
			order_number TEXT,
			customer_name TEXT,
			total_usd TEXT NOT NULL DEFAULT '0.00',
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'unpaid',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			order_id INTEGER,
			payment_method TEXT,
			amount TEXT NOT NULL DEFAULT '0.00',
			amount_usd TEXT NOT NULL DEFAULT '0.00',
			exchange_rate TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			description TEXT,
			category TEXT,
			amount TEXT NOT NULL DEFAULT '0.00',
			amount_usd TEXT NOT NULL DEFAULT '0.00',
			payment_method TEXT,
			provider TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS cash_movements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			type TEXT NOT NULL,
			subtype TEXT,
			amount TEXT NOT NULL DEFAULT '0.00',
			currency TEXT,
			amount_usd TEXT NOT NULL DEFAULT '0.00',
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS debt_payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			order_id INTEGER,
			customer_name TEXT,
			amount TEXT NOT NULL DEFAULT '0.00',
			amount_usd TEXT NOT NULL DEFAULT '0.00',
			payment_method TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS vendors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			phone TEXT,
			commission_percentage TEXT NOT NULL DEFAULT '10',
			is_active BOOLEAN NOT NULL DEFAULT 1
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_clients_active ON clients(is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_periods_client_day ON cash_schedule_periods(client_id, day_of_week, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_registers_client_date ON cash_registers(client_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_oplog_client_type ON cash_auto_operations_log(client_id, operation_type, status, executed_time)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_client_date ON daily_reports(client_id, report_date)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_client_created ON orders(client_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_client_created ON payments(client_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_client_created ON expenses(client_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_client_created ON cash_movements(client_id, created_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// GetDB returns the underlying sql.DB.
func (db *DB) GetDB() *sql.DB {
	return db.DB
}
