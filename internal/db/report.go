package db

import (
	"context"
	"time"

	"cashbox/internal/model"
)

// CreateDailyReport persists an end-of-day report.
func (db *DB) CreateDailyReport(ctx context.Context, r *model.DailyReport) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO daily_reports
			(uid, client_id, report_date, total_income, total_expenses,
			 total_debt_payments, net_profit, vendor_commissions, total_movements,
			 report_data, is_auto_generated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UID, r.ClientID, r.ReportDate, r.TotalIncome, r.TotalExpenses,
		r.TotalDebtPayments, r.NetProfit, r.VendorCommissions, r.TotalMovements,
		r.ReportData, r.IsAutoGenerated,
	)
	if err != nil {
		return err
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

// CreateGeneratedReport stores an export file produced for a report.
func (db *DB) CreateGeneratedReport(ctx context.Context, g *model.GeneratedReport) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO generated_reports
			(client_id, report_id, file_name, report_type, file_data, report_date, is_auto_generated)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ClientID, g.ReportID, g.FileName, g.ReportType, g.FileData, g.ReportDate, g.IsAutoGenerated,
	)
	if err != nil {
		return err
	}
	g.ID, _ = res.LastInsertId()
	return nil
}

// GetOrdersByDateRange returns a merchant's orders created within [from, to].
func (db *DB) GetOrdersByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Order, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, COALESCE(vendor_id, 0), COALESCE(order_number, ''),
		       COALESCE(customer_name, ''), total_usd, status, payment_status, created_at
		FROM orders
		WHERE client_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		clientID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.ClientID, &o.VendorID, &o.OrderNumber,
			&o.CustomerName, &o.TotalUSD, &o.Status, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetPaymentsByDateRange returns a merchant's payments within [from, to].
func (db *DB) GetPaymentsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Payment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, COALESCE(order_id, 0), COALESCE(payment_method, ''),
		       amount, amount_usd, COALESCE(exchange_rate, ''), created_at
		FROM payments
		WHERE client_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		clientID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.ClientID, &p.OrderID, &p.PaymentMethod,
			&p.Amount, &p.AmountUSD, &p.ExchangeRate, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetExpensesByDateRange returns a merchant's expenses within [from, to].
func (db *DB) GetExpensesByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Expense, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, COALESCE(description, ''), COALESCE(category, ''),
		       amount, amount_usd, COALESCE(payment_method, ''), COALESCE(provider, ''), created_at
		FROM expenses
		WHERE client_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		clientID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Description, &e.Category,
			&e.Amount, &e.AmountUSD, &e.PaymentMethod, &e.Provider, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// GetCashMovementsByDateRange returns a merchant's cash movements within [from, to].
func (db *DB) GetCashMovementsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.CashMovement, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, type, COALESCE(subtype, ''), amount,
		       COALESCE(currency, ''), amount_usd, COALESCE(description, ''), created_at
		FROM cash_movements
		WHERE client_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		clientID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []model.CashMovement
	for rows.Next() {
		var m model.CashMovement
		if err := rows.Scan(&m.ID, &m.ClientID, &m.Type, &m.Subtype, &m.Amount,
			&m.Currency, &m.AmountUSD, &m.Description, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// GetDebtPaymentsByDateRange returns a merchant's debt payments within [from, to].
func (db *DB) GetDebtPaymentsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.DebtPayment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, COALESCE(order_id, 0), COALESCE(customer_name, ''),
		       amount, amount_usd, COALESCE(payment_method, ''), created_at
		FROM debt_payments
		WHERE client_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`,
		clientID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.DebtPayment
	for rows.Next() {
		var p model.DebtPayment
		if err := rows.Scan(&p.ID, &p.ClientID, &p.OrderID, &p.CustomerName,
			&p.Amount, &p.AmountUSD, &p.PaymentMethod, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetVendorsByClient returns a merchant's active vendors.
func (db *DB) GetVendorsByClient(ctx context.Context, clientID int64) ([]model.Vendor, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, name, COALESCE(phone, ''), commission_percentage, is_active
		FROM vendors
		WHERE client_id = ? AND is_active = 1
		ORDER BY name`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []model.Vendor
	for rows.Next() {
		var v model.Vendor
		if err := rows.Scan(&v.ID, &v.ClientID, &v.Name, &v.Phone,
			&v.CommissionPercentage, &v.IsActive); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}
