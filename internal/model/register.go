package model

import "time"

// CashRegister is the daily financial-state object the automation opens and
// closes. At most one register exists per merchant per calendar date. The
// automation only flips IsOpen and stamps timestamps; balances belong to the
// POS flows.
type CashRegister struct {
	ID         int64      `json:"id"`
	ClientID   int64      `json:"client_id"`
	Date       string     `json:"date"` // YYYY-MM-DD, merchant-local
	InitialUSD string     `json:"initial_usd"`
	InitialARS string     `json:"initial_ars"`
	CurrentUSD string     `json:"current_usd"`
	CurrentARS string     `json:"current_ars"`
	DailySales string     `json:"daily_sales"`
	IsOpen     bool       `json:"is_open"`
	IsActive   bool       `json:"is_active"`
	OpenedAt   time.Time  `json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	ReopenedAt *time.Time `json:"reopened_at,omitempty"`
}

// NewCashRegister returns a zero-balance open register for the given local date.
func NewCashRegister(clientID int64, date string, now time.Time) *CashRegister {
	return &CashRegister{
		ClientID:   clientID,
		Date:       date,
		InitialUSD: "0.00",
		InitialARS: "0.00",
		CurrentUSD: "0.00",
		CurrentARS: "0.00",
		DailySales: "0.00",
		IsOpen:     true,
		IsActive:   true,
		OpenedAt:   now,
	}
}

// RegisterStateUpdate carries the only register fields the automation may
// touch: the open flag and its transition timestamps.
type RegisterStateUpdate struct {
	IsOpen     bool
	ClosedAt   *time.Time
	ReopenedAt *time.Time
}

// DailyReport is the persisted end-of-day aggregation produced on auto-close.
type DailyReport struct {
	ID                int64     `json:"id"`
	UID               string    `json:"uid"` // public reference used in filenames and notifications
	ClientID          int64     `json:"client_id"`
	ReportDate        string    `json:"report_date"` // YYYY-MM-DD
	TotalIncome       string    `json:"total_income"`
	TotalExpenses     string    `json:"total_expenses"`
	TotalDebtPayments string    `json:"total_debt_payments"`
	NetProfit         string    `json:"net_profit"`
	VendorCommissions string    `json:"vendor_commissions"`
	TotalMovements    int       `json:"total_movements"`
	ReportData        string    `json:"report_data"` // JSON payload, full breakdown
	IsAutoGenerated   bool      `json:"is_auto_generated"`
	CreatedAt         time.Time `json:"created_at"`
}

// GeneratedReport is a stored export file (the Excel workbook) tied to a report.
type GeneratedReport struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	ReportID        int64     `json:"report_id"`
	FileName        string    `json:"file_name"`
	ReportType      string    `json:"report_type"` // "excel"
	FileData        []byte    `json:"-"`
	ReportDate      string    `json:"report_date"`
	IsAutoGenerated bool      `json:"is_auto_generated"`
	CreatedAt       time.Time `json:"created_at"`
}
