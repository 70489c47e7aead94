package model

import "time"

// POS entities consumed by the daily report builder. The automation never
// mutates these; they are written by the sales flows.

type Order struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	VendorID      int64     `json:"vendor_id"`
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	TotalUSD      string    `json:"total_usd"`
	Status        string    `json:"status"`         // "pending", "completed", ...
	PaymentStatus string    `json:"payment_status"` // "unpaid", "paid", ...
	CreatedAt     time.Time `json:"created_at"`
}

type Payment struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	OrderID       int64     `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	Amount        string    `json:"amount"`
	AmountUSD     string    `json:"amount_usd"`
	ExchangeRate  string    `json:"exchange_rate"`
	CreatedAt     time.Time `json:"created_at"`
}

type Expense struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	AmountUSD     string    `json:"amount_usd"`
	PaymentMethod string    `json:"payment_method"`
	Provider      string    `json:"provider"`
	CreatedAt     time.Time `json:"created_at"`
}

type CashMovement struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	Type        string    `json:"type"` // "in" / "out"
	Subtype     string    `json:"subtype"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	AmountUSD   string    `json:"amount_usd"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type DebtPayment struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	OrderID       int64     `json:"order_id"`
	CustomerName  string    `json:"customer_name"`
	Amount        string    `json:"amount"`
	AmountUSD     string    `json:"amount_usd"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

type Vendor struct {
	ID                   int64  `json:"id"`
	ClientID             int64  `json:"client_id"`
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	CommissionPercentage string `json:"commission_percentage"`
	IsActive             bool   `json:"is_active"`
}
