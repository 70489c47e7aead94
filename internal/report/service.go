package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cashbox/internal/model"
)

// Order/payment status values counted in vendor performance.
const (
	OrderStatusCompleted = "completed"
	PaymentStatusPaid    = "paid"
)

// estimatedProfitMargin is the share of sales treated as profit when
// computing vendor commissions.
const estimatedProfitMargin = 0.3

// Store is the data access the report builder needs.
type Store interface {
	GetOrdersByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Order, error)
	GetPaymentsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Payment, error)
	GetExpensesByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Expense, error)
	GetCashMovementsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.CashMovement, error)
	GetDebtPaymentsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.DebtPayment, error)
	GetVendorsByClient(ctx context.Context, clientID int64) ([]model.Vendor, error)
	CreateDailyReport(ctx context.Context, r *model.DailyReport) error
	CreateGeneratedReport(ctx context.Context, g *model.GeneratedReport) error
}

// DocumentSender delivers a generated workbook to the merchant's manager chat.
type DocumentSender interface {
	SendDocument(ctx context.Context, clientID int64, fileName string, data []byte, caption string) error
}

// Mirror receives a one-row summary of each finished report, e.g. a
// spreadsheet kept outside the system for accountants.
type Mirror interface {
	AppendDailySummary(ctx context.Context, report *model.DailyReport) error
}

// Service builds the end-of-day report: aggregates the day's POS activity,
// persists the summary, renders the Excel workbook and hands it off. Only the
// persisted DailyReport is load-bearing; workbook, delivery and mirror are
// best effort.
type Service struct {
	store  Store
	sender DocumentSender
	mirror Mirror
	logger zerolog.Logger

	now func() time.Time
}

// NewService creates a report service. sender and mirror may be nil.
func NewService(store Store, sender DocumentSender, mirror Mirror, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		sender: sender,
		mirror: mirror,
		logger: logger.With().Str("component", "report").Logger(),
		now:    time.Now,
	}
}

// VendorStat is one vendor's activity for the day. Vendors without orders are
// omitted from reports.
type VendorStat struct {
	VendorID              int64  `json:"vendor_id"`
	VendorName            string `json:"vendor_name"`
	VendorPhone           string `json:"vendor_phone"`
	CommissionRate        string `json:"commission_rate"`
	TotalOrders           int    `json:"total_orders"`
	CompletedOrders       int    `json:"completed_orders"`
	PaidOrders            int    `json:"paid_orders"`
	TotalSales            string `json:"total_sales"`
	TotalPaymentsReceived string `json:"total_payments_received"`
	EstimatedProfit       string `json:"estimated_profit"`
	Commission            string `json:"commission"`
	AverageOrderValue     string `json:"average_order_value"`
	CompletionRate        string `json:"completion_rate"`
	PaymentCollectionRate string `json:"payment_collection_rate"`
}

type payloadMetadata struct {
	ReportType  string `json:"report_type"`
	GeneratedAt string `json:"generated_at"`
	ReportDate  string `json:"report_date"`
	ClientID    int64  `json:"client_id"`
}

type financialSummary struct {
	TotalIncome            string `json:"total_income"`
	TotalExpenses          string `json:"total_expenses"`
	TotalDebtPayments      string `json:"total_debt_payments"`
	NetProfit              string `json:"net_profit"`
	TotalVendorCommissions string `json:"total_vendor_commissions"`
}

type payloadCounts struct {
	TotalOrders        int `json:"total_orders"`
	TotalPayments      int `json:"total_payments"`
	TotalExpenses      int `json:"total_expenses"`
	TotalCashMovements int `json:"total_cash_movements"`
	TotalDebtPayments  int `json:"total_debt_payments"`
	ActiveVendors      int `json:"active_vendors"`
}

// payload is the full JSON breakdown stored in DailyReport.ReportData.
type payload struct {
	Metadata          payloadMetadata      `json:"metadata"`
	FinancialSummary  financialSummary     `json:"financial_summary"`
	Orders            []model.Order        `json:"orders"`
	Payments          []model.Payment      `json:"payments"`
	Expenses          []model.Expense      `json:"expenses"`
	DebtPayments      []model.DebtPayment  `json:"debt_payments"`
	CashMovements     []model.CashMovement `json:"cash_movements"`
	VendorPerformance []VendorStat         `json:"vendor_performance"`
	Counts            payloadCounts        `json:"counts"`
}

// GenerateDaily builds and persists the report for the merchant's local day
// containing localDay.
func (s *Service) GenerateDaily(ctx context.Context, clientID int64, localDay time.Time) (*model.DailyReport, error) {
	dayStart := time.Date(localDay.Year(), localDay.Month(), localDay.Day(), 0, 0, 0, 0, localDay.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
	date := localDay.Format("2006-01-02")

	orders, err := s.store.GetOrdersByDateRange(ctx, clientID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	payments, err := s.store.GetPaymentsByDateRange(ctx, clientID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	expenses, err := s.store.GetExpensesByDateRange(ctx, clientID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	movements, err := s.store.GetCashMovementsByDateRange(ctx, clientID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load cash movements: %w", err)
	}
	debtPayments, err := s.store.GetDebtPaymentsByDateRange(ctx, clientID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load debt payments: %w", err)
	}
	vendors, err := s.store.GetVendorsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}

	vendorStats := CalculateVendorStatistics(orders, payments, vendors)

	totalIncome := sumPayments(payments)
	totalExpenses := sumExpenses(expenses)
	totalDebt := sumDebtPayments(debtPayments)
	netProfit := totalIncome - totalExpenses
	var totalCommissions float64
	for _, v := range vendorStats {
		totalCommissions += parseAmount(v.Commission)
	}

	p := payload{
		Metadata: payloadMetadata{
			ReportType:  "automatic_daily_close",
			GeneratedAt: s.now().UTC().Format(time.RFC3339),
			ReportDate:  date,
			ClientID:    clientID,
		},
		FinancialSummary: financialSummary{
			TotalIncome:            money(totalIncome),
			TotalExpenses:          money(totalExpenses),
			TotalDebtPayments:      money(totalDebt),
			NetProfit:              money(netProfit),
			TotalVendorCommissions: money(totalCommissions),
		},
		Orders:            orders,
		Payments:          payments,
		Expenses:          expenses,
		DebtPayments:      debtPayments,
		CashMovements:     movements,
		VendorPerformance: vendorStats,
		Counts: payloadCounts{
			TotalOrders:        len(orders),
			TotalPayments:      len(payments),
			TotalExpenses:      len(expenses),
			TotalCashMovements: len(movements),
			TotalDebtPayments:  len(debtPayments),
			ActiveVendors:      len(vendorStats),
		},
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal report payload: %w", err)
	}

	rep := &model.DailyReport{
		UID:               uuid.NewString(),
		ClientID:          clientID,
		ReportDate:        date,
		TotalIncome:       money(totalIncome),
		TotalExpenses:     money(totalExpenses),
		TotalDebtPayments: money(totalDebt),
		NetProfit:         money(netProfit),
		VendorCommissions: money(totalCommissions),
		TotalMovements:    len(movements),
		ReportData:        string(raw),
		IsAutoGenerated:   true,
	}
	if err := s.store.CreateDailyReport(ctx, rep); err != nil {
		return nil, fmt.Errorf("persist daily report: %w", err)
	}

	s.logger.Info().
		Int64("client_id", clientID).
		Str("report_uid", rep.UID).
		Str("date", date).
		Str("net_profit", rep.NetProfit).
		Msg("daily report persisted")

	// Everything below is best effort; the report row above is the record.
	s.exportWorkbook(ctx, rep, &p)
	if s.mirror != nil {
		if err := s.mirror.AppendDailySummary(ctx, rep); err != nil {
			s.logger.Error().Err(err).Int64("client_id", clientID).Msg("report mirror append failed")
		}
	}

	return rep, nil
}

// exportWorkbook renders the Excel file, stores it and sends it out. Failures
// are logged, never propagated.
func (s *Service) exportWorkbook(ctx context.Context, rep *model.DailyReport, p *payload) {
	data, err := buildWorkbook(p)
	if err != nil {
		s.logger.Error().Err(err).Int64("client_id", rep.ClientID).Msg("workbook generation failed")
		return
	}

	fileName := fmt.Sprintf("daily_report_%s_%s.xlsx", rep.ReportDate, rep.UID[:8])
	gen := &model.GeneratedReport{
		ClientID:        rep.ClientID,
		ReportID:        rep.ID,
		FileName:        fileName,
		ReportType:      "excel",
		FileData:        data,
		ReportDate:      rep.ReportDate,
		IsAutoGenerated: true,
	}
	if err := s.store.CreateGeneratedReport(ctx, gen); err != nil {
		s.logger.Error().Err(err).Int64("client_id", rep.ClientID).Msg("workbook store failed")
		return
	}

	if s.sender != nil {
		caption := fmt.Sprintf("Daily report %s: income %s, net profit %s",
			rep.ReportDate, rep.TotalIncome, rep.NetProfit)
		if err := s.sender.SendDocument(ctx, rep.ClientID, fileName, data, caption); err != nil {
			s.logger.Error().Err(err).Int64("client_id", rep.ClientID).Msg("workbook delivery failed")
		}
	}
}

// CalculateVendorStatistics aggregates per-vendor performance for the day.
// Payments are attributed to a vendor through the vendor's orders. Only
// vendors with at least one order are returned.
func CalculateVendorStatistics(orders []model.Order, payments []model.Payment, vendors []model.Vendor) []VendorStat {
	paymentsByOrder := make(map[int64]float64, len(payments))
	for _, p := range payments {
		paymentsByOrder[p.OrderID] += parseAmount(p.AmountUSD)
	}

	var stats []VendorStat
	for _, v := range vendors {
		var totalSales, received float64
		var count, completed, paid int
		for _, o := range orders {
			if o.VendorID != v.ID {
				continue
			}
			count++
			totalSales += parseAmount(o.TotalUSD)
			received += paymentsByOrder[o.ID]
			if o.Status == OrderStatusCompleted {
				completed++
			}
			if o.PaymentStatus == PaymentStatusPaid {
				paid++
			}
		}
		if count == 0 {
			continue
		}

		rate := parseAmount(v.CommissionPercentage)
		if v.CommissionPercentage == "" {
			rate = 10
		}
		profit := totalSales * estimatedProfitMargin
		commission := profit * rate / 100

		stats = append(stats, VendorStat{
			VendorID:              v.ID,
			VendorName:            v.Name,
			VendorPhone:           v.Phone,
			CommissionRate:        strconv.FormatFloat(rate, 'f', 1, 64),
			TotalOrders:           count,
			CompletedOrders:       completed,
			PaidOrders:            paid,
			TotalSales:            money(totalSales),
			TotalPaymentsReceived: money(received),
			EstimatedProfit:       money(profit),
			Commission:            money(commission),
			AverageOrderValue:     money(totalSales / float64(count)),
			CompletionRate:        percent(completed, count),
			PaymentCollectionRate: percent(paid, count),
		})
	}
	return stats
}

// buildWorkbook renders the report payload as a multi-sheet Excel file.
func buildWorkbook(p *payload) ([]byte, error) {
	w := NewExcelWriter()
	defer w.Close()

	if err := w.AddSheet("Summary"); err != nil {
		return nil, err
	}
	summaryRows := [][]interface{}{
		{"Report date", p.Metadata.ReportDate},
		{"Generated at", p.Metadata.GeneratedAt},
		{"Total income", p.FinancialSummary.TotalIncome},
		{"Total expenses", p.FinancialSummary.TotalExpenses},
		{"Debt payments", p.FinancialSummary.TotalDebtPayments},
		{"Net profit", p.FinancialSummary.NetProfit},
		{"Vendor commissions", p.FinancialSummary.TotalVendorCommissions},
		{"Orders", p.Counts.TotalOrders},
		{"Payments", p.Counts.TotalPayments},
		{"Cash movements", p.Counts.TotalCashMovements},
		{"Active vendors", p.Counts.ActiveVendors},
	}
	for _, row := range summaryRows {
		if err := w.WriteRow(row); err != nil {
			return nil, err
		}
	}

	if len(p.VendorPerformance) > 0 {
		if err := w.AddSheet("Vendors"); err != nil {
			return nil, err
		}
		if err := w.WriteHeader([]string{
			"Vendor", "Orders", "Completed", "Paid", "Sales", "Received",
			"Commission", "Rate %", "Completion %", "Collection %",
		}); err != nil {
			return nil, err
		}
		for _, v := range p.VendorPerformance {
			if err := w.WriteRow([]interface{}{
				v.VendorName, v.TotalOrders, v.CompletedOrders, v.PaidOrders,
				v.TotalSales, v.TotalPaymentsReceived,
				v.Commission, v.CommissionRate, v.CompletionRate, v.PaymentCollectionRate,
			}); err != nil {
				return nil, err
			}
		}
	}

	if len(p.Orders) > 0 {
		if err := w.AddSheet("Orders"); err != nil {
			return nil, err
		}
		if err := w.WriteHeader([]string{"Number", "Customer", "Total USD", "Status", "Payment", "Created"}); err != nil {
			return nil, err
		}
		for _, o := range p.Orders {
			if err := w.WriteRow([]interface{}{
				o.OrderNumber, o.CustomerName, o.TotalUSD, o.Status, o.PaymentStatus,
				o.CreatedAt.Format(time.RFC3339),
			}); err != nil {
				return nil, err
			}
		}
	}

	if len(p.Expenses) > 0 {
		if err := w.AddSheet("Expenses"); err != nil {
			return nil, err
		}
		if err := w.WriteHeader([]string{"Description", "Category", "Amount USD", "Method", "Provider"}); err != nil {
			return nil, err
		}
		for _, e := range p.Expenses {
			if err := w.WriteRow([]interface{}{
				e.Description, e.Category, e.AmountUSD, e.PaymentMethod, e.Provider,
			}); err != nil {
				return nil, err
			}
		}
	}

	if len(p.CashMovements) > 0 {
		if err := w.AddSheet("Cash Movements"); err != nil {
			return nil, err
		}
		if err := w.WriteHeader([]string{"Type", "Subtype", "Amount", "Currency", "Amount USD", "Description"}); err != nil {
			return nil, err
		}
		for _, m := range p.CashMovements {
			if err := w.WriteRow([]interface{}{
				m.Type, m.Subtype, m.Amount, m.Currency, m.AmountUSD, m.Description,
			}); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sumPayments(payments []model.Payment) float64 {
	var total float64
	for _, p := range payments {
		total += parseAmount(p.AmountUSD)
	}
	return total
}

func sumExpenses(expenses []model.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += parseAmount(e.AmountUSD)
	}
	return total
}

func sumDebtPayments(payments []model.DebtPayment) float64 {
	var total float64
	for _, p := range payments {
		total += parseAmount(p.AmountUSD)
	}
	return total
}

// parseAmount treats unparsable money strings as zero, matching how the rest
// of the system tolerates sparse POS data.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func percent(part, whole int) string {
	if whole == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(part)/float64(whole)*100, 'f', 1, 64)
}
