package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashbox/internal/model"
)

type fakeStore struct {
	orders       []model.Order
	payments     []model.Payment
	expenses     []model.Expense
	movements    []model.CashMovement
	debtPayments []model.DebtPayment
	vendors      []model.Vendor

	savedReport    *model.DailyReport
	savedGenerated *model.GeneratedReport
}

func (f *fakeStore) GetOrdersByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Order, error) {
	return f.orders, nil
}

func (f *fakeStore) GetPaymentsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Payment, error) {
	return f.payments, nil
}

func (f *fakeStore) GetExpensesByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.Expense, error) {
	return f.expenses, nil
}

func (f *fakeStore) GetCashMovementsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.CashMovement, error) {
	return f.movements, nil
}

func (f *fakeStore) GetDebtPaymentsByDateRange(ctx context.Context, clientID int64, from, to time.Time) ([]model.DebtPayment, error) {
	return f.debtPayments, nil
}

func (f *fakeStore) GetVendorsByClient(ctx context.Context, clientID int64) ([]model.Vendor, error) {
	return f.vendors, nil
}

func (f *fakeStore) CreateDailyReport(ctx context.Context, r *model.DailyReport) error {
	r.ID = 42
	cp := *r
	f.savedReport = &cp
	return nil
}

func (f *fakeStore) CreateGeneratedReport(ctx context.Context, g *model.GeneratedReport) error {
	g.ID = 7
	cp := *g
	f.savedGenerated = &cp
	return nil
}

type capturedDoc struct {
	fileName string
	data     []byte
	caption  string
}

type fakeSender struct {
	docs []capturedDoc
}

func (f *fakeSender) SendDocument(ctx context.Context, clientID int64, fileName string, data []byte, caption string) error {
	f.docs = append(f.docs, capturedDoc{fileName: fileName, data: data, caption: caption})
	return nil
}

func day(hour int) time.Time {
	return time.Date(2024, 1, 8, hour, 0, 0, 0, time.UTC)
}

func TestGenerateDailyTotals(t *testing.T) {
	store := &fakeStore{
		payments: []model.Payment{
			{ID: 1, OrderID: 1, AmountUSD: "100.50", CreatedAt: day(10)},
			{ID: 2, OrderID: 2, AmountUSD: "49.50", CreatedAt: day(12)},
		},
		expenses: []model.Expense{
			{ID: 1, AmountUSD: "30.00", Description: "supplies", CreatedAt: day(11)},
		},
		debtPayments: []model.DebtPayment{
			{ID: 1, AmountUSD: "20.00", CreatedAt: day(13)},
		},
		movements: []model.CashMovement{
			{ID: 1, Type: "in", AmountUSD: "100.50", CreatedAt: day(10)},
			{ID: 2, Type: "out", AmountUSD: "30.00", CreatedAt: day(11)},
		},
	}

	svc := NewService(store, nil, nil, zerolog.Nop())
	rep, err := svc.GenerateDaily(context.Background(), 1, day(18))
	require.NoError(t, err)

	assert.Equal(t, "2024-01-08", rep.ReportDate)
	assert.Equal(t, "150.00", rep.TotalIncome)
	assert.Equal(t, "30.00", rep.TotalExpenses)
	assert.Equal(t, "20.00", rep.TotalDebtPayments)
	assert.Equal(t, "120.00", rep.NetProfit)
	assert.Equal(t, 2, rep.TotalMovements)
	assert.True(t, rep.IsAutoGenerated)
	assert.NotEmpty(t, rep.UID)

	require.NotNil(t, store.savedReport)
	assert.Equal(t, int64(42), rep.ID)

	var p payload
	require.NoError(t, json.Unmarshal([]byte(rep.ReportData), &p))
	assert.Equal(t, "automatic_daily_close", p.Metadata.ReportType)
	assert.Equal(t, 2, p.Counts.TotalPayments)
	assert.Equal(t, "150.00", p.FinancialSummary.TotalIncome)
}

func TestGenerateDailyStoresAndSendsWorkbook(t *testing.T) {
	store := &fakeStore{
		payments: []model.Payment{{ID: 1, AmountUSD: "10.00", CreatedAt: day(10)}},
	}
	sender := &fakeSender{}

	svc := NewService(store, sender, nil, zerolog.Nop())
	rep, err := svc.GenerateDaily(context.Background(), 5, day(18))
	require.NoError(t, err)

	require.NotNil(t, store.savedGenerated)
	assert.Equal(t, rep.ID, store.savedGenerated.ReportID)
	assert.Equal(t, "excel", store.savedGenerated.ReportType)
	assert.NotEmpty(t, store.savedGenerated.FileData)
	assert.Contains(t, store.savedGenerated.FileName, "daily_report_2024-01-08")

	require.Len(t, sender.docs, 1)
	assert.Equal(t, store.savedGenerated.FileName, sender.docs[0].fileName)
	assert.Contains(t, sender.docs[0].caption, "2024-01-08")
}

func TestCalculateVendorStatistics(t *testing.T) {
	vendors := []model.Vendor{
		{ID: 1, Name: "Ana", CommissionPercentage: "15"},
		{ID: 2, Name: "Ben", CommissionPercentage: ""},
		{ID: 3, Name: "Idle", CommissionPercentage: "20"},
	}
	orders := []model.Order{
		{ID: 10, VendorID: 1, TotalUSD: "200.00", Status: OrderStatusCompleted, PaymentStatus: PaymentStatusPaid},
		{ID: 11, VendorID: 1, TotalUSD: "100.00", Status: "pending", PaymentStatus: "unpaid"},
		{ID: 12, VendorID: 2, TotalUSD: "50.00", Status: OrderStatusCompleted, PaymentStatus: "unpaid"},
	}
	payments := []model.Payment{
		{ID: 1, OrderID: 10, AmountUSD: "200.00"},
		{ID: 2, OrderID: 99, AmountUSD: "500.00"}, // unrelated order
	}

	stats := CalculateVendorStatistics(orders, payments, vendors)
	require.Len(t, stats, 2, "vendors without orders are dropped")

	ana := stats[0]
	assert.Equal(t, "Ana", ana.VendorName)
	assert.Equal(t, 2, ana.TotalOrders)
	assert.Equal(t, 1, ana.CompletedOrders)
	assert.Equal(t, 1, ana.PaidOrders)
	assert.Equal(t, "300.00", ana.TotalSales)
	assert.Equal(t, "200.00", ana.TotalPaymentsReceived)
	// profit = 300 * 0.3 = 90; commission = 90 * 15% = 13.50
	assert.Equal(t, "90.00", ana.EstimatedProfit)
	assert.Equal(t, "13.50", ana.Commission)
	assert.Equal(t, "150.00", ana.AverageOrderValue)
	assert.Equal(t, "50.0", ana.CompletionRate)
	assert.Equal(t, "50.0", ana.PaymentCollectionRate)

	ben := stats[1]
	// Empty commission falls back to 10%: 50 * 0.3 * 0.10 = 1.50.
	assert.Equal(t, "10.0", ben.CommissionRate)
	assert.Equal(t, "1.50", ben.Commission)
	assert.Equal(t, "100.0", ben.CompletionRate)
	assert.Equal(t, "0.0", ben.PaymentCollectionRate)
}

func TestBuildWorkbookProducesFile(t *testing.T) {
	p := &payload{
		Metadata:         payloadMetadata{ReportDate: "2024-01-08", ClientID: 1},
		FinancialSummary: financialSummary{TotalIncome: "10.00", NetProfit: "10.00"},
		Orders: []model.Order{
			{OrderNumber: "A-1", CustomerName: "C", TotalUSD: "10.00", CreatedAt: day(10)},
		},
		VendorPerformance: []VendorStat{{VendorName: "Ana", TotalOrders: 1}},
	}

	data, err := buildWorkbook(p)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx files are zip archives.
	assert.Equal(t, byte('P'), data[0])
	assert.Equal(t, byte('K'), data[1])
}
