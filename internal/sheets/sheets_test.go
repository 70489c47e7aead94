package sheets

import (
	"testing"

	"cashbox/internal/model"
)

func TestReportRowValues(t *testing.T) {
	report := &model.DailyReport{
		ID:                1,
		UID:               "abc-123",
		ClientID:          7,
		ReportDate:        "2024-01-08",
		TotalIncome:       "150.00",
		TotalExpenses:     "30.00",
		TotalDebtPayments: "20.00",
		NetProfit:         "120.00",
		VendorCommissions: "13.50",
		TotalMovements:    4,
	}

	values := reportRowValues(report)

	expected := []interface{}{
		"2024-01-08",
		"abc-123",
		int64(7),
		"150.00",
		"30.00",
		"20.00",
		"120.00",
		"13.50",
		4,
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
	if len(values) != len(summaryHeader) {
		t.Errorf("Row has %d values but header has %d columns", len(values), len(summaryHeader))
	}
}

func TestRowFromRange(t *testing.T) {
	tests := []struct {
		in      string
		wantRow int
		wantOK  bool
	}{
		{"Reports!A12:I12", 12, true},
		{"Reports!A3", 3, true},
		{"Reports!B2:C2", 0, false},
		{"garbage", 0, false},
		{"Reports!A0", 0, false},
	}

	for _, tt := range tests {
		row, ok := rowFromRange(tt.in)
		if ok != tt.wantOK || row != tt.wantRow {
			t.Errorf("rowFromRange(%q) = %d, %v; want %d, %v", tt.in, row, ok, tt.wantRow, tt.wantOK)
		}
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{rowCache: make(map[int64]int)}

	s.setCachedRow(100, 5)
	row, ok := s.getCachedRow(100)
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	s.ClearCache()
	if _, ok := s.getCachedRow(100); ok {
		t.Errorf("Expected cache to be cleared")
	}
}
