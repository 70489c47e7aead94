package sheets

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"cashbox/internal/model"
)

// Config holds the spreadsheet mirror settings.
type Config struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
}

var summaryHeader = []interface{}{
	"Date", "Report UID", "Client", "Income", "Expenses",
	"Debt payments", "Net profit", "Commissions", "Movements",
}

// SheetsService mirrors daily report summaries into a Google spreadsheet kept
// for accountants. One row per report; everything here is an out-of-band copy
// of data already persisted, so callers treat failures as non-fatal.
type SheetsService struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        zerolog.Logger

	mu sync.Mutex
	// rowCache remembers which spreadsheet row a report landed on, so a
	// re-generated report updates its row instead of appending a duplicate.
	rowCache map[int64]int
}

// New authenticates with a service account and returns the mirror.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*SheetsService, error) {
	raw, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Reports"
	}

	return &SheetsService{
		srv:           srv,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger.With().Str("component", "sheets").Logger(),
		rowCache:      make(map[int64]int),
	}, nil
}

// AppendDailySummary writes one summary row for a finished report. A report
// already mirrored in this process updates its existing row.
func (s *SheetsService) AppendDailySummary(ctx context.Context, report *model.DailyReport) error {
	values := reportRowValues(report)

	if row, ok := s.getCachedRow(report.ID); ok {
		rangeRef := fmt.Sprintf("%s!A%d", s.sheetName, row)
		_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rangeRef,
			&sheets.ValueRange{Values: [][]interface{}{values}}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("update summary row %d: %w", row, err)
		}
		return nil
	}

	resp, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName+"!A:I",
		&sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append summary row: %w", err)
	}

	if resp.Updates != nil {
		if row, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(report.ID, row)
		}
	}

	s.logger.Info().
		Int64("client_id", report.ClientID).
		Str("report_uid", report.UID).
		Msg("report summary mirrored to spreadsheet")
	return nil
}

// EnsureHeader writes the header row when the sheet is empty.
func (s *SheetsService) EnsureHeader(ctx context.Context) error {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1:I1").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1",
		&sheets.ValueRange{Values: [][]interface{}{summaryHeader}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	return nil
}

func reportRowValues(r *model.DailyReport) []interface{} {
	return []interface{}{
		r.ReportDate,
		r.UID,
		r.ClientID,
		r.TotalIncome,
		r.TotalExpenses,
		r.TotalDebtPayments,
		r.NetProfit,
		r.VendorCommissions,
		r.TotalMovements,
	}
}

// rowFromRange extracts the row number from an A1 range like "Reports!A12:I12".
func rowFromRange(a1 string) (int, bool) {
	idx := strings.LastIndex(a1, "!A")
	if idx < 0 {
		return 0, false
	}
	rest := a1[idx+2:]
	if colon := strings.Index(rest, ":"); colon >= 0 {
		rest = rest[:colon]
	}
	row, err := strconv.Atoi(rest)
	if err != nil || row <= 0 {
		return 0, false
	}
	return row, true
}

func (s *SheetsService) getCachedRow(reportID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rowCache[reportID]
	return row, ok
}

func (s *SheetsService) setCachedRow(reportID int64, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache[reportID] = row
}

// ClearCache drops the row cache, forcing appends for future reports.
func (s *SheetsService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache = make(map[int64]int)
}
