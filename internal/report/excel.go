package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter builds a multi-sheet workbook row by row.
type ExcelWriter interface {
	AddSheet(name string) error
	WriteHeader(columns []string) error
	WriteRow(row []interface{}) error
	Save(w io.Writer) error
	Close() error
}

// Column widths follow the widest cell written, clamped so one long note
// cannot blow a column out to screen width.
const (
	minColWidth = 10
	maxColWidth = 42
)

type xlsxWriter struct {
	file        *excelize.File
	sheet       string
	row         int
	widths      []float64
	headerStyle int
}

// NewExcelWriter returns an excelize-backed workbook writer. Headers are bold
// on a grey fill and stay pinned while scrolling.
func NewExcelWriter() ExcelWriter {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EFEFEF"}},
	})
	if err != nil {
		style = 0
	}
	return &xlsxWriter{file: f, headerStyle: style}
}

// AddSheet starts a new sheet and resets the row cursor and width tracking.
func (w *xlsxWriter) AddSheet(name string) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}

	w.flushWidths()

	if w.sheet == "" {
		// First sheet reuses the default one.
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename default sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.sheet = name
	w.row = 1
	w.widths = nil
	return nil
}

// WriteHeader writes the styled header row and freezes it in place.
func (w *xlsxWriter) WriteHeader(columns []string) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}

	cells := make([]interface{}, len(columns))
	for i, col := range columns {
		cells[i] = col
	}
	if err := w.writeCells(cells); err != nil {
		return err
	}

	if w.headerStyle != 0 && len(columns) > 0 {
		end, err := excelize.CoordinatesToCellName(len(columns), 1)
		if err == nil {
			_ = w.file.SetCellStyle(w.sheet, "A1", end, w.headerStyle)
		}
	}
	return w.file.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteRow writes one data row on the current sheet.
func (w *xlsxWriter) WriteRow(row []interface{}) error {
	if w.sheet == "" {
		return fmt.Errorf("no active sheet")
	}
	return w.writeCells(row)
}

func (w *xlsxWriter) writeCells(cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.sheet, cell, &cells); err != nil {
		return err
	}

	for i, v := range cells {
		for len(w.widths) <= i {
			w.widths = append(w.widths, minColWidth)
		}
		if n := float64(len(fmt.Sprint(v))) + 2; n > w.widths[i] {
			w.widths[i] = n
		}
	}
	w.row++
	return nil
}

// flushWidths applies the tracked widths to the sheet being left.
func (w *xlsxWriter) flushWidths() {
	if w.sheet == "" {
		return
	}
	for i, width := range w.widths {
		if width > maxColWidth {
			width = maxColWidth
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = w.file.SetColWidth(w.sheet, col, col, width)
	}
}

// Save sizes the last sheet's columns and serializes the workbook.
func (w *xlsxWriter) Save(dst io.Writer) error {
	w.flushWidths()
	return w.file.Write(dst)
}

// Close releases workbook resources.
func (w *xlsxWriter) Close() error {
	return w.file.Close()
}
