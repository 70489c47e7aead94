package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// TableSource provides raw table dumps for the full export.
type TableSource interface {
	GetTableNames(ctx context.Context) ([]string, error)
	GetTableData(ctx context.Context, table string) (rows []map[string]interface{}, columns []string, err error)
}

// Exporter renders every audit table into a single workbook, one sheet per
// table, for the admin download surface.
type Exporter struct {
	src    TableSource
	logger zerolog.Logger
}

func NewExporter(src TableSource, logger zerolog.Logger) *Exporter {
	return &Exporter{
		src:    src,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

// ExportTables dumps all audit tables and returns the workbook bytes.
func (e *Exporter) ExportTables(ctx context.Context) ([]byte, error) {
	names, err := e.src.GetTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	w := NewExcelWriter()
	defer w.Close()

	for _, name := range names {
		rows, columns, err := e.src.GetTableData(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("dump table %s: %w", name, err)
		}

		if err := w.AddSheet(name); err != nil {
			return nil, err
		}
		if err := w.WriteHeader(columns); err != nil {
			return nil, err
		}
		for _, row := range rows {
			values := make([]interface{}, len(columns))
			for i, col := range columns {
				values[i] = row[col]
			}
			if err := w.WriteRow(values); err != nil {
				return nil, err
			}
		}
		e.logger.Debug().Str("table", name).Int("rows", len(rows)).Msg("table exported")
	}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
