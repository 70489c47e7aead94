package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeTableSource struct {
	order   []string
	columns map[string][]string
	rows    map[string][]map[string]interface{}
	failOn  string
}

func (f *fakeTableSource) GetTableNames(ctx context.Context) ([]string, error) {
	return f.order, nil
}

func (f *fakeTableSource) GetTableData(ctx context.Context, table string) ([]map[string]interface{}, []string, error) {
	if table == f.failOn {
		return nil, nil, errors.New("table locked")
	}
	return f.rows[table], f.columns[table], nil
}

func TestExportTables(t *testing.T) {
	src := &fakeTableSource{
		order: []string{"clients", "daily_reports"},
		columns: map[string][]string{
			"clients":       {"id", "name"},
			"daily_reports": {"id", "uid", "net_profit"},
		},
		rows: map[string][]map[string]interface{}{
			"clients": {
				{"id": int64(1), "name": "Rosa"},
				{"id": int64(2), "name": "Marco"},
			},
			"daily_reports": nil,
		},
	}

	e := NewExporter(src, zerolog.Nop())
	data, err := e.ExportTables(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"clients", "daily_reports"}, f.GetSheetList())

	name, err := f.GetCellValue("clients", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Rosa", name)

	header, err := f.GetCellValue("daily_reports", "C1")
	require.NoError(t, err)
	assert.Equal(t, "net_profit", header)
}

func TestExportTablesSourceError(t *testing.T) {
	src := &fakeTableSource{
		order:   []string{"clients"},
		failOn:  "clients",
		columns: map[string][]string{},
	}

	e := NewExporter(src, zerolog.Nop())
	_, err := e.ExportTables(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clients")
}
