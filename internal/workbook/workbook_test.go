package workbook

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"planfact/internal/reconciliation"
	"planfact/internal/report"
	"planfact/pkg/models"
	"planfact/pkg/services"
)

func sourceWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestReaderFeedsDataReader(t *testing.T) {
	buf := sourceWorkbook(t, "Saskaitos", [][]interface{}{
		{"Data", "Nr", "", "Klientas", "Pastaba", "Sutartis", "Suma", "Valiuta"},
		{45306, "VS-1", "", "Acme UAB", "", "K-1", 1234.5, "EUR"},
		{"2024-01-16", "VS-2", "", "Beta", "", "K-2", "99,99", "EUR"},
	})

	wb, err := OpenReader(buf, "invoices.xlsx")
	require.NoError(t, err)
	defer wb.Close()

	cols, err := reconciliation.ParseInvoiceColumns(reconciliation.DefaultInvoiceColumns)
	require.NoError(t, err)

	// The configured sheet name does not exist, so the first sheet is used.
	dr := reconciliation.NewDataReader(wb, reconciliation.ReaderConfig{InvoiceSheet: "Invoices", InvoiceColumns: cols})
	invoices, err := dr.ReadInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	assert.Equal(t, "2024-01-15", invoices[0].Date.Format("2006-01-02"))
	assert.Equal(t, "1234.5", invoices[0].Amount.Decimal.String())
	assert.Equal(t, "99.99", invoices[1].Amount.Decimal.String())
}

func TestRoutes(t *testing.T) {
	inv, err := OpenReader(sourceWorkbook(t, "A", [][]interface{}{{"a"}}), "a.xlsx")
	require.NoError(t, err)
	crn, err := OpenReader(sourceWorkbook(t, "B", [][]interface{}{{"b"}}), "b.xlsx")
	require.NoError(t, err)

	routes := Routes{"Invoices": inv, "Credits": crn}

	rows, err := routes.ReadRows(context.Background(), "Credits")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"b"}}, rows)

	_, err = routes.ReadRows(context.Background(), "Other")
	assert.Error(t, err)
}

func TestWriterRoundTrip(t *testing.T) {
	r := &services.Report{
		Balances: []models.ContractBalance{{
			Client: "Acme UAB", ContractID: "K-1",
			Planned: decimal.NewFromInt(1000), Invoiced: decimal.RequireFromString("800.129"),
			Actual: decimal.RequireFromString("800.129"), Remaining: decimal.RequireFromString("199.871"),
		}},
		Totals: models.ContractBalance{Invoiced: decimal.RequireFromString("800.129")},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewWriter(path).WriteReport(context.Background(), r))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SheetBalances, report.SheetUnmatched, report.SheetIssues}, f.GetSheetList())

	rows, err := f.GetRows(report.SheetBalances)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Client", rows[0][0])
	assert.Equal(t, "800.12", rows[1][3])
	assert.Equal(t, report.TotalLabel, rows[2][0])

	style, err := f.GetCellStyle(report.SheetBalances, "A1")
	require.NoError(t, err)
	s, err := f.GetStyle(style)
	require.NoError(t, err)
	assert.True(t, s.Font.Bold)
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, &services.Report{}))

	wb, err := OpenReader(&buf, "empty.xlsx")
	require.NoError(t, err)
	rows, err := wb.ReadRows(context.Background(), report.SheetIssues)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
