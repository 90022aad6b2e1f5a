package reconciliation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"planfact/internal/amount"
	"planfact/internal/logger"
	"planfact/pkg/models"
	"planfact/pkg/services"
)

// ReaderConfig describes where and how records are laid out.
type ReaderConfig struct {
	InvoiceSheet   string
	CreditSheet    string
	InvoiceColumns ColumnMap
	CreditColumns  ColumnMap
	Currency       string // Only rows in this currency are kept; empty cells count as this currency
}

// DataReader turns raw sheet rows into validated records. It is the
// ingestion boundary: the core never looks at columns.
type DataReader struct {
	source services.RowSource
	cfg    ReaderConfig
	log    zerolog.Logger
}

// NewDataReader creates a data reader over any row source.
func NewDataReader(source services.RowSource, cfg ReaderConfig) *DataReader {
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	return &DataReader{
		source: source,
		cfg:    cfg,
		log:    logger.WithComponent("reconciliation-reader"),
	}
}

// readStats counts why rows did not become records.
type readStats struct {
	rows          int
	parsed        int
	badDate       int
	otherCurrency int
	badAmount     int
}

// ReadInvoices reads the invoice sheet.
func (dr *DataReader) ReadInvoices(ctx context.Context) ([]models.Invoice, error) {
	const op = "ReadInvoices"
	sheet := dr.cfg.InvoiceSheet

	dr.log.Info().Str("sheet", sheet).Msg("Reading invoices")

	rows, cols, err := dr.load(ctx, op, sheet, dr.cfg.InvoiceColumns)
	if err != nil {
		return nil, err
	}

	var (
		invoices []models.Invoice
		stats    = readStats{rows: len(rows)}
	)
	for i, row := range rows {
		rowNum := i + 1

		date, ok := dr.rowDate(row, cols, rowNum, sheet, &stats)
		if !ok {
			continue
		}
		currency, ok := dr.rowCurrency(row, cols, rowNum, sheet, &stats)
		if !ok {
			continue
		}

		inv := models.Invoice{
			Date:          date,
			InvoiceNumber: getCell(row, cols.Number),
			Client:        getCell(row, cols.Client),
			ContractID:    getCell(row, cols.Contract),
			Notes:         getCell(row, cols.Notes),
			Amount:        amount.Parse(getCell(row, cols.Amount)),
			Currency:      currency,
			Row:           rowNum,
		}
		if !inv.Amount.Valid {
			stats.badAmount++
		}
		invoices = append(invoices, inv)
		stats.parsed++
	}

	dr.logStats(sheet, "invoices", stats)
	return invoices, nil
}

// ReadCreditNotes reads the credit note sheet.
func (dr *DataReader) ReadCreditNotes(ctx context.Context) ([]models.CreditNote, error) {
	const op = "ReadCreditNotes"
	sheet := dr.cfg.CreditSheet

	dr.log.Info().Str("sheet", sheet).Msg("Reading credit notes")

	rows, cols, err := dr.load(ctx, op, sheet, dr.cfg.CreditColumns)
	if err != nil {
		return nil, err
	}

	var (
		notes []models.CreditNote
		stats = readStats{rows: len(rows)}
	)
	for i, row := range rows {
		rowNum := i + 1

		date, ok := dr.rowDate(row, cols, rowNum, sheet, &stats)
		if !ok {
			continue
		}
		currency, ok := dr.rowCurrency(row, cols, rowNum, sheet, &stats)
		if !ok {
			continue
		}

		cn := models.CreditNote{
			Date:         date,
			CreditNumber: getCell(row, cols.Number),
			Client:       getCell(row, cols.Client),
			Notes:        getCell(row, cols.Notes),
			Amount:       amount.Parse(getCell(row, cols.Amount)),
			Currency:     currency,
			Row:          rowNum,
		}
		if !cn.Amount.Valid {
			stats.badAmount++
		}
		notes = append(notes, cn)
		stats.parsed++
	}

	dr.logStats(sheet, "credit_notes", stats)
	return notes, nil
}

// load fetches the sheet and resolves the column map against its content.
// Structural problems fail here so that nothing downstream guesses columns.
func (dr *DataReader) load(ctx context.Context, op, sheet string, cols ColumnMap) ([][]string, ColumnMap, error) {
	rows, err := dr.source.ReadRows(ctx, sheet)
	if err != nil {
		return nil, cols, NewIngestError(op, sheet, 0, err)
	}
	if len(rows) == 0 {
		return nil, cols, NewIngestError(op, sheet, 0, ErrEmptySheet)
	}

	if cols.AutoCurrency {
		col, err := detectCurrencyColumn(rows, dr.cfg.Currency)
		if err != nil {
			return nil, cols, NewIngestError(op, sheet, 0, err)
		}
		cols.Currency = col
		if cols.Amount < 0 {
			if col == 0 {
				return nil, cols, NewIngestError(op, sheet, 0, fmt.Errorf("no column left of currency column A: %w", ErrMissingColumn))
			}
			cols.Amount = col - 1
		}
		dr.log.Debug().
			Str("sheet", sheet).
			Str("currency_column", columnName(cols.Currency)).
			Str("amount_column", columnName(cols.Amount)).
			Msg("Detected currency column")
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if need := cols.widest(); need >= width {
		return nil, cols, NewIngestError(op, sheet, 0,
			fmt.Errorf("column %s beyond sheet width %d: %w", columnName(need), width, ErrMissingColumn))
	}

	return rows, cols, nil
}

func (dr *DataReader) rowDate(row []string, cols ColumnMap, rowNum int, sheet string, stats *readStats) (time.Time, bool) {
	raw := getCell(row, cols.Date)
	date, err := parseDate(raw)
	if err != nil {
		// Header and subtotal rows land here too.
		dr.log.Debug().
			Str("sheet", sheet).
			Int("row", rowNum).
			Str("date_str", raw).
			Msg("Skipping row without a parseable date")
		stats.badDate++
		return time.Time{}, false
	}
	return date, true
}

func (dr *DataReader) rowCurrency(row []string, cols ColumnMap, rowNum int, sheet string, stats *readStats) (string, bool) {
	currency := normalizeCurrency(getCell(row, cols.Currency))
	if currency == "" {
		return dr.cfg.Currency, true
	}
	if !strings.EqualFold(currency, dr.cfg.Currency) {
		dr.log.Debug().
			Str("sheet", sheet).
			Int("row", rowNum).
			Str("currency", currency).
			Msg("Skipping row in other currency")
		stats.otherCurrency++
		return "", false
	}
	return currency, true
}

// normalizeCurrency maps symbols and spelled-out names to ISO codes.
func normalizeCurrency(currency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	switch normalized {
	case "€", "EURO", "EUROS", "EUR":
		return "EUR"
	case "$", "DOLLAR", "DOLLARS", "USD", "US$":
		return "USD"
	case "£", "POUND", "POUNDS", "GBP":
		return "GBP"
	}
	return normalized
}

func (dr *DataReader) logStats(sheet, what string, stats readStats) {
	dr.log.Info().
		Str("sheet", sheet).
		Int("total_rows", stats.rows).
		Int("parsed_"+what, stats.parsed).
		Int("skipped_bad_date", stats.badDate).
		Int("skipped_other_currency", stats.otherCurrency).
		Int("unparseable_amounts", stats.badAmount).
		Msg("Sheet read successfully")

	if stats.badAmount > 0 {
		dr.log.Warn().
			Str("sheet", sheet).
			Int("rows", stats.badAmount).
			Msg("Rows with unparseable amounts kept for validation")
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"01-02-06", // excelize default short date
	"1/2/06",
	"1/2/2006",
}

// Excel serials accepted as dates: 1954-10-03 .. 2119-01-10. Keeps stray
// integers such as years or invoice counters from turning into dates.
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

// parseDate accepts the textual layouts produced by spreadsheet exports and
// raw Excel serial numbers.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return truncateDay(d), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		d, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return truncateDay(d), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func columnName(col int) string {
	if col < 0 {
		return "-"
	}
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return strconv.Itoa(col)
	}
	return name
}

// getCell safely extracts a trimmed cell value; missing cells read as "".
func getCell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
