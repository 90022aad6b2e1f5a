package reconciliation

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column field names accepted in a column map definition.
const (
	FieldDate     = "date"
	FieldNumber   = "number"
	FieldClient   = "client"
	FieldNotes    = "notes"
	FieldContract = "contract"
	FieldAmount   = "amount"
	FieldCurrency = "currency"
)

// autoColumn marks the currency column for detection by content.
const autoColumn = "?"

// Default column layouts, as column letters of the source workbooks.
const (
	DefaultInvoiceColumns = "date=A,number=B,client=D,notes=E,contract=F,amount=G,currency=H"
	DefaultCreditColumns  = "date=A,number=B,client=D,notes=E,amount=G,currency=H"
)

var (
	invoiceRequired = []string{FieldDate, FieldNumber, FieldClient, FieldAmount}
	creditRequired  = []string{FieldDate, FieldNumber, FieldClient, FieldNotes, FieldAmount}
)

// ColumnMap maps record fields to 0-based column indexes; -1 means absent.
type ColumnMap struct {
	Date     int
	Number   int
	Client   int
	Notes    int
	Contract int
	Amount   int
	Currency int

	// AutoCurrency asks the reader to find the currency column by content.
	// When Amount is absent it then becomes the column left of the currency.
	AutoCurrency bool

	required []string
}

// ParseInvoiceColumns parses an invoice layout such as DefaultInvoiceColumns.
func ParseInvoiceColumns(def string) (ColumnMap, error) {
	return parseColumnMap(def, invoiceRequired)
}

// ParseCreditColumns parses a credit note layout such as DefaultCreditColumns.
func ParseCreditColumns(def string) (ColumnMap, error) {
	return parseColumnMap(def, creditRequired)
}

func parseColumnMap(def string, required []string) (ColumnMap, error) {
	const op = "parseColumnMap"

	cm := ColumnMap{Date: -1, Number: -1, Client: -1, Notes: -1, Contract: -1, Amount: -1, Currency: -1, required: required}

	for _, part := range strings.Split(def, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, letter, ok := strings.Cut(part, "=")
		if !ok {
			return ColumnMap{}, fmt.Errorf("%s: %q: %w", op, part, ErrInvalidColumnMap)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		letter = strings.ToUpper(strings.TrimSpace(letter))

		if name == FieldCurrency && letter == autoColumn {
			cm.AutoCurrency = true
			continue
		}

		col, err := excelize.ColumnNameToNumber(letter)
		if err != nil {
			return ColumnMap{}, fmt.Errorf("%s: column %q for %s: %w", op, letter, name, ErrInvalidColumnMap)
		}
		if err := cm.set(name, col-1); err != nil {
			return ColumnMap{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	for _, name := range required {
		if cm.index(name) >= 0 {
			continue
		}
		if name == FieldAmount && cm.AutoCurrency {
			continue
		}
		return ColumnMap{}, fmt.Errorf("%s: %s not mapped: %w", op, name, ErrInvalidColumnMap)
	}
	return cm, nil
}

func (cm *ColumnMap) set(name string, col int) error {
	switch name {
	case FieldDate:
		cm.Date = col
	case FieldNumber:
		cm.Number = col
	case FieldClient:
		cm.Client = col
	case FieldNotes:
		cm.Notes = col
	case FieldContract:
		cm.Contract = col
	case FieldAmount:
		cm.Amount = col
	case FieldCurrency:
		cm.Currency = col
	default:
		return fmt.Errorf("unknown field %q: %w", name, ErrInvalidColumnMap)
	}
	return nil
}

func (cm ColumnMap) index(name string) int {
	switch name {
	case FieldDate:
		return cm.Date
	case FieldNumber:
		return cm.Number
	case FieldClient:
		return cm.Client
	case FieldNotes:
		return cm.Notes
	case FieldContract:
		return cm.Contract
	case FieldAmount:
		return cm.Amount
	case FieldCurrency:
		return cm.Currency
	}
	return -1
}

// widest returns the largest index among required columns.
func (cm ColumnMap) widest() int {
	w := -1
	for _, name := range cm.required {
		if i := cm.index(name); i > w {
			w = i
		}
	}
	return w
}

// detectCurrencyColumn returns the column in which code appears most often.
// Ties go to the leftmost column.
func detectCurrencyColumn(rows [][]string, code string) (int, error) {
	counts := make(map[int]int)
	for _, row := range rows {
		for i, cell := range row {
			if strings.EqualFold(strings.TrimSpace(cell), code) {
				counts[i]++
			}
		}
	}

	best, bestCount := -1, 0
	for col, n := range counts {
		if n > bestCount || (n == bestCount && col < best) {
			best, bestCount = col, n
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("no %s column found: %w", code, ErrMissingColumn)
	}
	return best, nil
}
