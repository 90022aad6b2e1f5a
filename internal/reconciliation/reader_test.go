package reconciliation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySource serves rows from memory.
type memorySource map[string][][]string

func (m memorySource) ReadRows(_ context.Context, sheet string) ([][]string, error) {
	rows, ok := m[sheet]
	if !ok {
		return nil, errors.New("no such sheet")
	}
	return rows, nil
}

func defaultReaderConfig(t *testing.T) ReaderConfig {
	t.Helper()
	inv, err := ParseInvoiceColumns(DefaultInvoiceColumns)
	require.NoError(t, err)
	cn, err := ParseCreditColumns(DefaultCreditColumns)
	require.NoError(t, err)
	return ReaderConfig{InvoiceSheet: "Invoices", CreditSheet: "Credits", InvoiceColumns: inv, CreditColumns: cn}
}

func TestReadInvoices(t *testing.T) {
	src := memorySource{"Invoices": {
		{"Data", "Nr", "", "Klientas", "Pastaba", "Sutartis", "Suma", "Valiuta"},
		{"2024-01-15", "VS-1", "", " Acme UAB ", "", "K-1", "1\u00a0000,50", "EUR"},
		{"45306", "VS-2", "", "Beta", "", "K-2", "200", ""},
		{"2024-01-17", "VS-3", "", "Gama", "", "K-3", "300", "USD"},
		{"2024-01-18", "VS-4", "", "Delta", "", "", "n/a", "EUR"},
		{"Viso", "", "", "", "", "", "1500", ""},
	}}

	invoices, err := NewDataReader(src, defaultReaderConfig(t)).ReadInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	assert.Equal(t, "VS-1", invoices[0].InvoiceNumber)
	assert.Equal(t, "Acme UAB", invoices[0].Client)
	assert.Equal(t, "K-1", invoices[0].ContractID)
	assert.Equal(t, "1000.5", invoices[0].Amount.Decimal.String())
	assert.Equal(t, day(2024, 1, 15), invoices[0].Date)
	assert.Equal(t, 2, invoices[0].Row)

	// Excel serial 45306 is 2024-01-15; the empty currency cell is EUR.
	assert.Equal(t, day(2024, 1, 15), invoices[1].Date)
	assert.Equal(t, "EUR", invoices[1].Currency)

	// Unparseable amounts are kept for the validation gate.
	assert.Equal(t, "VS-4", invoices[2].InvoiceNumber)
	assert.False(t, invoices[2].Amount.Valid)
}

func TestReadCreditNotesAutoCurrency(t *testing.T) {
	cfg := defaultReaderConfig(t)
	cols, err := ParseCreditColumns("date=A,number=B,client=C,notes=D,currency=?")
	require.NoError(t, err)
	cfg.CreditColumns = cols

	src := memorySource{"Credits": {
		{"2024-02-01", "KR-1", "Acme", "VS-1", "-100,00", "EUR"},
		{"2024-02-02", "KR-2", "Acme", "VS-2", "-50", "EUR"},
		{"2024-02-02", "KR-4", "Acme", "VS-4", "-1", "€"},
		{"2024-02-03", "KR-3", "Acme", "VS-3", "-5", "USD"},
	}}

	notes, err := NewDataReader(src, cfg).ReadCreditNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "-100", notes[0].Amount.Decimal.String())
	assert.Equal(t, "EUR", notes[2].Currency)
	assert.Equal(t, "VS-2", notes[1].Notes)
}

func TestReadStructuralErrors(t *testing.T) {
	cfg := defaultReaderConfig(t)

	t.Run("empty sheet", func(t *testing.T) {
		_, err := NewDataReader(memorySource{"Invoices": {}}, cfg).ReadInvoices(context.Background())
		assert.ErrorIs(t, err, ErrEmptySheet)

		var ierr *IngestError
		require.True(t, errors.As(err, &ierr))
		assert.Equal(t, "Invoices", ierr.Sheet)
	})

	t.Run("sheet too narrow", func(t *testing.T) {
		src := memorySource{"Invoices": {{"2024-01-01", "VS-1", "", "Acme"}}}
		_, err := NewDataReader(src, cfg).ReadInvoices(context.Background())
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("no currency column", func(t *testing.T) {
		cols, err := ParseCreditColumns("date=A,number=B,client=C,notes=D,currency=?")
		require.NoError(t, err)
		cfg := cfg
		cfg.CreditColumns = cols

		src := memorySource{"Credits": {{"2024-02-01", "KR-1", "Acme", "VS-1", "-1", "USD"}}}
		_, err = NewDataReader(src, cfg).ReadCreditNotes(context.Background())
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("source failure", func(t *testing.T) {
		_, err := NewDataReader(memorySource{}, cfg).ReadCreditNotes(context.Background())
		assert.Error(t, err)
	})
}

func TestParseDate(t *testing.T) {
	valid := map[string]string{
		"2024-03-05":          "2024-03-05",
		"2024-03-05 13:45:00": "2024-03-05",
		"2024.03.05":          "2024-03-05",
		"05.03.2024":          "2024-03-05",
		"03-05-24":            "2024-03-05",
		"3/5/2024":            "2024-03-05",
		"45356":               "2024-03-05",
	}
	for raw, want := range valid {
		d, err := parseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, d.Format("2006-01-02"), raw)
	}

	for _, raw := range []string{"", "Data", "2024", "12345", "99999"} {
		_, err := parseDate(raw)
		assert.Error(t, err, raw)
	}
}
