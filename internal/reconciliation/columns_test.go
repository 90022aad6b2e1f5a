package reconciliation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvoiceColumnsDefault(t *testing.T) {
	cm, err := ParseInvoiceColumns(DefaultInvoiceColumns)
	require.NoError(t, err)

	assert.Equal(t, 0, cm.Date)
	assert.Equal(t, 1, cm.Number)
	assert.Equal(t, 3, cm.Client)
	assert.Equal(t, 4, cm.Notes)
	assert.Equal(t, 5, cm.Contract)
	assert.Equal(t, 6, cm.Amount)
	assert.Equal(t, 7, cm.Currency)
	assert.False(t, cm.AutoCurrency)
	assert.Equal(t, 6, cm.widest())
}

func TestParseCreditColumns(t *testing.T) {
	cm, err := ParseCreditColumns(" Date = a , number=B, client=D, notes=AA, currency=? ")
	require.NoError(t, err)

	assert.Equal(t, 26, cm.Notes)
	assert.Equal(t, -1, cm.Contract)
	assert.Equal(t, -1, cm.Amount)
	assert.True(t, cm.AutoCurrency)
}

func TestParseColumnsErrors(t *testing.T) {
	tests := []struct {
		name string
		def  string
		fn   func(string) (ColumnMap, error)
	}{
		{"missing equals", "date", ParseInvoiceColumns},
		{"bad letter", "date=1,number=B,client=D,amount=G", ParseInvoiceColumns},
		{"unknown field", "date=A,number=B,client=D,amount=G,vat=K", ParseInvoiceColumns},
		{"invoice amount missing", "date=A,number=B,client=D", ParseInvoiceColumns},
		{"credit notes missing", "date=A,number=B,client=D,amount=G", ParseCreditColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn(tt.def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidColumnMap))
		})
	}
}

func TestDetectCurrencyColumn(t *testing.T) {
	rows := [][]string{
		{"Data", "Nr", "Suma", "Valiuta", "Pastaba"},
		{"2024-01-01", "VS-1", "10", "EUR", ""},
		{"2024-01-02", "VS-2", "11", "eur", "EUR"},
		{"2024-01-03", "VS-3", "12", "USD", ""},
	}

	col, err := detectCurrencyColumn(rows, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 3, col)

	_, err = detectCurrencyColumn(rows, "GBP")
	assert.ErrorIs(t, err, ErrMissingColumn)
}
