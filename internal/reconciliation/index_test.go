package reconciliation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfact/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func invoice(date time.Time, number, client, contract string, amt string) models.Invoice {
	inv := models.Invoice{Date: date, InvoiceNumber: number, Client: client, ContractID: contract, Currency: "EUR"}
	if amt != "" {
		inv.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amt))
	}
	return inv
}

func TestBuildIndexLatestDateWins(t *testing.T) {
	older := invoice(day(2024, 1, 10), "VS-100", "Acme", "C-1", "10")
	newer := invoice(day(2024, 2, 10), "VS 100", "Beta", "C-2", "20")

	for _, order := range [][]models.Invoice{{older, newer}, {newer, older}} {
		idx := BuildIndex(order)

		e, ok := idx.LookupExact("VS100")
		require.True(t, ok)
		assert.Equal(t, "Beta", e.Client)
		assert.Equal(t, "C-2", e.ContractID)

		e, ok = idx.LookupDigits("100")
		require.True(t, ok)
		assert.Equal(t, "C-2", e.ContractID)

		assert.Equal(t, 1, idx.Len())
		assert.Equal(t, 2, idx.CollisionCount())
		assert.Equal(t, 2, idx.ConflictCount())
	}
}

func TestBuildIndexSameDateTieIsOrderIndependent(t *testing.T) {
	a := invoice(day(2024, 3, 1), "VS-1", "Acme", "C-1", "1")
	b := invoice(day(2024, 3, 1), "VS-1", "Acme", "C-9", "1")

	first := BuildIndex([]models.Invoice{a, b})
	second := BuildIndex([]models.Invoice{b, a})

	e1, _ := first.LookupExact("VS1")
	e2, _ := second.LookupExact("VS1")
	assert.Equal(t, e1, e2)
	assert.Equal(t, "C-9", e1.ContractID)
}

func TestBuildIndexSameContractIsNotConflict(t *testing.T) {
	idx := BuildIndex([]models.Invoice{
		invoice(day(2024, 1, 1), "VS-5", "Acme", "C-1", "1"),
		invoice(day(2024, 1, 2), "vs-5", "ACME", "c-1", "1"),
	})

	assert.Equal(t, 2, idx.CollisionCount())
	assert.Equal(t, 0, idx.ConflictCount())
	for _, c := range idx.Collisions() {
		assert.Equal(t, "vs-5", c.Kept.InvoiceNumber)
		assert.Equal(t, "VS-5", c.Replaced.InvoiceNumber)
	}
}

func TestBuildIndexSkipsEmptyKeys(t *testing.T) {
	idx := BuildIndex([]models.Invoice{
		invoice(day(2024, 1, 1), "", "Acme", "C-1", "1"),
		invoice(day(2024, 1, 1), "ABC", "Acme", "C-1", "1"),
	})

	assert.Equal(t, 1, idx.Len())
	_, ok := idx.LookupExact("")
	assert.False(t, ok)
	_, ok = idx.LookupDigits("")
	assert.False(t, ok)
	assert.Zero(t, idx.CollisionCount())
}
