package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is one issued document row as delivered by ingestion.
type Invoice struct {
	Date          time.Time           // Issue date
	InvoiceNumber string              // Human-readable invoice number, e.g. "VS-241951/1"
	Client        string              // Client name as typed in the source sheet
	ContractID    string              // Contract identifier, may be empty
	Notes         string              // Free-text notes
	Amount        decimal.NullDecimal // Gross amount incl. VAT; not Valid when the cell could not be parsed
	Currency      string              // ISO code, only the configured currency reaches the core
	Row           int                 // 1-based source row, for diagnostics
}

// CreditNote is one credit document row. Its amount always reduces the
// invoiced total regardless of the sign it was entered with.
type CreditNote struct {
	Date         time.Time
	CreditNumber string
	Client       string
	Notes        string              // Usually carries the reference of the invoice being credited
	Amount       decimal.NullDecimal // Gross amount incl. VAT; not Valid when the cell could not be parsed
	Currency     string
	Row          int
}

// Magnitude returns |Amount| and whether the amount was present.
func (c CreditNote) Magnitude() (decimal.Decimal, bool) {
	if !c.Amount.Valid {
		return decimal.Zero, false
	}
	return c.Amount.Decimal.Abs(), true
}
