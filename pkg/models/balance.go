package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractBalance is the plan-vs-actual row for one (client, contract).
// All monetary figures are truncated to two decimals after summation.
type ContractBalance struct {
	Client         string
	ContractID     string
	Planned        decimal.Decimal
	Invoiced       decimal.Decimal
	Credited       decimal.Decimal // Non-negative magnitude; subtracted in Actual
	Actual         decimal.Decimal // Invoiced - Credited
	Remaining      decimal.Decimal // Planned - Actual
	UtilizationPct decimal.Decimal // 0 when Planned is 0, else clamped to [0, 999]
	InvoiceCount   int
	CreditCount    int
}

// UnmatchedCreditNote is a diagnostics row for a credit note that could not
// be tied to a contract.
type UnmatchedCreditNote struct {
	Date         time.Time
	CreditNumber string
	Client       string
	Notes        string
	Reference    string // Reference extracted from Notes, empty if none
	Strategy     string // Extraction strategy that produced Reference
	Status       string // no-reference, not-found or no-contract
	Amount       decimal.NullDecimal
}

// DataIssue is a row rejected by the validation gate before aggregation.
type DataIssue struct {
	Document string // "invoice" or "credit-note"
	Number   string
	Client   string
	Date     time.Time
	Row      int
	Reason   string // unparseable-amount or zero-amount
}
