// Package report lays a reconciliation report out as tables for export and
// for the terminal.
package report

import (
	"planfact/internal/amount"
	"planfact/pkg/models"
	"planfact/pkg/services"
)

// Sheet names used by every exporter.
const (
	SheetBalances  = "Balances"
	SheetUnmatched = "Unmatched"
	SheetIssues    = "Issues"
)

// TotalLabel marks the totals row of the balances table.
const TotalLabel = "TOTAL"

const dateLayout = "2006-01-02"

// Table is one exported sheet. Money cells hold float64 values already
// truncated to two places; dates are ISO strings.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

var (
	balanceHeaders = []string{
		"Client", "Contract", "Planned", "Invoiced", "Credited", "Actual",
		"Remaining", "Utilization %", "Invoices", "Credit notes",
	}
	unmatchedHeaders = []string{
		"Date", "Credit note", "Client", "Notes", "Reference", "Strategy", "Status", "Amount",
	}
	issueHeaders = []string{
		"Document", "Number", "Client", "Date", "Row", "Reason",
	}
)

// Tables returns the Balances, Unmatched and Issues tables of r, in that
// order. The balances table ends with a totals row when it has any rows.
func Tables(r *services.Report) []Table {
	balances := Table{Name: SheetBalances, Headers: balanceHeaders}
	for _, b := range r.Balances {
		balances.Rows = append(balances.Rows, balanceValues(b))
	}
	if len(r.Balances) > 0 {
		totals := r.Totals
		totals.Client = TotalLabel
		balances.Rows = append(balances.Rows, balanceValues(totals))
	}

	unmatched := Table{Name: SheetUnmatched, Headers: unmatchedHeaders}
	for _, u := range r.Unmatched {
		var amt interface{} = ""
		if u.Amount.Valid {
			amt = amount.Float(u.Amount.Decimal)
		}
		unmatched.Rows = append(unmatched.Rows, []interface{}{
			u.Date.Format(dateLayout), u.CreditNumber, u.Client, u.Notes,
			u.Reference, u.Strategy, u.Status, amt,
		})
	}

	issues := Table{Name: SheetIssues, Headers: issueHeaders}
	for _, i := range r.Issues {
		issues.Rows = append(issues.Rows, []interface{}{
			i.Document, i.Number, i.Client, i.Date.Format(dateLayout), i.Row, i.Reason,
		})
	}

	return []Table{balances, unmatched, issues}
}

func balanceValues(b models.ContractBalance) []interface{} {
	return []interface{}{
		b.Client,
		b.ContractID,
		amount.Float(b.Planned),
		amount.Float(b.Invoiced),
		amount.Float(b.Credited),
		amount.Float(b.Actual),
		amount.Float(b.Remaining),
		amount.Float(b.UtilizationPct),
		b.InvoiceCount,
		b.CreditCount,
	}
}
