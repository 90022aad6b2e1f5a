package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"planfact/internal/amount"
	"planfact/internal/balance"
	"planfact/internal/dynamics"
	"planfact/internal/reconciliation"
	"planfact/pkg/models"
	"planfact/pkg/services"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// PrintBalances writes the balances table with locale-formatted amounts.
// Credited is shown with a minus sign.
func PrintBalances(w io.Writer, r *services.Report) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Client\tContract\tPlanned\tInvoiced\tCredited\tActual\tRemaining\tUtil. %\t")
	for _, b := range r.Balances {
		printBalance(tw, b)
	}
	if len(r.Balances) > 0 {
		totals := r.Totals
		totals.Client = TotalLabel
		printBalance(tw, totals)
	}
	return tw.Flush()
}

func printBalance(w io.Writer, b models.ContractBalance) {
	credited := b.Credited.Neg()
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
		b.Client, b.ContractID,
		amount.Format(b.Planned), amount.Format(b.Invoiced), amount.Format(credited),
		amount.Format(b.Actual), amount.Format(b.Remaining), amount.Format(b.UtilizationPct))
}

// PrintUnmatched writes the unmatched credit notes and their total magnitude.
func PrintUnmatched(w io.Writer, r *services.Report) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Date\tCredit note\tClient\tReference\tStatus\tAmount\t")
	total := decimal.Zero
	for _, u := range r.Unmatched {
		amt := ""
		if u.Amount.Valid {
			mag := u.Amount.Decimal.Abs()
			total = total.Add(mag)
			amt = amount.Format(mag.Neg())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			u.Date.Format(dateLayout), u.CreditNumber, u.Client, u.Reference, u.Status, amt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d unmatched credit notes, total %s\n", len(r.Unmatched), amount.Format(total.Neg()))
	return err
}

// PrintIssues writes rows rejected by the amount checks.
func PrintIssues(w io.Writer, r *services.Report) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Document\tNumber\tClient\tDate\tRow\tReason\t")
	for _, i := range r.Issues {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t\n",
			i.Document, i.Number, i.Client, i.Date.Format(dateLayout), i.Row, i.Reason)
	}
	return tw.Flush()
}

// PrintMatched writes every credit note that was tied to a contract.
func PrintMatched(w io.Writer, matched []reconciliation.ReconciledCreditNote) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Date\tCredit note\tReference\tInvoice\tClient\tContract\tBy\tAmount\t")
	for _, rc := range matched {
		amt := ""
		if mag, ok := rc.Note.Magnitude(); ok {
			amt = amount.Format(mag.Neg())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			rc.Note.Date.Format(dateLayout), rc.Note.CreditNumber, rc.Reference.Value,
			rc.InvoiceNumber, rc.Client, rc.ContractID, rc.MatchedBy, amt)
	}
	return tw.Flush()
}

// PrintCounts writes a document count series.
func PrintCounts(w io.Writer, s dynamics.Series) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Period\tInvoices\tCredit notes\tNet\tMoving avg\t")
	for _, p := range s.Periods {
		avg := ""
		if p.MovingAvg.Valid {
			avg = amount.Format(p.MovingAvg.Decimal)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", p.Period, p.Invoices, p.Credits, p.Net, avg)
	}
	fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t\t\n", TotalLabel, s.Totals.Invoices, s.Totals.Credits, s.Totals.Net)
	return tw.Flush()
}

// PrintPlans writes the stored plans.
func PrintPlans(w io.Writer, plans []balance.Plan) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Client\tContract\tPlanned\tUpdated\t")
	for _, p := range plans {
		updated := ""
		if !p.UpdatedAt.IsZero() {
			updated = p.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", p.Client, p.ContractID, amount.Format(p.Planned), updated)
	}
	return tw.Flush()
}
