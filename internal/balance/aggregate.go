package balance

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"planfact/internal/logger"
	"planfact/internal/reconciliation"
	"planfact/pkg/models"
)

// Data quality reasons reported in DataIssue.Reason.
const (
	ReasonUnparseableAmount = "unparseable-amount"
	ReasonZeroAmount        = "zero-amount"
)

// Window is an inclusive date range. A zero bound leaves that side open.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains compares calendar dates only.
func (w Window) Contains(t time.Time) bool {
	d := dateOf(t)
	if !w.From.IsZero() && d.Before(dateOf(w.From)) {
		return false
	}
	if !w.To.IsZero() && d.After(dateOf(w.To)) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterInvoices keeps invoices dated inside w.
func (w Window) FilterInvoices(invoices []models.Invoice) []models.Invoice {
	var out []models.Invoice
	for _, inv := range invoices {
		if w.Contains(inv.Date) {
			out = append(out, inv)
		}
	}
	return out
}

// FilterCreditNotes keeps credit notes dated inside w.
func (w Window) FilterCreditNotes(notes []models.CreditNote) []models.CreditNote {
	var out []models.CreditNote
	for _, cn := range notes {
		if w.Contains(cn.Date) {
			out = append(out, cn)
		}
	}
	return out
}

// Group holds exact, untruncated sums for one contract.
type Group struct {
	Key          ContractKey
	Client       string // Display name: first spelling seen
	ContractID   string
	Invoiced     decimal.Decimal
	Credited     decimal.Decimal // Sum of magnitudes
	InvoiceCount int
	CreditCount  int
}

// Aggregates is the Aggregator's output.
type Aggregates struct {
	Groups         []Group // Ordered by key
	Unmatched      []reconciliation.ReconciledCreditNote
	UnmatchedTotal decimal.Decimal // Sum of magnitudes of unmatched notes with an amount
	Issues         []models.DataIssue
	InvoicedTotal  decimal.Decimal
	CreditedTotal  decimal.Decimal
}

// Aggregator sums invoices and resolved credit notes per contract.
type Aggregator struct {
	window     Window
	rejectZero bool
	log        zerolog.Logger
}

// NewAggregator creates an aggregator for window. With rejectZeroCredits set,
// zero-amount credit notes are reported as data issues instead of summed.
func NewAggregator(window Window, rejectZeroCredits bool) *Aggregator {
	return &Aggregator{
		window:     window,
		rejectZero: rejectZeroCredits,
		log:        logger.WithComponent("balance-aggregator"),
	}
}

// Aggregate groups invoices by their own (client, contract) and matched
// credit notes by the contract they were resolved to. Unresolved notes are
// only counted in the unmatched figures. Rows that fail the amount gate are
// reported as issues and never summed as zero.
func (a *Aggregator) Aggregate(invoices []models.Invoice, reconciled reconciliation.Result) *Aggregates {
	out := &Aggregates{
		UnmatchedTotal: decimal.Zero,
		InvoicedTotal:  decimal.Zero,
		CreditedTotal:  decimal.Zero,
	}
	groups := make(map[ContractKey]*Group)

	inWindow := a.window.FilterInvoices(invoices)
	sort.SliceStable(inWindow, func(i, j int) bool { return inWindow[i].Date.Before(inWindow[j].Date) })

	for _, inv := range inWindow {
		if !inv.Amount.Valid {
			out.Issues = append(out.Issues, invoiceIssue(inv, ReasonUnparseableAmount))
			continue
		}
		g := groupFor(groups, inv.Client, inv.ContractID)
		g.Invoiced = g.Invoiced.Add(inv.Amount.Decimal)
		g.InvoiceCount++
		out.InvoicedTotal = out.InvoicedTotal.Add(inv.Amount.Decimal)
	}

	for _, rc := range reconciled.Matched {
		if !a.window.Contains(rc.Note.Date) {
			continue
		}
		magnitude, ok := rc.Note.Magnitude()
		if !ok {
			out.Issues = append(out.Issues, creditIssue(rc.Note, ReasonUnparseableAmount))
			continue
		}
		if magnitude.IsZero() && a.rejectZero {
			out.Issues = append(out.Issues, creditIssue(rc.Note, ReasonZeroAmount))
			continue
		}
		g := groupFor(groups, rc.Client, rc.ContractID)
		g.Credited = g.Credited.Add(magnitude)
		g.CreditCount++
		out.CreditedTotal = out.CreditedTotal.Add(magnitude)
	}

	for _, rc := range reconciled.Unmatched {
		if !a.window.Contains(rc.Note.Date) {
			continue
		}
		out.Unmatched = append(out.Unmatched, rc)
		if magnitude, ok := rc.Note.Magnitude(); ok {
			out.UnmatchedTotal = out.UnmatchedTotal.Add(magnitude)
		}
	}

	out.Groups = make([]Group, 0, len(groups))
	for _, g := range groups {
		out.Groups = append(out.Groups, *g)
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].Key.Less(out.Groups[j].Key) })

	for _, issue := range out.Issues {
		a.log.Warn().
			Str("document", issue.Document).
			Str("number", issue.Number).
			Int("row", issue.Row).
			Str("reason", issue.Reason).
			Msg("Row rejected before aggregation")
	}

	a.log.Info().
		Int("groups", len(out.Groups)).
		Int("unmatched", len(out.Unmatched)).
		Str("unmatched_total", out.UnmatchedTotal.StringFixed(2)).
		Int("issues", len(out.Issues)).
		Msg("Aggregation completed")

	return out
}

func groupFor(groups map[ContractKey]*Group, client, contractID string) *Group {
	key := NewContractKey(client, contractID)
	if g, ok := groups[key]; ok {
		return g
	}
	g := &Group{
		Key:        key,
		Client:     strings.TrimSpace(client),
		ContractID: strings.TrimSpace(contractID),
		Invoiced:   decimal.Zero,
		Credited:   decimal.Zero,
	}
	groups[key] = g
	return g
}

func invoiceIssue(inv models.Invoice, reason string) models.DataIssue {
	return models.DataIssue{
		Document: "invoice",
		Number:   inv.InvoiceNumber,
		Client:   inv.Client,
		Date:     inv.Date,
		Row:      inv.Row,
		Reason:   reason,
	}
}

func creditIssue(cn models.CreditNote, reason string) models.DataIssue {
	return models.DataIssue{
		Document: "credit-note",
		Number:   cn.CreditNumber,
		Client:   cn.Client,
		Date:     cn.Date,
		Row:      cn.Row,
		Reason:   reason,
	}
}
