package reconciliation

import "planfact/pkg/models"

// MatchStatus is the outcome of resolving one credit note.
type MatchStatus string

const (
	StatusMatched     MatchStatus = "matched"
	StatusNoReference MatchStatus = "no-reference" // notes carry nothing that looks like a reference
	StatusNotFound    MatchStatus = "not-found"    // neither key is in the index
	StatusNoContract  MatchStatus = "no-contract"  // the invoice was found but has no contract ID
)

// ReconciledCreditNote is a credit note plus the contract it was resolved to.
type ReconciledCreditNote struct {
	Note          models.CreditNote
	Reference     Reference
	Client        string // Resolved from the invoice, empty when unresolved
	ContractID    string // Resolved from the invoice, empty when unresolved
	InvoiceNumber string // Invoice the note was tied to
	MatchedBy     KeyKind
	Status        MatchStatus
}

// IsMatched reports whether the note resolved to a contract.
func (r ReconciledCreditNote) IsMatched() bool {
	return r.Status == StatusMatched
}

// Unmatched converts r into its diagnostics row.
func (r ReconciledCreditNote) Unmatched() models.UnmatchedCreditNote {
	return models.UnmatchedCreditNote{
		Date:         r.Note.Date,
		CreditNumber: r.Note.CreditNumber,
		Client:       r.Note.Client,
		Notes:        r.Note.Notes,
		Reference:    r.Reference.Value,
		Strategy:     r.Reference.Strategy,
		Status:       string(r.Status),
		Amount:       r.Note.Amount,
	}
}

// Result splits a batch of reconciled credit notes. Every input ends up in
// exactly one of the two slices.
type Result struct {
	Matched   []ReconciledCreditNote
	Unmatched []ReconciledCreditNote
}

// Total returns len(Matched) + len(Unmatched).
func (r Result) Total() int {
	return len(r.Matched) + len(r.Unmatched)
}
