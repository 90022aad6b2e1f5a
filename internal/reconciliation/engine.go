package reconciliation

import (
	"github.com/rs/zerolog"

	"planfact/internal/logger"
	"planfact/pkg/models"
)

// Engine ties credit notes to invoices through an Index. It keeps no state
// between calls.
type Engine struct {
	index     *Index
	extractor *Extractor
	log       zerolog.Logger
}

// NewEngine creates an engine over a built index.
func NewEngine(index *Index, extractor *Extractor) *Engine {
	if extractor == nil {
		extractor = DefaultExtractor()
	}
	return &Engine{
		index:     index,
		extractor: extractor,
		log:       logger.WithComponent("reconciliation-engine"),
	}
}

// Resolve extracts a reference from the note, tries the exact key and then
// the digits key. Exact is always tried first: digit sequences alone can
// collide across distinct invoices.
func (e *Engine) Resolve(note models.CreditNote) ReconciledCreditNote {
	rc := ReconciledCreditNote{
		Note:      note,
		Reference: e.extractor.Extract(note.Notes),
	}
	if rc.Reference.Empty() {
		rc.Status = StatusNoReference
		return rc
	}

	key := NormalizeKey(rc.Reference.Value)
	entry, ok := e.index.LookupExact(key.Exact)
	if ok {
		rc.MatchedBy = KeyExact
	} else if entry, ok = e.index.LookupDigits(key.Digits); ok {
		rc.MatchedBy = KeyDigits
	}
	if !ok {
		rc.Status = StatusNotFound
		return rc
	}

	rc.InvoiceNumber = entry.InvoiceNumber
	if entry.ContractID == "" {
		rc.Status = StatusNoContract
		return rc
	}

	rc.Client = entry.Client
	rc.ContractID = entry.ContractID
	rc.Status = StatusMatched
	return rc
}

// ReconcileAll resolves every note. Unresolved notes are an expected outcome
// and are returned in Result.Unmatched, never dropped.
func (e *Engine) ReconcileAll(notes []models.CreditNote) Result {
	var res Result
	for _, note := range notes {
		rc := e.Resolve(note)
		if rc.IsMatched() {
			res.Matched = append(res.Matched, rc)
			continue
		}

		e.log.Debug().
			Str("credit_number", note.CreditNumber).
			Str("client", note.Client).
			Str("reference", rc.Reference.Value).
			Str("strategy", rc.Reference.Strategy).
			Str("status", string(rc.Status)).
			Msg("Credit note left unmatched")
		res.Unmatched = append(res.Unmatched, rc)
	}

	e.log.Info().
		Int("credit_notes", len(notes)).
		Int("matched", len(res.Matched)).
		Int("unmatched", len(res.Unmatched)).
		Msg("Credit notes reconciled")

	return res
}
