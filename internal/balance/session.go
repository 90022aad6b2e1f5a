package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"planfact/internal/logger"
	"planfact/internal/reconciliation"
	"planfact/pkg/models"
	"planfact/pkg/services"
)

// SessionOptions configure a Session.
type SessionOptions struct {
	Window            Window
	Extractor         *reconciliation.Extractor // nil means reconciliation.DefaultExtractor
	RejectZeroCredits bool
}

// Session carries everything a reconciliation run needs besides the
// documents themselves: the plan table and the selected window. Plans are
// edited between runs, never by a run.
type Session struct {
	plans *PlanTable
	opts  SessionOptions
}

// NewSession creates a session. A nil plan table behaves as an empty one.
func NewSession(plans *PlanTable, opts SessionOptions) *Session {
	if plans == nil {
		plans = NewPlanTable()
	}
	if opts.Extractor == nil {
		opts.Extractor = reconciliation.DefaultExtractor()
	}
	return &Session{plans: plans, opts: opts}
}

// Plans returns the session's plan table for editing between runs.
func (s *Session) Plans() *PlanTable {
	return s.plans
}

// Window returns the selected window.
func (s *Session) Window() Window {
	return s.opts.Window
}

// RunResult is the outcome of one pass.
type RunResult struct {
	ID         string
	Report     *services.Report
	Reconciled reconciliation.Result
	Collisions []reconciliation.Collision
}

// Run performs one reconciliation pass: it indexes all invoices, resolves
// the credit notes inside the window, aggregates and computes balances. The
// index and every intermediate value are discarded when Run returns.
func (s *Session) Run(invoices []models.Invoice, credits []models.CreditNote) *RunResult {
	runID := uuid.NewString()
	log := logger.WithRun("balance-session", runID)
	window := s.opts.Window

	logWindow(log.Info(), window).
		Int("invoices", len(invoices)).
		Int("credit_notes", len(credits)).
		Int("plans", s.plans.Len()).
		Msg("Starting reconciliation run")

	index := reconciliation.BuildIndex(invoices)
	for _, c := range index.Collisions() {
		log.Debug().
			Str("key", c.Key).
			Str("kind", string(c.Kind)).
			Str("kept", c.Kept.InvoiceNumber).
			Str("replaced", c.Replaced.InvoiceNumber).
			Bool("conflicting", c.Conflicting).
			Msg("Invoice key collision, latest invoice kept")
	}

	engine := reconciliation.NewEngine(index, s.opts.Extractor)
	reconciled := engine.ReconcileAll(window.FilterCreditNotes(credits))

	agg := NewAggregator(window, s.opts.RejectZeroCredits).Aggregate(invoices, reconciled)

	report := &services.Report{
		From:        window.From,
		To:          window.To,
		Balances:    Calculate(agg.Groups, s.plans),
		Totals:      Totals(agg.Groups, s.plans),
		Issues:      agg.Issues,
		Collisions:  index.CollisionCount(),
		GeneratedAt: time.Now().UTC(),
	}
	for _, rc := range agg.Unmatched {
		report.Unmatched = append(report.Unmatched, rc.Unmatched())
	}

	log.Info().
		Int("indexed_keys", index.Len()).
		Int("collisions", index.CollisionCount()).
		Int("conflicting_collisions", index.ConflictCount()).
		Int("balances", len(report.Balances)).
		Int("matched", len(reconciled.Matched)).
		Int("unmatched", len(reconciled.Unmatched)).
		Str("unmatched_total", agg.UnmatchedTotal.StringFixed(2)).
		Int("issues", len(report.Issues)).
		Msg("Reconciliation run completed")

	return &RunResult{
		ID:         runID,
		Report:     report,
		Reconciled: reconciled,
		Collisions: index.Collisions(),
	}
}

func logWindow(e *zerolog.Event, w Window) *zerolog.Event {
	if !w.From.IsZero() {
		e = e.Str("from", w.From.Format("2006-01-02"))
	}
	if !w.To.IsZero() {
		e = e.Str("to", w.To.Format("2006-01-02"))
	}
	return e
}
