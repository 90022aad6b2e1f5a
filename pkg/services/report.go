package services

import (
	"context"
	"time"

	"planfact/pkg/models"
)

// RowSource reads the raw cell grid of one sheet. Cells are returned as the
// text shown to the user; row 0 is the first row of the sheet.
type RowSource interface {
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
}

// ReportWriter persists the outcome of a reconciliation pass.
type ReportWriter interface {
	WriteReport(ctx context.Context, report *Report) error
}

// Report is the output handed to presentation and export.
type Report struct {
	From        time.Time // Zero when the window is open
	To          time.Time
	Balances    []models.ContractBalance
	Totals      models.ContractBalance
	Unmatched   []models.UnmatchedCreditNote
	Issues      []models.DataIssue
	Collisions  int
	GeneratedAt time.Time
}
