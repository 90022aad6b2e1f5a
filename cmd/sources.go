package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"planfact/internal/balance"
	"planfact/internal/config"
	"planfact/internal/logger"
	"planfact/internal/reconciliation"
	"planfact/internal/sheets"
	"planfact/internal/workbook"
	"planfact/pkg/models"
	"planfact/pkg/services"
)

// addSourceFlags registers the flags that select where documents come from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("invoices", "", "Invoice workbook (.xlsx)")
	cmd.Flags().String("credits", "", "Credit note workbook (.xlsx), defaults to the invoice workbook")
	cmd.Flags().Bool("sheets", false, "Read both sheets from GOOGLE_SHEET_URL instead of workbooks")
	cmd.Flags().String("from", "", "First date of the window (YYYY-MM-DD), open if empty")
	cmd.Flags().String("to", "", "Last date of the window (YYYY-MM-DD), open if empty")
}

// documentSource is the opened document source plus anything to release.
type documentSource struct {
	services.RowSource
	sheets *sheets.Service // set when reading from Google Sheets
	close  func()
}

func openSource(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*documentSource, error) {
	const op = "openSource"
	log := logger.WithComponent("source")

	useSheets, _ := cmd.Flags().GetBool("sheets")
	invoicePath, _ := cmd.Flags().GetString("invoices")
	creditPath, _ := cmd.Flags().GetString("credits")

	if useSheets {
		if invoicePath != "" || creditPath != "" {
			return nil, fmt.Errorf("%s: --sheets cannot be combined with --invoices/--credits", op)
		}
		if cfg.GoogleSheetURL == "" {
			return nil, fmt.Errorf("%s: GOOGLE_SHEET_URL environment variable is required with --sheets", op)
		}
		svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to initialize Google Sheets service: %w", op, err)
		}
		log.Info().Msg("Reading documents from Google Sheets")
		return &documentSource{RowSource: svc, sheets: svc, close: func() {}}, nil
	}

	if invoicePath == "" {
		return nil, fmt.Errorf("%s: %w (use --invoices or --sheets)", op, reconciliation.ErrUnknownSource)
	}
	if creditPath == "" {
		creditPath = invoicePath
	}

	invoices, err := workbook.Open(invoicePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if creditPath == invoicePath {
		log.Info().Str("file", invoicePath).Msg("Reading documents from workbook")
		return &documentSource{RowSource: invoices, close: func() { invoices.Close() }}, nil
	}

	credits, err := workbook.Open(creditPath)
	if err != nil {
		invoices.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info().Str("invoices", invoicePath).Str("credits", creditPath).Msg("Reading documents from workbooks")
	return &documentSource{
		RowSource: workbook.Routes{cfg.InvoiceSheet: invoices, cfg.CreditSheet: credits},
		close: func() {
			invoices.Close()
			credits.Close()
		},
	}, nil
}

func readDocuments(ctx context.Context, src services.RowSource, cfg *config.Config) ([]models.Invoice, []models.CreditNote, error) {
	readerCfg, err := cfg.ReaderConfig()
	if err != nil {
		return nil, nil, err
	}

	dr := reconciliation.NewDataReader(src, readerCfg)
	invoices, err := dr.ReadInvoices(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read invoices: %w", err)
	}
	credits, err := dr.ReadCreditNotes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read credit notes: %w", err)
	}
	return invoices, credits, nil
}

func parseWindow(cmd *cobra.Command) (balance.Window, error) {
	var w balance.Window

	for _, f := range []struct {
		name string
		dst  *time.Time
	}{{"from", &w.From}, {"to", &w.To}} {
		raw, _ := cmd.Flags().GetString(f.name)
		if raw == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return w, fmt.Errorf("invalid --%s date format. Use YYYY-MM-DD: %w", f.name, err)
		}
		*f.dst = d
	}

	if !w.From.IsZero() && !w.To.IsZero() && w.To.Before(w.From) {
		return w, fmt.Errorf("--to %s is before --from %s", w.To.Format("2006-01-02"), w.From.Format("2006-01-02"))
	}
	return w, nil
}
