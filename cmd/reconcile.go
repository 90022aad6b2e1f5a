package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"planfact/internal/balance"
	"planfact/internal/config"
	"planfact/internal/logger"
	"planfact/internal/plans"
	"planfact/internal/report"
	"planfact/internal/sheets"
	"planfact/internal/workbook"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compute plan-vs-actual balances per client and contract",
	Long: `Reconcile credit notes against invoices and compute, for every client and
contract, the invoiced, credited and actual values next to the stored plan.

Credit notes that cannot be tied to a contract are listed separately and are
never added to any contract.

Environment variables:
  PLAN_DB_PATH - Plan database (default ./data/plans.db)
  INVOICE_SHEET, CREDIT_SHEET - Sheet names (default Invoices, Credits)
  INVOICE_COLUMNS, CREDIT_COLUMNS - Column layouts, e.g. "date=A,number=B,..."
  GOOGLE_SHEET_URL - Spreadsheet used with --sheets and --write-sheets
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - Service account`,
	Example: `  # Both document types in one workbook
  planfact reconcile --invoices documents.xlsx

  # Separate workbooks, first quarter only, exported to xlsx
  planfact reconcile --invoices invoices.xlsx --credits credits.xlsx \
    --from 2024-01-01 --to 2024-03-31 --export q1.xlsx

  # Google Sheets in, Google Sheets out
  planfact reconcile --sheets --write-sheets`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	addSourceFlags(reconcileCmd)
	reconcileCmd.Flags().String("export", "", "Write the report to this .xlsx file")
	reconcileCmd.Flags().Bool("write-sheets", false, "Write the report tabs to GOOGLE_SHEET_URL")
	reconcileCmd.Flags().Bool("show-matched", false, "Also list every matched credit note")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("reconcile")
	ctx := cmd.Context()

	exportPath, _ := cmd.Flags().GetString("export")
	writeSheets, _ := cmd.Flags().GetBool("write-sheets")
	showMatched, _ := cmd.Flags().GetBool("show-matched")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	window, err := parseWindow(cmd)
	if err != nil {
		return err
	}
	extractor, err := cfg.Extractor()
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer src.close()

	invoices, credits, err := readDocuments(ctx, src, cfg)
	if err != nil {
		return err
	}

	store, err := plans.Open(ctx, cfg.PlanDBPath)
	if err != nil {
		return fmt.Errorf("failed to open plan database: %w", err)
	}
	defer store.Close()

	table, err := store.Load(ctx)
	if err != nil {
		return err
	}

	session := balance.NewSession(table, balance.SessionOptions{
		Window:            window,
		Extractor:         extractor,
		RejectZeroCredits: cfg.RejectZeroCredits(),
	})
	run := session.Run(invoices, credits)

	out := cmd.OutOrStdout()
	if err := report.PrintBalances(out, run.Report); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := report.PrintUnmatched(out, run.Report); err != nil {
		return err
	}
	if len(run.Report.Issues) > 0 {
		fmt.Fprintln(out)
		if err := report.PrintIssues(out, run.Report); err != nil {
			return err
		}
	}
	if showMatched {
		fmt.Fprintln(out)
		if err := report.PrintMatched(out, run.Reconciled.Matched); err != nil {
			return err
		}
	}
	if run.Report.Collisions > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d invoice number collisions, latest invoice kept (see debug log)\n", run.Report.Collisions)
	}

	if exportPath != "" {
		if err := workbook.NewWriter(exportPath).WriteReport(ctx, run.Report); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
	}

	if writeSheets {
		svc := src.sheets
		if svc == nil {
			if cfg.GoogleSheetURL == "" {
				return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required with --write-sheets")
			}
			if svc, err = sheets.NewSheetsService(ctx, cfg.GoogleSheetURL); err != nil {
				return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
			}
		}
		if err := svc.WriteReport(ctx, run.Report); err != nil {
			return fmt.Errorf("failed to write report to Google Sheets: %w", err)
		}
	}

	log.Info().
		Str("run_id", run.ID).
		Int("balances", len(run.Report.Balances)).
		Int("unmatched", len(run.Report.Unmatched)).
		Msg("Reconciliation completed successfully")
	return nil
}
