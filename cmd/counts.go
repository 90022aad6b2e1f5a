package cmd

import (
	"github.com/spf13/cobra"

	"planfact/internal/config"
	"planfact/internal/dynamics"
	"planfact/internal/logger"
	"planfact/internal/report"
)

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Count unique invoices and credit notes per month or week",
	Long: `Count unique invoices and credit notes per calendar month or ISO week
(Monday start). A document number seen on several rows is counted once, in
the period of its earliest row.`,
	Example: `  planfact counts --invoices documents.xlsx
  planfact counts --sheets --granularity week --credits-negative`,
	RunE: runCounts,
}

func init() {
	rootCmd.AddCommand(countsCmd)

	addSourceFlags(countsCmd)
	countsCmd.Flags().String("granularity", string(dynamics.Month), "Period length: month or week")
	countsCmd.Flags().Bool("credits-negative", false, "Subtract credit notes from the net count")
	countsCmd.Flags().Bool("no-moving-average", false, "Omit the moving average column")
}

func runCounts(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("counts")
	ctx := cmd.Context()

	granularityStr, _ := cmd.Flags().GetString("granularity")
	creditsNegative, _ := cmd.Flags().GetBool("credits-negative")
	noMovingAverage, _ := cmd.Flags().GetBool("no-moving-average")

	granularity, err := dynamics.ParseGranularity(granularityStr)
	if err != nil {
		return err
	}
	window, err := parseWindow(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
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

	series := dynamics.Count(invoices, credits, dynamics.Options{
		Granularity:     granularity,
		CreditsNegative: creditsNegative,
		Window:          window,
		MovingAverage:   !noMovingAverage,
	})

	log.Debug().Int("periods", len(series.Periods)).Msg("Printing document counts")
	return report.PrintCounts(cmd.OutOrStdout(), series)
}
