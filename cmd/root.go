package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"planfact/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "planfact",
	Short: "Contract plan-vs-actual balances from invoices and credit notes",
	Long: `planfact reconciles credit notes against invoices and reports, per client
and contract, how much of the planned value has actually been invoiced.

Credit notes are tied to invoices through the reference written in their
notes. Plans are kept in a local database and edited with "planfact plan".`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := logger.WithComponent("cmd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		stop()
		os.Exit(1)
	}
}
