package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"planfact/internal/amount"
	"planfact/internal/config"
	"planfact/internal/plans"
	"planfact/internal/report"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage planned contract values",
	Long: `Set, list and remove the planned value of a client's contract.

Client and contract are matched case-insensitively with whitespace
collapsed, the same way reconcile groups invoices.`,
}

var planSetCmd = &cobra.Command{
	Use:   "set <client> <contract> <amount>",
	Short: "Set the planned value of a contract",
	Example: `  planfact plan set "Acme UAB" K-1 "12 000,00"
  planfact plan set "Acme UAB" "" 5000`,
	Args: cobra.ExactArgs(3),
	RunE: runPlanSet,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all plans",
	Args:  cobra.NoArgs,
	RunE:  runPlanList,
}

var planRmCmd = &cobra.Command{
	Use:     "rm <client> <contract>",
	Aliases: []string{"delete"},
	Short:   "Remove the plan of a contract",
	Args:    cobra.ExactArgs(2),
	RunE:    runPlanRm,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planSetCmd, planListCmd, planRmCmd)
}

func openPlanStore(cmd *cobra.Command) (*plans.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := plans.Open(cmd.Context(), cfg.PlanDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan database: %w", err)
	}
	return store, nil
}

func runPlanSet(cmd *cobra.Command, args []string) error {
	planned := amount.Parse(args[2])
	if !planned.Valid {
		return fmt.Errorf("invalid amount %q", args[2])
	}

	store, err := openPlanStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Set(cmd.Context(), args[0], args[1], planned.Decimal); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Plan for %s / %s set to %s\n", args[0], args[1], amount.Format(planned.Decimal))
	return nil
}

func runPlanList(cmd *cobra.Command, args []string) error {
	store, err := openPlanStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	return report.PrintPlans(cmd.OutOrStdout(), list)
}

func runPlanRm(cmd *cobra.Command, args []string) error {
	store, err := openPlanStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Plan for %s / %s removed\n", args[0], args[1])
	return nil
}
