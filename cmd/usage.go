package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	flagUsageCaller string
	flagUsageAll    bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show a caller's quota usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		out := cmd.OutOrStdout()
		if flagUsageAll {
			accounts, err := d.db.Accounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing accounts: %w", err)
			}
			renderAccounts(out, accounts)
			return nil
		}

		caller, err := requireCaller()
		if err != nil {
			return err
		}
		s, err := d.ledger.Summary(cmd.Context(), caller)
		if err != nil {
			return fmt.Errorf("reading usage: %w", err)
		}
		renderUsage(out, caller, s)
		return nil
	},
}

var usageResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Zero a caller's counters for a new period",
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := requireCaller()
		if err != nil {
			return err
		}
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.ledger.Reset(cmd.Context(), caller); err != nil {
			return fmt.Errorf("resetting usage: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Usage reset for %s.\n", caller)
		return nil
	},
}

func requireCaller() (string, error) {
	caller := strings.TrimSpace(flagUsageCaller)
	if caller == "" {
		return "", errors.New("--caller is required")
	}
	return caller, nil
}

func init() {
	usageCmd.PersistentFlags().StringVar(&flagUsageCaller, "caller", "", "account to inspect")
	usageCmd.Flags().BoolVar(&flagUsageAll, "all", false, "list every account")
	usageCmd.AddCommand(usageResetCmd)
}
