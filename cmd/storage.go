package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/leadfinder/internal/config"
)

var (
	flagPruneOlderThan string
	flagHistoryCaller  string
	flagHistoryLimit   int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or prune the result cache and search log",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache and database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		s, err := d.cache.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		dbPath := d.cfg.DatabasePath()
		count, size, err := d.db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading database stats: %w", err)
		}

		out := cmd.OutOrStdout()
		renderCacheStats(out, d.cfg.Cache.Backend, s)
		fmt.Fprintf(out, "Database: %s\n", dbPath)
		fmt.Fprintf(out, "Searches logged: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		if last := d.db.LastPrune(cmd.Context()); !last.IsZero() {
			fmt.Fprintf(out, "Last prune: %s\n", formatTime(last))
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop expired cache entries and old search records",
	Long: `Delete cache entries past their 24h freshness window and search records older
than the retention period.

Uses the retention value from config (default: 90d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		retention := d.cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			r, err := config.ParseDuration(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = r
		}

		entries, err := d.cache.Prune(cmd.Context())
		if err != nil {
			return fmt.Errorf("pruning cache: %w", err)
		}
		searches, err := d.db.Prune(cmd.Context(), retention)
		if err != nil {
			return fmt.Errorf("pruning search log: %w", err)
		}

		out := cmd.OutOrStdout()
		if entries == 0 && searches == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
			return nil
		}
		fmt.Fprintf(out, "Pruned %d cache entr%s and %d search record(s) older than %s.\n",
			entries, plural(entries, "y", "ies"), searches, formatDuration(retention))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		records, err := d.db.RecentSearches(cmd.Context(), flagHistoryCaller, flagHistoryLimit)
		if err != nil {
			return fmt.Errorf("listing searches: %w", err)
		}
		renderHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	cachePruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	historyCmd.Flags().StringVar(&flagHistoryCaller, "caller", "", "caller whose searches to list (empty lists anonymous searches)")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "maximum rows")
}
