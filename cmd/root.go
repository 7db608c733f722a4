package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/leadfinder/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string
	flagDebug    bool
	flagCheck    bool
)

var rootCmd = &cobra.Command{
	Use:   "leadfinder",
	Short: "Find people on Reddit who are struggling with the problem you solve",
	Long: `leadfinder searches the subreddits where a business category hangs out,
scores every post for pain, relevance and urgency, and returns the best leads
with a short summary of why each one matters.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "dotenv file with LEADFINDER_* overrides")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "human-readable debug logging")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(categoriesCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "leadfinder %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if res := update.Check(cmd.Context(), nil, update.ReleasesURL, version); res != nil {
			fmt.Fprintf(out, "A newer release is available: %s %s\n", res.LatestVersion, res.URL)
		} else {
			fmt.Fprintln(out, "You are up to date.")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
