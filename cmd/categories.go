package cmd

import "github.com/spf13/cobra"

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List business categories, their aliases and subreddits",
	Run: func(cmd *cobra.Command, args []string) {
		renderCategories(cmd.OutOrStdout())
	},
}
