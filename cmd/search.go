package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/finder"
	"github.com/matheuskafuri/leadfinder/internal/ledger"
)

var (
	flagProblem  string
	flagCategory string
	flagCount    int
	flagCaller   string
	flagWide     bool
	flagBrowse   bool
	flagJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [problem...]",
	Short: "Find leads for a problem in a business category",
	Long: `Search the subreddits for a business category and return posts from people
who are struggling with the problem you solve.

The problem can be given with --problem or as the remaining arguments.
Each caller may request up to 150 results per period; cached answers are
charged like fresh ones. An empty --caller searches anonymously.`,
	Example: `  leadfinder search -c saas "customer acquisition"
  leadfinder search -c gym -n 20 --caller alice --browse "member retention"`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&flagProblem, "problem", "p", "", "problem you solve, e.g. \"customer acquisition\"")
	f.StringVarP(&flagCategory, "category", "c", "", "business category or alias (see `leadfinder categories`)")
	f.IntVarP(&flagCount, "count", "n", 10, "number of leads to return (1-150)")
	f.StringVar(&flagCaller, "caller", "", "account to charge for this search")
	f.BoolVar(&flagWide, "wide", false, "also search each category's backup subreddits")
	f.BoolVar(&flagBrowse, "browse", false, "open the results in the interactive browser")
	f.BoolVar(&flagJSON, "json", false, "print the response as JSON")
}

func buildRequest(args []string, wideDefault bool) (finder.Request, error) {
	problem := flagProblem
	if problem == "" {
		problem = strings.Join(args, " ")
	}
	if flagCategory == "" {
		return finder.Request{}, &finder.ValidationError{Field: "category", Reason: "is required (use --category)"}
	}
	cat, err := catalog.ResolveAlias(flagCategory)
	if err != nil {
		return finder.Request{}, &finder.ValidationError{Field: "category", Reason: err.Error()}
	}
	return finder.Request{
		Problem:  problem,
		Category: cat,
		CallerID: strings.TrimSpace(flagCaller),
		Count:    flagCount,
		Wide:     flagWide || wideDefault,
	}, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := newDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	req, err := buildRequest(args, d.cfg.Fetch.Wide)
	if err != nil {
		return err
	}
	f, err := d.finder()
	if err != nil {
		return err
	}

	resp, err := f.FindLeads(ctx, req)
	if err != nil {
		return explainSearchError(err)
	}

	out := cmd.OutOrStdout()
	switch {
	case flagJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case flagBrowse:
		return browseLeads(f, req, resp)
	default:
		renderLeads(out, resp.Leads)
		fmt.Fprintln(out, searchFooter(resp))
		return nil
	}
}

func explainSearchError(err error) error {
	var qe *ledger.QuotaError
	if errors.As(err, &qe) {
		what := "results"
		if qe.Kind == ledger.PostsExceeded {
			what = "post analyses"
		}
		return fmt.Errorf("quota exceeded: only %d %s left this period (used %d of %d, asked for %d): %w",
			qe.Remaining, what, qe.Current, qe.Limit, qe.Requested, err)
	}
	return err
}
