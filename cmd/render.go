package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/matheuskafuri/leadfinder/internal/cache"
	"github.com/matheuskafuri/leadfinder/internal/catalog"
	"github.com/matheuskafuri/leadfinder/internal/finder"
	"github.com/matheuskafuri/leadfinder/internal/lead"
	"github.com/matheuskafuri/leadfinder/internal/ledger"
	"github.com/matheuskafuri/leadfinder/internal/store"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderLeads(w io.Writer, leads []lead.Lead) {
	if len(leads) == 0 {
		fmt.Fprintln(w, "No leads found. Try a broader problem description or --wide.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Score", "Urgency", "Subreddit", "Lead", "Summary"})
	for i, l := range leads {
		t.AppendRow(table.Row{
			i + 1,
			l.Score.Overall,
			l.Score.Urgency,
			l.Source,
			l.Title + "\n" + l.Permalink,
			l.Summary,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 5, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Number: 6, WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
	})
	t.Render()
}

func searchFooter(resp *finder.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d leads · %d results and %d posts left this period",
		len(resp.Leads), resp.Remaining.Results, resp.Remaining.Posts)
	if resp.CacheHit {
		fmt.Fprintf(&b, " · cached %.1fh ago", resp.AgeHours)
	} else {
		m := resp.Metrics
		fmt.Fprintf(&b, " · %d posts scraped, %d passed %s", m.PostsScraped, m.PostsFiltered, m.FilterMethod)
		if m.TokensUsed > 0 {
			fmt.Fprintf(&b, " · %d tokens ($%.4f, %s)", m.TokensUsed, m.Cost, m.ModelUsed)
		}
	}
	return b.String()
}

func remainingLabel(r ledger.Remaining) string {
	return fmt.Sprintf("%d results left", r.Results)
}

func renderUsage(w io.Writer, caller string, s ledger.Summary) {
	t := newTable(w)
	t.SetTitle("Usage for " + caller)
	t.AppendHeader(table.Row{"Metric", "Used", "Remaining", "Limit", "Used %"})
	t.AppendRow(table.Row{"Results", s.ResultsUsed, s.ResultsRemaining, s.ResultsLimit, fmt.Sprintf("%.1f%%", s.ResultsPercentage)})
	t.AppendRow(table.Row{"Posts analyzed", s.PostsAnalyzed, s.PostsRemaining, s.PostsLimit, fmt.Sprintf("%.1f%%", s.PostsPercentage)})
	t.AppendRow(table.Row{"Estimated cost",
		fmt.Sprintf("$%.2f", s.EstimatedCostUsed),
		fmt.Sprintf("$%.2f", s.EstimatedCostRemaining),
		fmt.Sprintf("$%.2f", s.MaxEstimatedCost),
		"",
	})
	t.AppendFooter(table.Row{"Summaries", s.TokensUsed, "tokens", fmt.Sprintf("$%.4f", s.ActualCost), ""})
	t.Render()
}

func renderAccounts(w io.Writer, accounts []ledger.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(w, "No accounts yet.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Caller", "Results", "Posts", "Tokens", "Cost", "Updated"})
	for _, a := range accounts {
		t.AppendRow(table.Row{a.ID, a.ResultsUsed, a.PostsAnalyzed, a.TokensUsed, fmt.Sprintf("$%.4f", a.Cost), formatTime(a.UpdatedAt)})
	}
	t.Render()
}

func renderCacheStats(w io.Writer, backend string, s cache.Stats) {
	t := newTable(w)
	t.SetTitle("Result cache (" + backend + ")")
	t.AppendRow(table.Row{"Entries", s.Entries})
	t.AppendRow(table.Row{"Oldest", fmt.Sprintf("%.1fh", s.OldestAgeHours)})
	t.AppendRow(table.Row{"Newest", fmt.Sprintf("%.1fh", s.NewestAgeHours)})
	t.AppendRow(table.Row{"TTL", fmt.Sprintf("%.0fh", s.TTLHours)})
	t.Render()
}

func renderHistory(w io.Writer, records []store.SearchRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No searches recorded.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"When", "Caller", "Category", "Problem", "Asked", "Got", "Method", "Took"})
	for _, r := range records {
		caller := r.Caller
		if caller == "" {
			caller = "(anonymous)"
		}
		t.AppendRow(table.Row{
			formatTime(r.CreatedAt),
			caller,
			r.Category,
			r.Problem,
			r.Requested,
			r.Returned,
			r.FilterMethod,
			r.Duration.Round(time.Millisecond),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
	})
	t.Render()
}

// categoryAliases inverts catalog.Aliases.
func categoryAliases() map[catalog.Category][]string {
	out := make(map[catalog.Category][]string)
	for alias, c := range catalog.Aliases {
		out[c] = append(out[c], alias)
	}
	for c := range out {
		sort.Strings(out[c])
	}
	return out
}

func renderCategories(w io.Writer) {
	aliases := categoryAliases()
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Kind", "Aliases", "Subreddits"})
	for _, c := range catalog.AllCategories() {
		subs := catalog.Subreddits(c, false)
		for i, s := range subs {
			subs[i] = "r/" + s
		}
		t.AppendRow(table.Row{c, catalog.KindOf(c), strings.Join(aliases[c], ", "), strings.Join(subs, " ")})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
	})
	t.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}
