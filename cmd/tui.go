package cmd

import (
	"context"

	"github.com/matheuskafuri/leadfinder/internal/finder"
	"github.com/matheuskafuri/leadfinder/internal/lead"
	"github.com/matheuskafuri/leadfinder/internal/tui"
)

// browseLeads opens the interactive browser on resp.
func browseLeads(f *finder.Finder, req finder.Request, resp *finder.Response) error {
	return tui.Run(tui.RunOpts{
		Title:     tui.Title(req.Problem, string(req.Category)),
		Leads:     resp.Leads,
		Remaining: remainingLabel(resp.Remaining),
		Rerun:     rerunSearch(f, req),
	})
}

// rerunSearch fetches req again past the cache. Each rerun is charged.
func rerunSearch(f *finder.Finder, req finder.Request) tui.RerunFunc {
	req.Refresh = true
	return func(ctx context.Context) ([]lead.Lead, string, error) {
		r, err := f.FindLeads(ctx, req)
		if err != nil {
			return nil, "", explainSearchError(err)
		}
		return r.Leads, remainingLabel(r.Remaining), nil
	}
}
