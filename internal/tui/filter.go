package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/leadfinder/internal/lead"
)

// filterBar toggles which subreddits are shown. No active source means all.
type filterBar struct {
	sources      []string
	active       map[string]bool
	filterMode   bool
	filterCursor int
}

func newFilterBar(leads []lead.Lead) filterBar {
	seen := make(map[string]bool)
	var sources []string
	for _, l := range leads {
		if !seen[l.Source] {
			seen[l.Source] = true
			sources = append(sources, l.Source)
		}
	}
	return filterBar{
		sources: sources,
		active:  make(map[string]bool),
	}
}

func (f *filterBar) toggle(source string) {
	if f.active[source] {
		delete(f.active, source)
	} else {
		f.active[source] = true
	}
}

func (f *filterBar) toggleCurrent() {
	if f.filterCursor < len(f.sources) {
		f.toggle(f.sources[f.filterCursor])
	}
}

func (f *filterBar) activeLabel() string {
	if len(f.active) == 0 {
		return "All"
	}
	var out []string
	for _, s := range f.sources {
		if f.active[s] {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

// apply keeps the leads whose source is active and whose title or snippet
// contains query.
func (f *filterBar) apply(leads []lead.Lead, query string) []lead.Lead {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]lead.Lead, 0, len(leads))
	for _, l := range leads {
		if len(f.active) > 0 && !f.active[l.Source] {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(l.Title), query) &&
			!strings.Contains(strings.ToLower(l.Snippet), query) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (f *filterBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	if len(f.active) == 0 {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("All"))
	}

	for i, s := range f.sources {
		style := tabInactiveStyle
		if f.active[s] {
			style = tabActiveStyle
		}
		label := s
		if f.filterMode && i == f.filterCursor {
			label = "[" + s + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Stop adding tabs once the row would overflow.
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
