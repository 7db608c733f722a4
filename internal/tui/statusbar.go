package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(leadCount int, filterLabel, remaining string, width int, searching, running bool) string {
	left := fmt.Sprintf(" %d leads", leadCount)
	if filterLabel != "All" {
		left += " · " + filterLabel
	}
	if remaining != "" {
		left += " · " + remaining
	}
	if running {
		left += " (searching...)"
	}

	right := " / search  f filter  o open  r rerun  ? help  q quit "
	if searching {
		right = " esc cancel  enter search "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
