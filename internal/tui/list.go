package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/leadfinder/internal/lead"
	"github.com/matheuskafuri/leadfinder/internal/signal"
)

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func urgencyBadge(u signal.Urgency) string {
	switch u {
	case signal.UrgencyHigh:
		return urgencyHighStyle.Render("HIGH")
	case signal.UrgencyMedium:
		return urgencyMediumStyle.Render("MED")
	default:
		return urgencyLowStyle.Render("LOW")
	}
}

func renderListItem(l lead.Lead, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(l.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(l.Title, width-4))
	}

	meta := fmt.Sprintf("  %3d %s %s %s",
		l.Score.Overall,
		urgencyBadge(l.Score.Urgency),
		itemSourceStyle.Render(l.Source),
		itemTimeStyle.Render("· "+relativeTime(l.CreatedAt)),
	)

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// visibleRange returns the window of items [start, end) that keeps cursor
// on screen.
func visibleRange(total, cursor, visible int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > total {
		end = total
		start = max(0, end-visible)
	}
	return start, end
}

func renderList(leads []lead.Lead, cursor int, height int, width int) string {
	if len(leads) == 0 {
		return lipglossCenter("No leads found", width, height)
	}

	// Each item is 2 lines + 1 blank line
	start, end := visibleRange(len(leads), cursor, height/3)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(leads[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", max(0, (width-len(s))/2)) + s
}
