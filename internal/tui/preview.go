package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/leadfinder/internal/lead"
)

func renderPreview(l *lead.Lead, width, height, scroll int) string {
	if l == nil {
		return lipglossCenter("Select a lead", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(l.Title)
	source := previewSourceStyle.Render(
		fmt.Sprintf("%s · u/%s · %d upvotes · %s", l.Source, l.Author, l.UpvoteScore, l.CreatedAt.Format("Jan 2, 2006")),
	)

	scores := fmt.Sprintf("overall %d  keyword %d  struggle %d  business %d  %s",
		l.Score.Overall, l.Score.KeywordMatch, l.Score.StruggleDetection, l.Score.BusinessRelevance,
		urgencyBadge(l.Score.Urgency))

	about := fmt.Sprintf("%s · %s", l.BusinessContext, l.ProblemCategory)
	if len(l.MatchedKeywords) > 0 {
		about += " · matched: " + strings.Join(l.MatchedKeywords, ", ")
	}

	snippet := l.Snippet
	if snippet == "" {
		snippet = "(No text)"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		source,
		scores,
		previewBodyStyle.Width(contentWidth).Render(about),
		"",
		previewLabelStyle.Render("Summary"),
		previewBodyStyle.Width(contentWidth).Render(wrapText(l.Summary, contentWidth)),
		"",
		previewLabelStyle.Render("Post"),
		previewBodyStyle.Width(contentWidth).Render(wrapText(snippet, contentWidth)),
		previewLinkStyle.Width(contentWidth).Render(l.Permalink),
	)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
