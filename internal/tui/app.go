package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/leadfinder/internal/browser"
	"github.com/matheuskafuri/leadfinder/internal/lead"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
)

// RerunFunc repeats the search behind the browser. It returns the new leads
// and a short description of the caller's remaining quota.
type RerunFunc func(ctx context.Context) ([]lead.Lead, string, error)

// RunOpts holds all parameters for launching the lead browser.
type RunOpts struct {
	Title     string
	Leads     []lead.Lead
	Remaining string
	Rerun     RerunFunc
	Open      func(url string) error
}

type App struct {
	title     string
	all       []lead.Lead
	leads     []lead.Lead
	remaining string
	rerun     RerunFunc
	open      func(string) error

	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	running       bool
	previewScroll int
	err           error
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Filter leads..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	open := opts.Open
	if open == nil {
		open = browser.Open
	}

	a := &App{
		title:       opts.Title,
		all:         opts.Leads,
		remaining:   opts.Remaining,
		rerun:       opts.Rerun,
		open:        open,
		searchInput: ti,
		spinner:     sp,
		filterBar:   newFilterBar(opts.Leads),
	}
	a.applyFilter()
	return a
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) applyFilter() {
	a.leads = a.filterBar.apply(a.all, a.searchInput.Value())
	if a.cursor >= len(a.leads) {
		a.cursor = max(0, len(a.leads)-1)
	}
	a.previewScroll = 0
}

func (a *App) doRerun() tea.Cmd {
	rerun := a.rerun
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		leads, remaining, err := rerun(ctx)
		return rerunDoneMsg{leads: leads, remaining: remaining, err: err}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Errors stick until the next keypress.
		a.err = nil
		return a.handleKey(msg)

	case rerunDoneMsg:
		a.running = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.all = msg.leads
		a.remaining = msg.remaining
		a.filterBar = newFilterBar(msg.leads)
		a.cursor = 0
		a.applyFilter()
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.running {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.leads)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "g", "home":
		a.cursor = 0
		a.previewScroll = 0
		return a, nil
	case "G", "end":
		a.cursor = max(0, len(a.leads)-1)
		a.previewScroll = 0
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if l := a.selected(); l != nil {
			return a, a.openCmd(l.Permalink)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "r":
		if a.rerun != nil && !a.running {
			a.running = true
			return a, tea.Batch(a.doRerun(), a.spinner.Tick)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.applyFilter()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.applyFilter()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.applyFilter()
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		if a.filterBar.filterCursor > 0 {
			a.filterBar.filterCursor--
		}
		return a, nil
	case "right", "l":
		if a.filterBar.filterCursor < len(a.filterBar.sources)-1 {
			a.filterBar.filterCursor++
		}
		return a, nil
	case " ", "enter":
		a.filterBar.toggleCurrent()
		a.cursor = 0
		a.applyFilter()
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.filterBar.sources) {
			a.filterBar.toggle(a.filterBar.sources[idx])
			a.cursor = 0
			a.applyFilter()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) selected() *lead.Lead {
	if len(a.leads) == 0 || a.cursor >= len(a.leads) {
		return nil
	}
	return &a.leads[a.cursor]
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  leadfinder")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1

	headerLeft := headerStyle.Render("leadfinder")
	headerRight := headerQueryStyle.Render(truncateStr(a.title, max(0, a.width/2)))
	headerGap := max(0, a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight))
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	listContent := renderList(a.leads, a.cursor, contentHeight, listWidth-4)
	listStyle := listPaneStyle
	if a.focus == focusList {
		listStyle = listPaneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	previewContent := renderPreview(a.selected(), previewWidth-4, contentHeight, a.previewScroll)
	previewStyle := previewPaneStyle
	if a.focus == focusPreview {
		previewStyle = previewPaneActiveStyle
	}
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(
		len(a.leads),
		a.filterBar.activeLabel(),
		a.remaining,
		a.width,
		a.mode == modeSearch,
		a.running,
	)
	if a.running {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("leadfinder")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through leads\n" +
		"  g/G           First / last lead\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open post in browser\n" +
		"  r             Fetch fresh results (charged)\n" +
		"  /             Filter by text\n" +
		"  f             Toggle subreddit filter mode\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between subreddits\n" +
		"  space/enter   Toggle subreddit\n" +
		"  1-9           Toggle subreddit by number\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, helpCardStyle.Render(help))
}

// Run starts the lead browser and blocks until the user quits.
func Run(opts RunOpts) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Title formats the header line for a search.
func Title(problem, category string) string {
	return strings.TrimSpace(problem) + " · " + category
}
