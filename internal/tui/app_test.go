package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/leadfinder/internal/lead"
)

func sampleLeads() []lead.Lead {
	return []lead.Lead{
		{Title: "Struggling with churn", Source: "r/SaaS", Permalink: "https://reddit.com/r/SaaS/comments/1"},
		{Title: "Need first customers", Source: "r/startups", Permalink: "https://reddit.com/r/startups/comments/2"},
		{Title: "Churn help please", Source: "r/SaaS", Snippet: "losing users", Permalink: "https://reddit.com/r/SaaS/comments/3"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(a *App, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = a.Update(m)
	}
	return cmd
}

func TestFilterBarSourcesInOrder(t *testing.T) {
	f := newFilterBar(sampleLeads())
	assert.Equal(t, []string{"r/SaaS", "r/startups"}, f.sources)
	assert.Equal(t, "All", f.activeLabel())

	f.toggle("r/startups")
	assert.Equal(t, "r/startups", f.activeLabel())
	assert.Len(t, f.apply(sampleLeads(), ""), 1)

	f.toggle("r/startups")
	assert.Len(t, f.apply(sampleLeads(), ""), 3)
}

func TestFilterBarTextQuery(t *testing.T) {
	f := newFilterBar(sampleLeads())
	got := f.apply(sampleLeads(), "CHURN")
	require.Len(t, got, 2)
	assert.Equal(t, "Struggling with churn", got[0].Title)

	got = f.apply(sampleLeads(), "losing")
	require.Len(t, got, 1)
	assert.Equal(t, "Churn help please", got[0].Title)
}

func TestNavigation(t *testing.T) {
	a := NewApp(RunOpts{Leads: sampleLeads()})

	send(a, key("j"), key("j"), key("j"))
	assert.Equal(t, 2, a.cursor)

	send(a, key("k"))
	assert.Equal(t, 1, a.cursor)

	send(a, key("g"))
	assert.Equal(t, 0, a.cursor)

	send(a, key("G"))
	assert.Equal(t, 2, a.cursor)
}

func TestSearchNarrowsLeads(t *testing.T) {
	a := NewApp(RunOpts{Leads: sampleLeads()})
	send(a, key("/"))
	assert.Equal(t, modeSearch, a.mode)

	send(a, key("c"), key("u"), key("s"), key("t"), key("enter"))
	assert.Equal(t, modeNormal, a.mode)
	require.Len(t, a.leads, 1)
	assert.Equal(t, "Need first customers", a.leads[0].Title)

	send(a, key("/"), key("esc"))
	assert.Len(t, a.leads, 3)
}

func TestFilterModeTogglesByNumber(t *testing.T) {
	a := NewApp(RunOpts{Leads: sampleLeads()})
	send(a, key("f"), key("1"))
	assert.Len(t, a.leads, 2)
	send(a, key("esc"))
	assert.Equal(t, modeNormal, a.mode)
	assert.Len(t, a.leads, 2)
}

func TestOpenSelectedLead(t *testing.T) {
	var opened string
	a := NewApp(RunOpts{Leads: sampleLeads(), Open: func(url string) error {
		opened = url
		return nil
	}})

	send(a, key("j"))
	cmd := send(a, key("o"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, "https://reddit.com/r/startups/comments/2", opened)
}

func TestOpenErrorIsShown(t *testing.T) {
	a := NewApp(RunOpts{Leads: sampleLeads(), Open: func(string) error { return errors.New("no browser") }})
	cmd := send(a, key("enter"))
	require.NotNil(t, cmd)
	send(a, cmd())
	assert.EqualError(t, a.err, "no browser")
}

func TestRerunReplacesLeads(t *testing.T) {
	fresh := []lead.Lead{{Title: "Brand new", Source: "r/Entrepreneur"}}
	a := NewApp(RunOpts{
		Leads: sampleLeads(),
		Rerun: func(context.Context) ([]lead.Lead, string, error) {
			return fresh, "120 results left", nil
		},
	})

	send(a, key("j"), key("r"))
	assert.True(t, a.running)

	msg := a.doRerun()()
	send(a, msg)
	assert.False(t, a.running)
	assert.Equal(t, fresh, a.leads)
	assert.Equal(t, 0, a.cursor)
	assert.Equal(t, "120 results left", a.remaining)
	assert.Equal(t, []string{"r/Entrepreneur"}, a.filterBar.sources)
}

func TestRerunWithoutFuncIsNoop(t *testing.T) {
	a := NewApp(RunOpts{Leads: sampleLeads()})
	assert.Nil(t, send(a, key("r")))
	assert.False(t, a.running)
}

func TestViewRendersSelection(t *testing.T) {
	a := NewApp(RunOpts{Title: Title("churn", "SaaS Companies"), Leads: sampleLeads()})
	send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	out := a.View()
	assert.Contains(t, out, "leadfinder")
	assert.Contains(t, out, "3 leads")
}

func TestHelpSaysRerunIsCharged(t *testing.T) {
	a := NewApp(RunOpts{Leads: sampleLeads()})
	send(a, key("?"))
	assert.Equal(t, modeHelp, a.mode)
	assert.Contains(t, a.renderHelp(), "Fetch fresh results (charged)")
}
