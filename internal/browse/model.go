// Package browse implements a read-only full-screen contact browser.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/agenda/internal/contact"
	"github.com/smileynet/agenda/internal/query"
)

// Mode is the browser's input mode.
type Mode int

const (
	// ModeList pages through contacts.
	ModeList Mode = iota
	// ModeFilter sends keystrokes to the filter input.
	ModeFilter
)

// Model is the Bubble Tea model for the contact browser.
type Model struct {
	store   *contact.Store
	entries []contact.Entry // filtered, phone order
	pager   paginator.Model
	filter  textinput.Model
	help    help.Model
	mode    Mode
}

// NewModel creates a browser over store showing pageSize contacts per page.
func NewModel(store *contact.Store, pageSize int) Model {
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = max(1, pageSize)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name, phone or email"

	m := Model{
		store:  store,
		pager:  p,
		filter: ti,
		help:   help.New(),
	}
	m.applyFilter()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Mode returns the current input mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Page returns the current 1-based page number.
func (m Model) Page() int {
	return m.pager.Page + 1
}

// TotalPages returns the number of pages for the current filter, at least 1.
func (m Model) TotalPages() int {
	return m.pager.TotalPages
}

// Visible returns the contacts shown on the current page.
func (m Model) Visible() []contact.Entry {
	if len(m.entries) == 0 {
		return nil
	}
	start, end := m.pager.GetSliceBounds(len(m.entries))
	return m.entries[start:end]
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeFilter {
			return m.handleFilterKey(msg)
		}
		return m.handleListKey(msg)
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := ListKeyMap()
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Prev):
		m.pager.PrevPage()
	case key.Matches(msg, keys.Next):
		m.pager.NextPage()
	case key.Matches(msg, keys.Filter):
		m.mode = ModeFilter
		return m, m.filter.Focus()
	case key.Matches(msg, keys.Clear):
		m.filter.SetValue("")
		m.applyFilter()
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := FilterKeyMap()
	switch {
	case key.Matches(msg, keys.Apply):
		m.mode = ModeList
		m.filter.Blur()
		return m, nil
	case key.Matches(msg, keys.Cancel):
		m.mode = ModeList
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter recomputes the visible entries and returns to the first page.
func (m *Model) applyFilter() {
	m.entries = query.Filter(m.store, m.filter.Value())
	// paginator.SetTotalPages ignores zero items, so set the count directly.
	m.pager.TotalPages = max(1, query.TotalPages(len(m.entries), m.pager.PerPage))
	m.pager.Page = 0
}

// View renders the current page, filter input and help bar.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Address book · %d contact(s)", len(m.entries))))
	b.WriteString("\n")
	if m.mode == ModeFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.store.Len() == 0:
		b.WriteString(mutedStyle.Render("No contacts in the address book."))
		b.WriteString("\n")
	case len(m.entries) == 0:
		b.WriteString(mutedStyle.Render("No matching contacts."))
		b.WriteString("\n")
	default:
		cards := make([]string, 0, m.pager.PerPage)
		for _, e := range m.Visible() {
			cards = append(cards, renderCard(e))
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("page " + m.pager.View()))
		b.WriteString("\n")
	}

	var km help.KeyMap = ListKeyMap()
	if m.mode == ModeFilter {
		km = FilterKeyMap()
	}
	b.WriteString(m.help.View(km))
	return b.String()
}

func renderCard(e contact.Entry) string {
	lines := []string{
		phoneStyle.Render(e.Phone) + "  " + e.Contact.Name,
		e.Contact.Email,
	}
	if e.Contact.Address != "" {
		lines = append(lines, e.Contact.Address)
	}
	if e.Contact.Notes != "" {
		lines = append(lines, mutedStyle.Render(e.Contact.Notes))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
