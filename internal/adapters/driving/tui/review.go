// Package tui provides the interactive review picker: one screen per
// ambiguous town, one keystroke per decision.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loamworks/gazetteer-cli/internal/adapters/driving/tui/styles"
	"github.com/loamworks/gazetteer-cli/internal/core/domain"
)

// townGroup is one ambiguous town with its surviving candidates, in
// the order the resolution phase wrote them.
type townGroup struct {
	town       domain.Town
	candidates []domain.ScoredCandidate
}

// keyMap defines the review picker's key bindings.
type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Pick key.Binding
	Skip key.Binding
	Quit key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Pick, k.Skip, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next"),
		),
		Pick: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "pick"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip town"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model walks the operator through every ambiguous town.
type Model struct {
	styles *styles.Styles
	keys   keyMap
	help   help.Model

	groups   []townGroup
	current  int
	selected int
	width    int

	picks   []domain.ResolvedPlace
	skipped []townGroup
	aborted bool
	done    bool
}

// NewModel creates a review model from review-sheet entries. Entries
// are grouped by town in their original order.
func NewModel(entries []domain.ReviewEntry) *Model {
	return &Model{
		styles: styles.NewStyles(styles.DefaultTheme()),
		keys:   defaultKeyMap(),
		help:   help.New(),
		groups: groupByTown(entries),
	}
}

func groupByTown(entries []domain.ReviewEntry) []townGroup {
	var groups []townGroup
	index := make(map[string]int)
	for _, e := range entries {
		k := e.Town.QueryString()
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, townGroup{town: e.Town})
		}
		groups[i].candidates = append(groups[i].candidates, domain.ScoredCandidate{
			Candidate: e.Candidate,
			Score:     e.Score,
		})
	}
	return groups
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if len(m.groups) == 0 {
		m.done = true
		return tea.Quit
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, tea.Quit
	}

	group := m.groups[m.current]
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(group.candidates)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Pick):
		c := group.candidates[m.selected].Candidate
		m.picks = append(m.picks, domain.ResolvedPlace{
			Town:        group.town,
			OSMType:     c.OSMType,
			OSMID:       c.OSMID,
			DisplayName: c.DisplayName,
			Lat:         c.Lat,
			Lon:         c.Lon,
		})
		return m.advance()
	case key.Matches(msg, m.keys.Skip):
		m.skipped = append(m.skipped, group)
		return m.advance()
	case key.Matches(msg, m.keys.Quit):
		// Unvisited towns stay on the review sheet.
		m.skipped = append(m.skipped, m.groups[m.current:]...)
		m.aborted = true
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) advance() (tea.Model, tea.Cmd) {
	m.current++
	m.selected = 0
	if m.current >= len(m.groups) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done || len(m.groups) == 0 {
		return ""
	}

	group := m.groups[m.current]

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(
		fmt.Sprintf("Review %d of %d: %s", m.current+1, len(m.groups), group.town.Name)))
	b.WriteString("\n")
	if group.town.Region != "" || group.town.Country != "" {
		b.WriteString(m.styles.Muted.Render(group.town.QueryString()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, sc := range group.candidates {
		b.WriteString(m.renderCandidate(i, sc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderCandidate(index int, sc domain.ScoredCandidate) string {
	line := fmt.Sprintf("[%2d] %s/%d  %s",
		sc.Score, sc.Candidate.OSMType, sc.Candidate.OSMID, sc.Candidate.DisplayName)

	if index == m.selected {
		return m.styles.Selected.Render("> " + line)
	}
	return m.styles.Normal.Render("  " + line)
}

// Picks returns the boundaries the operator confirmed.
func (m *Model) Picks() []domain.ResolvedPlace {
	return m.picks
}

// Remaining returns the entries still needing review, flattened back
// to review-sheet rows.
func (m *Model) Remaining() []domain.ReviewEntry {
	var entries []domain.ReviewEntry
	for _, g := range m.skipped {
		for _, sc := range g.candidates {
			entries = append(entries, domain.ReviewEntry{
				Town:      g.town,
				Candidate: sc.Candidate,
				Score:     sc.Score,
			})
		}
	}
	return entries
}

// Aborted reports whether the operator quit before the last town.
func (m *Model) Aborted() bool {
	return m.aborted
}

// Run drives the picker to completion and returns the confirmed
// boundaries plus the entries still needing review.
func Run(entries []domain.ReviewEntry) (picks []domain.ResolvedPlace, remaining []domain.ReviewEntry, err error) {
	model := NewModel(entries)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, nil, fmt.Errorf("review session: %w", err)
	}

	m, ok := final.(*Model)
	if !ok {
		return nil, nil, fmt.Errorf("review session: unexpected model %T", final)
	}
	return m.Picks(), m.Remaining(), nil
}
