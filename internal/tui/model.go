package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/character-gallery/pkg/controller"
	"github.com/Sternrassler/character-gallery/pkg/rickmorty"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the root Bubble Tea model for the gallery TUI.
type Model struct {
	ctx     context.Context
	gallery Gallery
	keys    keyMap
	help    help.Model
	search  textinput.Model
	view    controller.View
	width   int
	height  int
}

// NewModel creates a Model over gallery. ctx bounds every fetch the model
// starts.
func NewModel(ctx context.Context, gallery Gallery) Model {
	ti := textinput.New()
	ti.Placeholder = "Search characters..."
	ti.Prompt = "🔍 "
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	return Model{
		ctx:     ctx,
		gallery: gallery,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		search:  ti,
		view:    gallery.Snapshot(),
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.run("fetch", m.gallery.FetchResults))
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(10, msg.Width-10)
		return m, nil

	case ViewMsg:
		// Snapshots of a superseded generation can still be in the queue.
		if msg.View.Generation >= m.view.Generation {
			m.view = msg.View
		}
		return m, nil

	case eventDoneMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleKey routes navigation keys to the gallery and everything else to the
// search box.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Prev):
		return m, m.run("prev", m.gallery.Previous)

	case key.Matches(msg, m.keys.Next):
		return m, m.run("next", m.gallery.Next)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.run("fetch", m.gallery.FetchResults)

	case key.Matches(msg, m.keys.Jump):
		i, ok := jumpIndex(msg.String())
		if !ok || i >= len(m.view.Window) {
			return m, nil
		}
		page := m.view.Window[i]
		return m, m.run("page", func(ctx context.Context) error {
			return m.gallery.SetPage(ctx, page)
		})
	}

	before := m.search.Value()
	var inputCmd tea.Cmd
	m.search, inputCmd = m.search.Update(msg)

	text := m.search.Value()
	if text == before {
		return m, inputCmd
	}
	return m, tea.Batch(inputCmd, m.run("search", func(ctx context.Context) error {
		return m.gallery.SetSearchText(ctx, text)
	}))
}

// run wraps a blocking gallery call in a command. The controller reports
// progress through ViewMsg, so the result only signals completion.
func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return eventDoneMsg{Op: op, Err: fn(ctx)}
	}
}

// View renders the search box, the card grid, the page window and help.
func (m Model) View() string {
	sections := []string{
		searchStyle.Render(m.search.View()),
		m.viewStatus(),
	}
	if grid := m.viewGrid(); grid != "" {
		sections = append(sections, grid)
	}
	sections = append(sections, m.viewPages(), m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewStatus() string {
	switch {
	case m.view.Err != "":
		return errorStyle.Render("Error: " + m.view.Err)
	case m.view.Loading:
		return "Loading..."
	case len(m.view.Characters) == 0:
		return "No characters found."
	default:
		return labelStyle.Render(fmt.Sprintf("%d characters · page %d of %d",
			len(m.view.Characters), m.view.Page, m.view.TotalPages))
	}
}

func (m Model) viewGrid() string {
	if len(m.view.Characters) == 0 {
		return ""
	}

	cols := Columns(m.width)
	var rows []string
	for start := 0; start < len(m.view.Characters); start += cols {
		end := min(start+cols, len(m.view.Characters))
		cards := make([]string, 0, end-start)
		for _, c := range m.view.Characters[start:end] {
			cards = append(cards, m.renderCard(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCard renders one character card.
func (m Model) renderCard(c rickmorty.Character) string {
	lines := []string{
		titleStyle.Render(c.Name),
		fmt.Sprintf("%s %s - %s", StatusDot(c.Status), c.Status, c.Species),
		"",
		labelStyle.Render("Last known location:"),
		c.Location.Name,
		"",
		labelStyle.Render("First seen in:"),
		m.view.EpisodeLabel(c.ID),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewPages() string {
	buttons := make([]string, 0, len(m.view.Window)+2)
	buttons = append(buttons, pageStyle.Render("‹ Previous"))
	for _, p := range m.view.Window {
		style := pageStyle
		if m.view.IsCurrent(p) {
			style = currentPageStyle
		}
		buttons = append(buttons, style.Render(fmt.Sprintf("%d", p)))
	}
	buttons = append(buttons, pageStyle.Render("Next ›"))
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}
