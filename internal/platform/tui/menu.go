package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/registry"
)

// MenuItem represents a selectable game in the menu.
type MenuItem struct {
	GameID      string
	Title       string
	MembersOnly bool
}

// RequestFunc files a membership request for the current user and returns
// a line to show in the menu.
type RequestFunc func() (string, error)

var (
	menuTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	menuLockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	menuNoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// MenuModel is the Bubble Tea model for the game picker menu.
type MenuModel struct {
	items          []MenuItem
	cursor         int
	width          int
	height         int
	config         core.RuntimeConfig
	access         membership.Access
	request        RequestFunc
	keyMapper      *KeyMapper
	notice         string
	quitting       bool
	selected       *MenuItem
	openScoreboard bool
}

// NewMenuModel creates a menu over the registered games. request may be nil
// when membership requests cannot be filed from this terminal.
func NewMenuModel(cfg core.RuntimeConfig, access membership.Access, request RequestFunc) MenuModel {
	if access == nil {
		access = membership.Anonymous{}
	}

	games := registry.List()
	items := make([]MenuItem, 0, len(games))
	for _, g := range games {
		items = append(items, MenuItem{
			GameID:      g.ID,
			Title:       g.Title,
			MembersOnly: g.MembersOnly,
		})
	}

	return MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		access:    access,
		request:   request,
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
		m.notice = ""

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		m.notice = ""

	case MenuActionSelect:
		if len(m.items) == 0 {
			return m, nil
		}
		item := m.items[m.cursor]
		if !membership.CanPlay(m.access, item.MembersOnly) {
			m.notice = m.lockedNotice()
			return m, nil
		}
		m.selected = &item
		return m, tea.Quit

	case MenuActionRequest:
		if m.request == nil || m.access.IsMember() {
			return m, nil
		}
		text, err := m.request()
		if err != nil {
			m.notice = "Request failed: " + err.Error()
		} else {
			m.notice = text
		}

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, tea.Quit
	}

	return m, nil
}

func (m MenuModel) lockedNotice() string {
	if !m.access.IsAuthenticated() {
		return "Members only: log in with a member account to play."
	}
	if m.request != nil {
		return "Members only: press M to request membership."
	}
	return "Members only: ask an operator for membership."
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("  G E M   A R C A D E  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a game", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + item.Title
		if item.MembersOnly {
			tag := " [members]"
			if !membership.CanPlay(m.access, true) {
				tag = menuLockStyle.Render(tag)
			}
			line += tag
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(centerText(menuNoticeStyle.Render(m.notice), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Tab: Scores  |  Q: Quit"
	if m.request != nil && !m.access.IsMember() {
		controls = fmt.Sprintf("%s  |  M: Membership", controls)
	}
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Notice returns the message currently shown under the game list.
func (m MenuModel) Notice() string {
	return m.notice
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within the given width, ignoring ANSI styling.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	GameID          string
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the menu in the local terminal and returns the selection.
func RunMenu(cfg core.RuntimeConfig, access membership.Access, request RequestFunc) (MenuResult, error) {
	p := tea.NewProgram(NewMenuModel(cfg, access, request), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{Config: m.Config()}
	switch {
	case m.WantsScoreboard():
		result.WantsScoreboard = true
	case m.Selected() != nil:
		result.GameID = m.Selected().GameID
	default:
		result.Quit = true
	}
	return result, nil
}
