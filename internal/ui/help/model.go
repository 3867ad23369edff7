package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/siteledger/internal/keys"
	"github.com/nhle/siteledger/internal/theme"
)

// Commands lists the command palette entries shown below the key table.
var Commands = []string{
	"dashboard", "projects", "files", "back",
	"export <projects|clients|labourers|resources|files>",
	"check", "logout", "quit",
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{keys: keys, help: h, width: width, height: height}
}

// Update is a no-op; the overlay is closed by the parent.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the key table and the command list.
func (m Model) View() string {
	m.help.Width = m.width - 4
	m.help.ShowAll = true

	cmds := theme.TitleStyle.Render("Commands")
	for _, c := range Commands {
		cmds += "\n  :" + c
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		theme.HelpStyle.Render(cmds),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
