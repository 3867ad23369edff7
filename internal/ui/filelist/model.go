package filelist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/keys"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
	"github.com/nhle/siteledger/internal/theme"
)

// FilesChangedMsg signals that a file was deleted.
type FilesChangedMsg struct{}

type loadedMsg struct {
	files []model.StoredFile
	usage quota.Usage
}

type deletedMsg struct {
	name string
	err  error
}

// Model is the stored-files table.
type Model struct {
	reg       *files.Registry
	usage     func() quota.Usage
	keys      *keys.KeyMap
	table     table.Model
	files     []model.StoredFile
	total     quota.Usage
	statusMsg string
	width     int
	height    int
}

// New creates a files view.
func New(reg *files.Registry, usage func() quota.Usage, k *keys.KeyMap, width, height int) Model {
	t := table.New(table.WithColumns(columns(width)), table.WithFocused(true))
	m := Model{reg: reg, usage: usage, keys: k, table: t}
	m.SetSize(width, height)
	return m
}

func columns(width int) []table.Column {
	name := max(width-58, 16)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Type", Width: 16},
		{Title: "Size", Width: 10},
		{Title: "Linked to", Width: 12},
		{Title: "Uploaded", Width: 14},
	}
}

// Rows converts files to table rows.
func Rows(list []model.StoredFile) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, f := range list {
		linked := "-"
		if f.LinkedTo != nil {
			linked = string(f.LinkedTo.Type)
			if f.LinkedTo.RecordID != "" {
				linked += " record"
			}
		}
		rows = append(rows, table.Row{
			f.Name,
			f.Type,
			quota.FormatBytes(f.Size),
			linked,
			humanize.Time(f.UploadedAt),
		})
	}
	return rows
}

// Init loads the file list.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command that reads the registry.
func (m Model) Load() tea.Cmd {
	reg, usage := m.reg, m.usage
	return func() tea.Msg {
		return loadedMsg{files: reg.Files(), usage: usage()}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.files = msg.files
		m.total = msg.usage
		m.table.SetRows(Rows(m.files))
		if m.table.Cursor() >= len(m.files) {
			m.table.SetCursor(max(len(m.files)-1, 0))
		}
		return m, nil

	case deletedMsg:
		m.statusMsg = fmt.Sprintf("Deleted %s", msg.name)
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		return m, tea.Batch(m.Load(), func() tea.Msg { return FilesChangedMsg{} })

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Delete):
			if f, ok := m.selected(); ok {
				return m, m.deleteFile(f)
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) selected() (model.StoredFile, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.files) {
		return model.StoredFile{}, false
	}
	return m.files[i], true
}

func (m Model) deleteFile(f model.StoredFile) tea.Cmd {
	reg := m.reg
	return func() tea.Msg {
		return deletedMsg{name: f.Name, err: reg.DeleteFile(context.Background(), f.ID)}
	}
}

// View renders the table with a usage line.
func (m Model) View() string {
	usage := lipgloss.NewStyle().Foreground(theme.QuotaColor(m.total)).Render(
		fmt.Sprintf("%d files, %s of %s used", len(m.files), quota.FormatBytes(m.total.Used), quota.FormatBytes(m.total.Total)),
	)

	body := m.table.View()
	if len(m.files) == 0 {
		body = theme.EmptyStyle.Render("No files uploaded yet.")
	}

	parts := []string{theme.TitleStyle.Render("Files"), usage, "", body}
	if m.statusMsg != "" {
		parts = append(parts, "", theme.NoticeStyle.Render(m.statusMsg))
	}
	parts = append(parts, "", theme.HelpStyle.Render("d delete | r refresh | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width - 4))
	m.table.SetHeight(max(height-10, 3))
}
