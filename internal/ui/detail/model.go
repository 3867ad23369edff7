package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
	"github.com/nhle/siteledger/internal/store"
	"github.com/nhle/siteledger/internal/theme"
)

// Detail is everything shown for one project.
type Detail struct {
	Project model.Project
	Members model.ProjectMembers
	Files   []model.StoredFile
}

// LoadedMsg carries a loaded project detail. Detail is nil when the project
// no longer exists.
type LoadedMsg struct {
	Detail *Detail
}

// Model is the project detail view.
type Model struct {
	detail   *Detail
	viewport viewport.Model
	store    store.Store
	files    *files.Registry
	width    int
	height   int
	loading  bool
}

// New creates a detail view.
func New(s store.Store, reg *files.Registry, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		store:    s,
		files:    reg,
		width:    width,
		height:   height,
	}
}

// Load returns a command that reads the project, its members and its files.
func (m *Model) Load(projectID string) tea.Cmd {
	m.loading = true
	s, reg := m.store, m.files
	return func() tea.Msg {
		ctx := context.Background()
		p, ok := s.GetProjectByID(ctx, projectID)
		if !ok {
			return LoadedMsg{}
		}
		return LoadedMsg{Detail: &Detail{
			Project: p,
			Members: s.LinkedEntities(ctx, projectID),
			Files:   reg.FilesByLink(model.EntityProject, projectID, ""),
		}}
	}
}

// ProjectID returns the id of the shown project, or "".
func (m Model) ProjectID() string {
	if m.detail == nil {
		return ""
	}
	return m.detail.Project.ID
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(LoadedMsg); ok {
		m.detail = msg.Detail
		m.loading = false
		m.viewport.SetContent(Render(m.detail))
		m.viewport.GotoTop()
		return m, nil
	}

	// j/k, up/down and pgup/pgdn scroll.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	centered := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.loading:
		return centered.Render("Loading project...")
	case m.detail == nil:
		return centered.Render("Project not found")
	}
	return m.viewport.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.detail != nil {
		m.viewport.SetContent(Render(m.detail))
	}
}

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(theme.ColorGray).Width(12)
)

// Render formats a project detail as plain scrollable text.
func Render(d *Detail) string {
	if d == nil {
		return ""
	}
	p := d.Project

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(p.Name))
	b.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("Status", theme.StatusStyle(p.Status).Render(string(p.Status)))
	field("Progress", fmt.Sprintf("%d%%", p.Progress))
	field("Location", p.Location)
	field("Budget", p.Budget.StringFixed(2))
	if !p.StartDate.IsZero() {
		field("Start", p.StartDate.Format("2006-01-02"))
	}
	if !p.EndDate.IsZero() {
		field("End", p.EndDate.Format("2006-01-02"))
	}
	field("Notes", p.Notes)
	field("Description", p.Description)

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Clients (%d)", len(d.Members.Clients))))
	b.WriteString("\n")
	for _, c := range d.Members.Clients {
		received, due := model.ClientTotals(c)
		fmt.Fprintf(&b, "  %s  received %s, due %s\n", c.Name, received.StringFixed(2), due.StringFixed(2))
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Labourers (%d)", len(d.Members.Labourers))))
	b.WriteString("\n")
	for _, l := range d.Members.Labourers {
		fmt.Fprintf(&b, "  %s  %s, paid %s\n", l.Name, l.Status, model.LabourerPaid(l).StringFixed(2))
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Resources (%d)", len(d.Members.Resources))))
	b.WriteString("\n")
	for _, r := range d.Members.Resources {
		fmt.Fprintf(&b, "  %s  %s of %s %s left\n", r.Type, r.Remaining, r.QuantityPurchased, r.Unit)
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Files (%d)", len(d.Files))))
	b.WriteString("\n")
	for _, f := range d.Files {
		fmt.Fprintf(&b, "  %s  %s, %s\n", f.Name, quota.FormatBytes(f.Size), humanize.Time(f.UploadedAt))
	}

	return b.String()
}
