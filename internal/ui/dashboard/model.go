package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
	"github.com/nhle/siteledger/internal/store"
	"github.com/nhle/siteledger/internal/theme"
)

// Summary is the data the dashboard renders.
type Summary struct {
	Projects  int
	Ongoing   int
	Clients   int
	Labourers int
	Resources int

	Received   decimal.Decimal
	Due        decimal.Decimal
	PaidLabour decimal.Decimal

	// LowStock lists resources with less than a tenth of their purchase left.
	LowStock []model.Resource

	Storage quota.Usage
}

// Summarize derives the dashboard figures from a snapshot.
func Summarize(snap model.Snapshot, usage quota.Usage) Summary {
	s := Summary{
		Projects:  len(snap.Projects),
		Clients:   len(snap.Clients),
		Labourers: len(snap.Labourers),
		Resources: len(snap.Resources),
		Storage:   usage,
	}
	for _, p := range snap.Projects {
		if p.Status == model.ProjectOngoing {
			s.Ongoing++
		}
	}
	for _, c := range snap.Clients {
		received, due := model.ClientTotals(c)
		s.Received = s.Received.Add(received)
		s.Due = s.Due.Add(due)
	}
	for _, l := range snap.Labourers {
		s.PaidLabour = s.PaidLabour.Add(model.LabourerPaid(l))
	}
	tenth := decimal.NewFromFloat(0.1)
	for _, r := range snap.Resources {
		if r.QuantityPurchased.IsPositive() && r.Remaining.LessThan(r.QuantityPurchased.Mul(tenth)) {
			s.LowStock = append(s.LowStock, r)
		}
	}
	return s
}

type loadedMsg struct{ summary Summary }

// Model is the dashboard view.
type Model struct {
	store   store.Store
	usage   func() quota.Usage
	summary Summary
	loaded  bool
	bar     progress.Model
	width   int
	height  int
}

// New creates a dashboard reading from s and usage.
func New(s store.Store, usage func() quota.Usage, width, height int) Model {
	return Model{
		store:  s,
		usage:  usage,
		bar:    progress.New(progress.WithoutPercentage()),
		width:  width,
		height: height,
	}
}

// Init loads the summary.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a command that recomputes the summary.
func (m Model) Load() tea.Cmd {
	s, usage := m.store, m.usage
	return func() tea.Msg {
		return loadedMsg{summary: Summarize(s.Snapshot(context.Background()), usage())}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		m.summary = msg.summary
		m.loaded = true
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if !m.loaded {
		return lipgloss.NewStyle().Padding(1, 2).Foreground(theme.ColorGray).Render("Loading...")
	}
	s := m.summary

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Dashboard"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Projects   %d (%d ongoing)\n", s.Projects, s.Ongoing)
	fmt.Fprintf(&b, "Clients    %d\n", s.Clients)
	fmt.Fprintf(&b, "Labourers  %d\n", s.Labourers)
	fmt.Fprintf(&b, "Resources  %d\n\n", s.Resources)

	fmt.Fprintf(&b, "Received   %s\n", s.Received.StringFixed(2))
	fmt.Fprintf(&b, "Due        %s\n", s.Due.StringFixed(2))
	fmt.Fprintf(&b, "Wages paid %s\n\n", s.PaidLabour.StringFixed(2))

	if len(s.LowStock) > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorOrange).Render("Low stock"))
		b.WriteString("\n")
		for _, r := range s.LowStock {
			fmt.Fprintf(&b, "  %s: %s %s left\n", r.Type, r.Remaining.String(), r.Unit)
		}
		b.WriteString("\n")
	}

	b.WriteString(m.storageView())

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) storageView() string {
	u := m.summary.Storage
	color := theme.QuotaColor(u)

	bar := m.bar
	bar.Width = min(max(m.width-8, 10), 60)
	if lipgloss.HasDarkBackground() {
		bar.FullColor = color.Dark
	} else {
		bar.FullColor = color.Light
	}

	label := fmt.Sprintf("%s of %s used (%.1f%%)",
		quota.FormatBytes(u.Used), quota.FormatBytes(u.Total), u.Percent())
	lines := []string{"Storage", bar.ViewAs(min(u.Ratio, 1)), label}
	switch {
	case u.IsCritical:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ColorRed).Render("Storage almost full. Delete files to free space."))
	case u.IsWarning:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("Storage is running low."))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
