package projects

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nhle/siteledger/internal/keys"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/store"
	"github.com/nhle/siteledger/internal/theme"
)

// OpenProjectMsg asks the parent to show a project's detail.
type OpenProjectMsg struct {
	ID string
}

// ProjectChangedMsg signals that projects were created, updated or deleted.
type ProjectChangedMsg struct{}

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name     string
	location string
	status   model.ProjectStatus
	progress string
	budget   string
	notes    string
	confirm  bool
}

type projectsLoadedMsg struct {
	projects []model.Project
}

type projectSavedMsg struct{ err error }
type projectDeletedMsg struct{ err error }

// Model lists projects and edits them with huh forms.
type Model struct {
	mode        projectMode
	store       store.Store
	keys        *keys.KeyMap
	projects    []model.Project
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a project list model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		store: s,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads projects from the store.
func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// Editing reports whether a form has focus, so global keys stay local.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		m.projects = msg.projects
		if m.selectedIdx >= len(m.projects) {
			m.selectedIdx = max(len(m.projects)-1, 0)
		}
		return m, nil

	case projectSavedMsg:
		m.statusMsg = "Project saved"
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.mode = modeList
		return m, tea.Batch(m.loadProjects(), func() tea.Msg { return ProjectChangedMsg{} })

	case projectDeletedMsg:
		m.statusMsg = "Project deleted"
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.mode = modeList
		return m, tea.Batch(m.loadProjects(), func() tea.Msg { return ProjectChangedMsg{} })

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.projects)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.projects) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.projects)) % len(m.projects)
		}

	case key.Matches(msg, m.keys.Select):
		if p, ok := m.selected(); ok {
			return m, func() tea.Msg { return OpenProjectMsg{ID: p.ID} }
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjects()

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		*m.fb = formBindings{status: model.ProjectPlanning, progress: "0", budget: "0"}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editingID = p.ID
		*m.fb = formBindings{
			name:     p.Name,
			location: p.Location,
			status:   p.Status,
			progress: strconv.Itoa(p.Progress),
			budget:   p.Budget.String(),
			notes:    p.Notes,
		}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) selected() (model.Project, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.projects) {
		return model.Project{}, false
	}
	return m.projects[m.selectedIdx], true
}

func (m Model) buildForm() *huh.Form {
	statuses := []model.ProjectStatus{model.ProjectPlanning, model.ProjectOngoing, model.ProjectCompleted, model.ProjectOnHold}
	options := make([]huh.Option[model.ProjectStatus], 0, len(statuses))
	for _, s := range statuses {
		options = append(options, huh.NewOption(string(s), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Project name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Location").
				Value(&m.fb.location),
			huh.NewSelect[model.ProjectStatus]().
				Title("Status").
				Options(options...).
				Value(&m.fb.status),
			huh.NewInput().
				Title("Progress (%)").
				Value(&m.fb.progress).
				Validate(validateProgress),
			huh.NewInput().
				Title("Budget").
				Value(&m.fb.budget).
				Validate(validateBudget),
			huh.NewText().
				Title("Notes").
				Value(&m.fb.notes),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func validateProgress(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return fmt.Errorf("progress must be a whole number from 0 to 100")
	}
	return nil
}

func validateBudget(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return fmt.Errorf("budget must be a non-negative amount")
	}
	return nil
}

func (m Model) buildConfirmForm() *huh.Form {
	p, _ := m.selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete project %q?", p.Name)).
				Description("Assigned clients, labourers and resources are unassigned. Files linked to the project are deleted.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m, m.saveProject()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if p, ok := m.selected(); ok && m.fb.confirm {
			return m, m.deleteProject(p.ID)
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the project list or the active form.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Projects"))
	b.WriteString("\n\n")

	if len(m.projects) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No projects yet. Press 'n' to create one."))
	}
	for i, p := range m.projects {
		label := fmt.Sprintf("%-28s %s  %3d%%", p.Name, theme.StatusStyle(p.Status).Render(fmt.Sprintf("%-10s", p.Status)), p.Progress)
		if p.Location != "" {
			label += "  " + p.Location
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter open | n new | e edit | d delete | r refresh | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) loadProjects() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return projectsLoadedMsg{projects: s.GetProjects(context.Background())}
	}
}

func (m Model) saveProject() tea.Cmd {
	s := m.store
	fb := *m.fb
	editID := m.editingID
	return func() tea.Msg {
		progress, _ := strconv.Atoi(strings.TrimSpace(fb.progress))
		budget, _ := decimal.NewFromString(strings.TrimSpace(fb.budget))

		ctx := context.Background()
		if editID == "" {
			_, err := s.CreateProject(ctx, model.Project{
				Name:     strings.TrimSpace(fb.name),
				Location: fb.location,
				Status:   fb.status,
				Progress: progress,
				Budget:   budget,
				Notes:    fb.notes,
			})
			return projectSavedMsg{err: err}
		}
		_, err := s.UpdateProject(ctx, editID, model.ProjectPatch{
			Name:     model.Some(strings.TrimSpace(fb.name)),
			Location: model.Some(fb.location),
			Status:   model.Some(fb.status),
			Progress: model.Some(progress),
			Budget:   model.Some(budget),
			Notes:    model.Some(fb.notes),
		})
		return projectSavedMsg{err: err}
	}
}

func (m Model) deleteProject(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return projectDeletedMsg{err: s.DeleteProject(context.Background(), id)}
	}
}
