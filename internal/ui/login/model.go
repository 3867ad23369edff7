package login

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/siteledger/internal/auth"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/theme"
)

// Authenticator checks admin credentials.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (auth.Session, error)
}

// LoggedInMsg is emitted after a successful login.
type LoggedInMsg struct {
	Session auth.Session
}

type loginFailedMsg struct{ err error }

type credentials struct {
	username string
	password string
}

// Model is the login form.
type Model struct {
	auth    Authenticator
	form    *huh.Form
	creds   *credentials
	errMsg  string
	pending bool
	width   int
	height  int
}

// New creates a login view.
func New(a Authenticator, width, height int) Model {
	m := Model{auth: a, creds: &credentials{}, width: width, height: height}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.creds.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.creds.password).
				Validate(required("password")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(loginFailedMsg); ok {
		m.pending = false
		m.errMsg = "Login failed"
		if !errors.Is(msg.err, model.ErrInvalidCredentials) {
			m.errMsg = msg.err.Error()
		}
		m.creds.password = ""
		m.form = m.buildForm()
		return m, m.form.Init()
	}
	if m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.pending = true
		return m, m.submit()
	case huh.StateAborted:
		return m, tea.Quit
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	a := m.auth
	user, pass := m.creds.username, m.creds.password
	return func() tea.Msg {
		sess, err := a.Login(context.Background(), user, pass)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return LoggedInMsg{Session: sess}
	}
}

// View renders the form.
func (m Model) View() string {
	parts := []string{theme.TitleStyle.Render("Admin Login"), m.form.View()}
	if m.pending {
		parts = append(parts, theme.HelpStyle.Render("Checking..."))
	}
	if m.errMsg != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.errMsg))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 30), 60)
}
