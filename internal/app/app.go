package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/siteledger/internal/auth"
	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/history"
	"github.com/nhle/siteledger/internal/keys"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/quota"
	"github.com/nhle/siteledger/internal/store"
	"github.com/nhle/siteledger/internal/ui"
	"github.com/nhle/siteledger/internal/ui/command"
	"github.com/nhle/siteledger/internal/ui/dashboard"
	"github.com/nhle/siteledger/internal/ui/detail"
	"github.com/nhle/siteledger/internal/ui/filelist"
	helpview "github.com/nhle/siteledger/internal/ui/help"
	"github.com/nhle/siteledger/internal/ui/login"
	"github.com/nhle/siteledger/internal/ui/projects"
)

// ViewState represents the current active view in the console.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewProjects
	ViewDetail
	ViewFiles
	ViewHelp
	ViewCommand
)

// Deps are the services the console reads and writes through.
type Deps struct {
	Store   store.Store
	Files   *files.Registry
	Usage   func() quota.Usage
	Gate    *auth.Gate
	History *history.History
	Logger  *logger.Logger

	// ExportDir receives CSV files written by the export command.
	ExportDir string
}

type sessionCheckedMsg struct {
	session auth.Session
	ok      bool
}

type loggedOutMsg struct{ err error }

type noticeMsg string

// Model is the root Bubble Tea model that routes between views.
type Model struct {
	deps         Deps
	log          *logger.Logger
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	session      auth.Session
	notice       string

	loginView   login.Model
	dashboard   dashboard.Model
	projectView projects.Model
	detail      detail.Model
	fileView    filelist.Model
	helpView    helpview.Model
	commandView command.Model

	ready bool
}

// New creates the root console model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	return Model{
		deps:        d,
		log:         logger.OrNop(d.Logger).With("component", "console"),
		currentView: ViewLogin,
		keys:        k,
		loginView:   login.New(d.Gate, 80, 24),
		dashboard:   dashboard.New(d.Store, d.Usage, 80, 24),
		projectView: projects.New(d.Store, k, 80, 24),
		detail:      detail.New(d.Store, d.Files, 80, 24),
		fileView:    filelist.New(d.Files, d.Usage, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(commandNames, 80, 24),
	}
}

// Init checks for an existing login before showing any view.
func (m Model) Init() tea.Cmd {
	gate := m.deps.Gate
	return func() tea.Msg {
		sess, err := gate.Current(context.Background())
		return sessionCheckedMsg{session: sess, ok: err == nil}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.dashboard.SetSize(w, h)
		m.projectView.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.fileView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m, nil

	case sessionCheckedMsg:
		if !msg.ok {
			m.currentView = ViewLogin
			return m, m.loginView.Init()
		}
		m.session = msg.session
		cmd := m.resume()
		return m, cmd

	case login.LoggedInMsg:
		m.session = msg.Session
		m.notice = ""
		cmd := m.navigate(pathDashboard)
		return m, cmd

	case loggedOutMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Logout failed: %v", msg.err)
			return m, nil
		}
		m.session = auth.Session{}
		m.currentView = ViewLogin
		m.loginView = login.New(m.deps.Gate, m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.loginView.Init()

	case projects.OpenProjectMsg:
		cmd := m.navigate(projectPath(msg.ID))
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(msg)
		return m, cmd

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case tea.KeyMsg:
		if model, cmd, handled := m.handleGlobalKey(msg); handled {
			return model, cmd
		}
		return m.updateActiveView(msg)
	}

	return m.broadcast(msg)
}

// handleGlobalKey processes keys that work across views. handled is false
// when the key should go to the active view instead.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}
	if m.currentView == ViewLogin || (m.currentView == ViewProjects && m.projectView.Editing()) {
		return m, nil, false
	}

	switch m.currentView {
	case ViewHelp:
		if msg.String() == "?" || msg.String() == "esc" {
			m.currentView = m.previousView
		}
		return m, nil, true
	case ViewCommand:
		if msg.String() == "esc" {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "q":
		return m, tea.Quit, true
	case "?":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true
	case ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd = m.commandView.Focus()
	case "esc":
		cmd = m.back()
	case "1":
		cmd = m.navigate(pathDashboard)
	case "2":
		cmd = m.navigate(pathProjects)
	case "3":
		cmd = m.navigate(pathFiles)
	case "L":
		cmd = m.logout()
	default:
		return m, nil, false
	}
	return m, cmd, true
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewProjects:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewFiles:
		m.fileView, cmd = m.fileView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// broadcast hands a non-key message to every view. Each view only reacts to
// its own result messages, so loads that finish after a view switch still
// land.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds [6]tea.Cmd
	if m.currentView == ViewLogin {
		m.loginView, cmds[0] = m.loginView.Update(msg)
	}
	m.dashboard, cmds[1] = m.dashboard.Update(msg)
	m.projectView, cmds[2] = m.projectView.Update(msg)
	m.detail, cmds[3] = m.detail.Update(msg)
	m.fileView, cmds[4] = m.fileView.Update(msg)
	m.commandView, cmds[5] = m.commandView.Update(msg)
	return m, tea.Batch(cmds[:]...)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Site Ledger", m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewProjects:
		return m.projectView.View()
	case ViewDetail:
		return m.detail.View()
	case ViewFiles:
		return m.fileView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) headerStatus() string {
	if m.session.Username == "" {
		return "not logged in"
	}
	u := m.deps.Usage()
	status := fmt.Sprintf("%s | storage %.0f%%", m.session.Username, u.Percent())
	if u.IsCritical {
		status += " (full)"
	}
	return status
}

func (m Model) keyHints() string {
	if m.notice != "" && m.currentView != ViewLogin {
		return m.notice
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | j/k scroll"
	default:
		return "q quit | ? help | : command | 1 dashboard | 2 projects | 3 files | L log out"
	}
}

func (m Model) logout() tea.Cmd {
	gate := m.deps.Gate
	return func() tea.Msg {
		return loggedOutMsg{err: gate.Logout(context.Background())}
	}
}
