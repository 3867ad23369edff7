package app

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Console routes, stored in the navigation history.
const (
	pathDashboard = "/dashboard"
	pathProjects  = "/projects"
	pathFiles     = "/files"
)

func projectPath(id string) string {
	return pathProjects + "/" + id
}

// navigate records path in the history and shows it.
func (m *Model) navigate(path string) tea.Cmd {
	if m.deps.History != nil {
		if err := m.deps.History.Push(context.Background(), path); err != nil {
			m.log.Warn("recording navigation", "path", path, "error", err)
		}
	}
	return m.route(path)
}

// back returns to the previous history entry.
func (m *Model) back() tea.Cmd {
	if m.deps.History == nil {
		return m.route(pathDashboard)
	}
	path, ok, err := m.deps.History.Back(context.Background())
	if err != nil {
		m.log.Warn("navigating back", "error", err)
	}
	if !ok {
		return nil
	}
	return m.route(path)
}

// resume reopens the last visited view after a restart.
func (m *Model) resume() tea.Cmd {
	if m.deps.History != nil {
		if entries := m.deps.History.Entries(); len(entries) > 0 {
			return m.route(entries[len(entries)-1])
		}
	}
	return m.navigate(pathDashboard)
}

// route switches to the view for path and returns its load command.
// Unknown paths fall back to the dashboard.
func (m *Model) route(path string) tea.Cmd {
	m.notice = ""
	switch {
	case path == pathProjects:
		m.currentView = ViewProjects
		return m.projectView.Init()
	case strings.HasPrefix(path, pathProjects+"/"):
		m.currentView = ViewDetail
		return m.detail.Load(strings.TrimPrefix(path, pathProjects+"/"))
	case path == pathFiles:
		m.currentView = ViewFiles
		return m.fileView.Init()
	default:
		m.currentView = ViewDashboard
		return m.dashboard.Init()
	}
}
