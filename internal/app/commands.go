package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/siteledger/internal/csvexport"
	"github.com/nhle/siteledger/internal/ui/command"
)

// commandNames feeds the palette's completion.
var commandNames = []string{
	"dashboard", "projects", "files", "back", "check", "logout", "quit",
	"export projects", "export clients", "export labourers", "export resources", "export files",
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd.Name {
	case "dashboard", "home":
		return m.navigate(pathDashboard)
	case "projects":
		return m.navigate(pathProjects)
	case "files":
		return m.navigate(pathFiles)
	case "back":
		return m.back()
	case "logout":
		return m.logout()
	case "quit", "q":
		return tea.Quit
	case "check":
		return m.checkConsistency()
	case "export":
		if len(cmd.Args) != 1 {
			return notice("usage: export <projects|clients|labourers|resources|files>")
		}
		return m.export(cmd.Args[0])
	default:
		return notice(fmt.Sprintf("unknown command %q", cmd.Name))
	}
}

func notice(s string) tea.Cmd {
	return func() tea.Msg { return noticeMsg(s) }
}

func (m *Model) export(kind string) tea.Cmd {
	d := m.deps
	log := m.log
	return func() tea.Msg {
		t, err := csvexport.Build(kind, d.Store.Snapshot(context.Background()), d.Files.Files())
		if err != nil {
			return noticeMsg(err.Error())
		}

		path := filepath.Join(d.ExportDir, csvexport.Filename(t.Name, time.Now()))
		f, err := os.Create(path)
		if err != nil {
			return noticeMsg(fmt.Sprintf("export failed: %v", err))
		}
		defer f.Close()

		if err := csvexport.WriteTable(f, t); err != nil {
			log.Error("writing export", "path", path, "error", err)
			return noticeMsg(fmt.Sprintf("export failed: %v", err))
		}
		return noticeMsg(fmt.Sprintf("Exported %d %s to %s", len(t.Rows), kind, path))
	}
}

func (m *Model) checkConsistency() tea.Cmd {
	s := m.deps.Store
	log := m.log
	return func() tea.Msg {
		errs := s.CheckConsistency(context.Background())
		if len(errs) == 0 {
			return noticeMsg("No consistency problems found")
		}
		for _, err := range errs {
			log.Warn("consistency problem", "error", err)
		}
		return noticeMsg(fmt.Sprintf("%d consistency problems, first: %v", len(errs), errs[0]))
	}
}
