package main

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/siteledger/internal/app"
	"github.com/nhle/siteledger/internal/history"
)

func runConsole(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	hist, err := history.Load(ctx, e.kv)
	if err != nil {
		return err
	}

	exportDir, err := filepath.Abs(".")
	if err != nil {
		return err
	}

	m := app.New(app.Deps{
		Store:     e.store,
		Files:     e.files,
		Usage:     e.uploads.Usage,
		Gate:      e.gate,
		History:   hist,
		Logger:    e.log,
		ExportDir: exportDir,
	})

	e.log.Info("console started", "config", configPath)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}
