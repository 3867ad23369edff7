package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/siteledger/internal/csvexport"
)

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	t, err := csvexport.Build(args[0], e.store.Snapshot(ctx), e.files.Files())
	if err != nil {
		return err
	}

	if exportStdout {
		return csvexport.WriteTable(cmd.OutOrStdout(), t)
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(exportDir, csvexport.Filename(t.Name, time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := csvexport.WriteTable(f, t); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(t.Rows), path)
	return nil
}
