package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/siteledger/internal/model"
)

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	// With seed.enabled the data is already in place after openEnv.
	if _, err := e.loadSeed(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	snap := e.store.Snapshot(ctx)
	fmt.Fprintf(out, "%d projects, %d clients, %d labourers, %d resources\n",
		len(snap.Projects), len(snap.Clients), len(snap.Labourers), len(snap.Resources))

	if seedVerify {
		problems := e.store.CheckConsistency(ctx)
		for _, p := range problems {
			fmt.Fprintln(out, "  ", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d consistency problems", len(problems))
		}
		fmt.Fprintln(out, "consistency check passed")
	}

	if seedWriteConf {
		if err := model.SaveConfig(configPath, e.cfg); err != nil {
			return err
		}
		fmt.Fprintln(out, "wrote", configPath)
	}
	return nil
}
