package main

import (
	"github.com/spf13/cobra"

	"github.com/nhle/siteledger/internal/model"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "siteledger",
		Short:         "Track projects, clients, labour and materials for a construction business",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	consoleCmd = &cobra.Command{
		Use:   "console",
		Short: "Open the terminal console",
		Args:  cobra.NoArgs,
		RunE:  runConsole, // cmd_console.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin HTTP API and metrics",
		Args:  cobra.NoArgs,
		RunE:  runServe, // cmd_serve.go
	}

	exportCmd = &cobra.Command{
		Use:       "export <projects|clients|labourers|resources|files>",
		Short:     "Write one table as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"projects", "clients", "labourers", "resources", "files"},
		RunE:      runExport, // cmd_export.go
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load the sample data and report what was created",
		Args:  cobra.NoArgs,
		RunE:  runSeed, // cmd_seed.go
	}

	passwdCmd = &cobra.Command{
		Use:   "passwd",
		Short: "Set the admin password in the OS keyring",
		Args:  cobra.NoArgs,
		RunE:  runPasswd, // cmd_passwd.go
	}
)

var (
	serveAddr      string
	exportDir      string
	exportStdout   bool
	seedVerify     bool
	seedWriteConf  bool
	passwdHashOnly bool
	passwdClear    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to config.yaml")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides http.addr)")

	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write the CSV file to")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "write the CSV to stdout instead of a file")

	seedCmd.Flags().BoolVar(&seedVerify, "verify", false, "run the consistency check after loading")
	seedCmd.Flags().BoolVar(&seedWriteConf, "write-config", false, "write the effective config to --config")

	passwdCmd.Flags().BoolVar(&passwdHashOnly, "hash", false, "print a bcrypt hash for auth.password_hash instead of using the keyring")
	passwdCmd.Flags().BoolVar(&passwdClear, "clear", false, "remove the keyring override")

	rootCmd.AddCommand(consoleCmd, serveCmd, exportCmd, seedCmd, passwdCmd)
}
