// Command siteledger runs the construction-site ledger: a terminal console,
// an admin HTTP API, and a few maintenance commands sharing one local state.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
