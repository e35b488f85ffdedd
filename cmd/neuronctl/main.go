// Command neuronctl runs operator tasks against the ledger database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "neuronctl",
	Short: "Operator tools for the Neuron ledger",
	Long: `neuronctl manages the ledger database outside the API server.

Configuration is read the same way the server reads it: defaults, then a .env
file, then environment variables (PGSQL_URL, MIGRATIONS_PATH, DEFAULT_CURRENCY).`,
	SilenceUsage: true,
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
