// Package main provides scorectl, the operator CLI for offline rescoring and schema migrations.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "scorectl",
	Short:         "Interview Assistant operator tool",
	Long:          "scorectl re-derives canonical interview scores from stored evaluation payloads and manages database migrations.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
