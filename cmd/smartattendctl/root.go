package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smartattendctl",
	Short: "SmartAttend tenant isolation service",
	Long: `smartattendctl manages the SmartAttend tenant isolation service:
the API server, database schema, configuration, and tenant tokens.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
