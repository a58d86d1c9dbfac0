// Command verifyctl is the operator CLI for the verification service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "verifyctl",
	Short: "Operate the MUC Library email verification service",
	Long: `verifyctl runs one-off maintenance against the configured store.

Configuration is read from the environment (and .env when present),
exactly as the API server reads it.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(roleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
