package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "tidytab",
		Short:         "Find and remove duplicate columns in CSV and Excel files",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newCleanCmd(),
		newResolveCmd(),
		newMigrateCmd(),
		newPruneCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
