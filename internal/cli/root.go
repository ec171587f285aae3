package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "statforge",
	Short: "Statforge - content generation pipeline for statistics drafts",
	Long: `Statforge turns a catalog of RSS and API sources into moderated content
drafts. Each run probes its sources, fetches candidate items, validates
the statistical claims they carry, drops duplicates, and files the
survivors as pending statistic or antistic drafts.

Run it as a long-lived service with an admin API, or as a one-shot
generation from the command line.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("statforge v0.1.0")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
