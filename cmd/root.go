// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "team-eval",
	Short: "A CLI tool to evaluate student team repositories.",
	Long: `team-eval evaluates the team repositories of a course: it clones each
team's repository, checks out the state at the submission deadline, tallies
commits per contributor, queries the team's Jira board for completed issues,
runs the game benchmarks against the team's code, and writes the results as
semicolon-delimited reports.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
