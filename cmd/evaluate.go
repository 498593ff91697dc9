// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ostaubli/team-eval/internal/benchmark"
	"github.com/ostaubli/team-eval/internal/domain"
	"github.com/ostaubli/team-eval/internal/execx"
	"github.com/ostaubli/team-eval/internal/gitrepo"
	"github.com/ostaubli/team-eval/internal/report"
	"github.com/ostaubli/team-eval/internal/roster"
	"github.com/ostaubli/team-eval/internal/tracker"
	"github.com/ostaubli/team-eval/internal/usecase"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluates all teams on the roster and writes the report CSVs",
	Long: `Reads the team roster from the spreadsheet given by SPREADSHEET_URL,
evaluates every team (commit history, Jira board, game benchmarks) and writes
the summary plus per-test breakdown reports as semicolon-delimited CSV files.

Required environment: SPREADSHEET_URL, TEMPDIR.
Optional environment: DEADLINE (git-log date, defaults to now), JIRA_EMAIL,
JIRA_API_TOKEN, BENCHMARK_REPO_URL.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		// Configuration errors at startup are fatal: without a roster or
		// a scratch directory no partial result is possible.
		sheetURL := os.Getenv("SPREADSHEET_URL")
		if sheetURL == "" {
			fmt.Fprintln(os.Stderr, "Error: SPREADSHEET_URL environment variable is not set.")
			os.Exit(1)
		}
		scratchDir := os.Getenv("TEMPDIR")
		if scratchDir == "" {
			fmt.Fprintln(os.Stderr, "Error: TEMPDIR environment variable is not set.")
			os.Exit(1)
		}
		deadline := os.Getenv("DEADLINE")
		if deadline == "" {
			deadline = time.Now().Format("2006-01-02 15:04:05")
		}
		creds := tracker.Credentials{
			Email:    os.Getenv("JIRA_EMAIL"),
			APIToken: os.Getenv("JIRA_API_TOKEN"),
		}

		output, _ := cmd.Flags().GetString("output")
		breakdowns, _ := cmd.Flags().GetStringSlice("breakdown")
		staff, _ := cmd.Flags().GetStringSlice("staff")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		fairnessOn, _ := cmd.Flags().GetBool("fairness")
		fairnessContributors, _ := cmd.Flags().GetInt("fairness-contributors")
		fairnessMinCommits, _ := cmd.Flags().GetInt("fairness-min-commits")

		var fairness *domain.FairnessPolicy
		if fairnessOn {
			fairness = &domain.FairnessPolicy{
				Contributors: fairnessContributors,
				MinCommits:   fairnessMinCommits,
			}
		}

		// Inject dependencies and run the evaluation.
		runner := execx.Local{}
		git := gitrepo.New(runner, logger)
		harness := benchmark.New(benchmark.Config{
			SuiteRepoURL: os.Getenv("BENCHMARK_REPO_URL"),
			GameTimeout:  timeout,
		}, runner, git, logger)
		evaluator := usecase.New(usecase.Config{
			ScratchDir: scratchDir,
			Deadline:   deadline,
			Staff:      staff,
			Fairness:   fairness,
		}, git, git, tracker.New(creds, logger), harness, logger)

		teams, err := roster.New(nil, logger).Fetch(ctx, sheetURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read team roster: %v\n", err)
			os.Exit(1)
		}
		suiteDir, err := harness.PrepareSuite(ctx, scratchDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prepare benchmark suite: %v\n", err)
			os.Exit(1)
		}

		evals := evaluator.EvaluateAll(ctx, teams, suiteDir)
		if err := os.RemoveAll(suiteDir); err != nil {
			logger.Printf("Failed to remove benchmark suite dir: %v", err)
		}

		summary := report.MainTable(teams, evals, harness.Games(), fairnessOn)
		if err := report.WriteFile(output, summary); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", output, err)
			os.Exit(1)
		}
		for _, game := range breakdowns {
			path := game + "_test_overview.csv"
			if err := report.WriteFile(path, report.TestTable(game, teams, evals)); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Evaluated %d teams, results written to %s\n", len(teams), output)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("output", "o", "evaluation_results.csv", "Path of the main summary CSV")
	evaluateCmd.Flags().StringSlice("breakdown", []string{"uno", "dog"}, "Games that get a per-test breakdown CSV")
	evaluateCmd.Flags().StringSlice("staff", []string{"Oliver Staubli", "samhab"}, "Contributor names excluded from commit tallies")
	evaluateCmd.Flags().Duration("timeout", benchmark.DefaultGameTimeout, "Per-game benchmark timeout")
	evaluateCmd.Flags().Bool("fairness", false, "Add a contribution fairness verdict column")
	evaluateCmd.Flags().Int("fairness-contributors", 5, "Exact number of contributors the fairness check requires")
	evaluateCmd.Flags().Int("fairness-min-commits", 4, "Commit count every contributor must exceed")
}
