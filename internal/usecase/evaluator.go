// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ostaubli/team-eval/internal/domain"
)

// Stager prepares an isolated, disposable checkout of a team repository.
type Stager interface {
	Stage(ctx context.Context, repoURL, dir string) error
	RewindToDeadline(ctx context.Context, dir, deadline string) error
}

// ContributionAnalyzer derives a per-author commit tally from a staged
// repository.
type ContributionAnalyzer interface {
	TallyCommits(ctx context.Context, dir string) (domain.CommitTally, error)
}

// IssueAnalyzer tallies completed issues on a team's tracker board.
type IssueAnalyzer interface {
	TallyDoneIssues(ctx context.Context, boardURL string) (domain.IssueTally, error)
}

// SuiteRunner runs the full benchmark suite against a staged checkout.
type SuiteRunner interface {
	RunAll(ctx context.Context, teamDir, suiteDir string) (map[string]domain.BenchmarkResult, error)
}

// Config holds the evaluation policy and paths.
type Config struct {
	// ScratchDir is the directory under which per-team checkouts are
	// created, keyed by the team's unique token.
	ScratchDir string
	// Deadline is a git-log-compatible timestamp; work after it is not
	// graded.
	Deadline string
	// Staff lists contributor names filtered from every commit tally.
	Staff []string
	// Fairness, when non-nil, enables the contribution fairness verdict.
	Fairness *domain.FairnessPolicy
}

// Evaluator sequences the per-team evaluation pipeline. Teams are
// processed strictly sequentially; every stage failure degrades to a
// recorded message, so one team can never abort the batch.
type Evaluator struct {
	cfg     Config
	stager  Stager
	contrib ContributionAnalyzer
	issues  IssueAnalyzer
	bench   SuiteRunner
	logger  *log.Logger
}

// New creates an Evaluator instance.
func New(cfg Config, stager Stager, contrib ContributionAnalyzer, issues IssueAnalyzer, bench SuiteRunner, logger *log.Logger) *Evaluator {
	return &Evaluator{
		cfg:     cfg,
		stager:  stager,
		contrib: contrib,
		issues:  issues,
		bench:   bench,
		logger:  logger,
	}
}

// EvaluateAll evaluates every team in order and returns one evaluation per
// team, in roster order.
func (e *Evaluator) EvaluateAll(ctx context.Context, teams []domain.Team, suiteDir string) []domain.TeamEvaluation {
	evals := make([]domain.TeamEvaluation, 0, len(teams))
	for i, team := range teams {
		e.logger.Printf("[%d/%d] Evaluating team %s", i+1, len(teams), team.Name)
		evals = append(evals, e.EvaluateTeam(ctx, team, suiteDir))
	}
	return evals
}

// EvaluateTeam runs the full pipeline for one team. The repository branch
// (staging, contribution analysis, benchmarks) and the issue-tracker
// branch are independent: a missing repository URL does not prevent the
// tracker query, and vice versa. The team's scratch directory is removed
// before returning, success or failure.
func (e *Evaluator) EvaluateTeam(ctx context.Context, team domain.Team, suiteDir string) domain.TeamEvaluation {
	eval := domain.TeamEvaluation{
		StagingError: domain.NoErrors,
		Benchmarks:   map[string]domain.BenchmarkResult{},
	}

	if team.Repository == "" {
		eval.StagingError = "no repository URL in roster"
	} else {
		e.evaluateRepository(ctx, team, suiteDir, &eval)
	}

	if team.IssueBoard != "" {
		tally, err := e.issues.TallyDoneIssues(ctx, team.IssueBoard)
		if err != nil {
			eval.IssueSummary = err.Error()
		} else {
			eval.IssueSummary = tally.Summary()
		}
	}
	return eval
}

func (e *Evaluator) evaluateRepository(ctx context.Context, team domain.Team, suiteDir string, eval *domain.TeamEvaluation) {
	e.logger.Printf("Checking repository of team %s (%s)", team.Name, team.Repository)
	dir := filepath.Join(e.cfg.ScratchDir, team.ID)
	defer os.RemoveAll(dir)

	if err := e.stager.Stage(ctx, team.Repository, dir); err != nil {
		eval.StagingError = "error when cloning repo: " + err.Error()
		return
	}
	if err := e.stager.RewindToDeadline(ctx, dir, e.cfg.Deadline); err != nil {
		eval.StagingError = "error when cloning repo: " + err.Error()
		return
	}

	tally, err := e.contrib.TallyCommits(ctx, dir)
	if err != nil {
		eval.StagingError = "error analyzing contributions: " + err.Error()
	} else {
		domain.FilterStaff(tally, e.cfg.Staff)
		eval.Contributors = tally.Summary()
		if e.cfg.Fairness != nil {
			eval.Fairness = fairnessSummary(tally, *e.cfg.Fairness)
		}
	}

	results, err := e.bench.RunAll(ctx, dir, suiteDir)
	if err != nil {
		if eval.StagingError == domain.NoErrors {
			eval.StagingError = "error running benchmarks: " + err.Error()
		}
		return
	}
	eval.Benchmarks = results
}

func fairnessSummary(tally domain.CommitTally, policy domain.FairnessPolicy) string {
	verdict := "fail"
	if domain.Passes(tally, policy) {
		verdict = "pass"
	}
	min, mean, ok := domain.Spread(tally)
	if !ok {
		return verdict
	}
	return fmt.Sprintf("%s (min %.0f, mean %.1f)", verdict, min, mean)
}
