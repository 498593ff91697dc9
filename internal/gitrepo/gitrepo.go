// Package gitrepo stages team repositories and derives contribution
// tallies from their history, using the git command-line tool through
// execx.
package gitrepo

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ostaubli/team-eval/internal/domain"
	"github.com/ostaubli/team-eval/internal/execx"
)

// StagingError reports a failure to prepare a team repository: clone
// failures (bad URL, auth, network), a non-empty target directory, or a
// deadline with no commit before it.
type StagingError struct {
	Op  string
	Err error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// Git wraps the git CLI for staging and history analysis. Every operation
// takes its repository directory explicitly.
type Git struct {
	runner execx.Runner
	logger *log.Logger
}

// New creates a Git helper on top of the given runner.
func New(runner execx.Runner, logger *log.Logger) *Git {
	return &Git{runner: runner, logger: logger}
}

// Stage clones repoURL into dir. The directory is created if absent and
// must be empty. Failures are reported as *StagingError.
func (g *Git) Stage(ctx context.Context, repoURL, dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case err == nil && len(entries) > 0:
		return &StagingError{Op: "stage", Err: fmt.Errorf("target directory %s is not empty", dir)}
	case err != nil && !os.IsNotExist(err):
		return &StagingError{Op: "stage", Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StagingError{Op: "stage", Err: err}
	}
	g.logger.Printf("Cloning %s into %s", repoURL, dir)
	if _, err := execx.RunChecked(ctx, g.runner, execx.Command{
		Name: "git",
		Args: []string{"clone", repoURL, dir},
	}); err != nil {
		return &StagingError{Op: "clone", Err: err}
	}
	return nil
}

// RewindToDeadline checks out the most recent commit at or before the
// given deadline, so the working tree matches the state graded work must
// have been in. The deadline is any git-log-compatible date string. A
// history with no commit before the deadline is a *StagingError.
func (g *Git) RewindToDeadline(ctx context.Context, dir, deadline string) error {
	res, err := execx.RunChecked(ctx, g.runner, execx.Command{
		Name: "git",
		Args: []string{"log", "--before=" + deadline, "-1", "--format=%h;%ad"},
		Dir:  dir,
	})
	if err != nil {
		return &StagingError{Op: "find last commit before deadline", Err: err}
	}
	info := strings.TrimSpace(res.Stdout)
	if info == "" {
		return &StagingError{Op: "rewind", Err: fmt.Errorf("no commit at or before deadline %q", deadline)}
	}
	hash, date, _ := strings.Cut(info, ";")

	after, err := execx.RunChecked(ctx, g.runner, execx.Command{
		Name: "git",
		Args: []string{"log", "--after=" + deadline, "--oneline"},
		Dir:  dir,
	})
	if err != nil {
		return &StagingError{Op: "count commits after deadline", Err: err}
	}
	behind := countLines(after.Stdout)
	g.logger.Printf("Checkout commit '%s' of %s (%d commits behind HEAD)", hash, date, behind)

	if _, err := execx.RunChecked(ctx, g.runner, execx.Command{
		Name: "git",
		Args: []string{"checkout", hash},
		Dir:  dir,
	}); err != nil {
		return &StagingError{Op: "checkout " + hash, Err: err}
	}
	return nil
}

// TallyCommits summarizes authorship across the full history of the
// checked-out state. The rewind in RewindToDeadline is what bounds the
// analysis window; the tally itself is cumulative over HEAD's ancestry.
func (g *Git) TallyCommits(ctx context.Context, dir string) (domain.CommitTally, error) {
	res, err := execx.RunChecked(ctx, g.runner, execx.Command{
		Name: "git",
		Args: []string{"shortlog", "-n", "-s", "HEAD"},
		Dir:  dir,
	})
	if err != nil {
		return nil, fmt.Errorf("summarize commit history: %w", err)
	}
	tally := make(domain.CommitTally)
	for _, line := range strings.Split(res.Stdout, "\n") {
		count, author, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		commits, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			continue
		}
		tally[strings.TrimSpace(author)] = commits
	}
	return tally, nil
}

func countLines(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
