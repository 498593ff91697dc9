// Package benchmark overlays the canonical grading suite onto a team's
// checkout and runs the game benchmarks as bounded subprocesses.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ostaubli/team-eval/internal/domain"
	"github.com/ostaubli/team-eval/internal/execx"
)

// Defaults for the canonical suite. The repository is expected to contain
// a benchmark/ directory with one benchmark_<game>.py per game, mypy.ini,
// .pylintrc and a requirements.txt.
const (
	DefaultSuiteRepoURL = "https://github.com/ostaubli/devops_project"
	DefaultGameTimeout  = 120 * time.Second
)

// DefaultGames is the fixed benchmark order.
var DefaultGames = []string{"hangman", "battleship", "uno", "dog"}

// configFiles are copied from the suite over the team's own, so every team
// is linted and type-checked under the same configuration.
var configFiles = []string{"mypy.ini", ".pylintrc"}

// ErrTimeout is returned when one game's benchmark exceeds its deadline.
var ErrTimeout = errors.New("Timeout")

// CrashError reports a benchmark subprocess that exited non-zero.
type CrashError struct{ Stderr string }

func (e *CrashError) Error() string {
	return "Benchmark evaluation failed with message: " + e.Stderr
}

// Stager clones a repository into an empty directory.
type Stager interface {
	Stage(ctx context.Context, repoURL, dir string) error
}

// Config holds the harness settings.
type Config struct {
	SuiteRepoURL string
	Games        []string
	GameTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.SuiteRepoURL == "" {
		c.SuiteRepoURL = DefaultSuiteRepoURL
	}
	if len(c.Games) == 0 {
		c.Games = DefaultGames
	}
	if c.GameTimeout == 0 {
		c.GameTimeout = DefaultGameTimeout
	}
	return c
}

// Harness runs the canonical benchmark suite against team checkouts.
type Harness struct {
	cfg    Config
	runner execx.Runner
	stager Stager
	logger *log.Logger
}

// New creates a Harness. Zero-valued Config fields fall back to the
// defaults above.
func New(cfg Config, runner execx.Runner, stager Stager, logger *log.Logger) *Harness {
	return &Harness{cfg: cfg.withDefaults(), runner: runner, stager: stager, logger: logger}
}

// Games returns the games the harness runs, in run order.
func (h *Harness) Games() []string { return h.cfg.Games }

// PrepareSuite clones the canonical benchmark repository into
// <scratchDir>/master_repo and installs its declared dependencies. It runs
// once per batch; the returned directory is shared, read-only state for
// the rest of the run.
func (h *Harness) PrepareSuite(ctx context.Context, scratchDir string) (string, error) {
	suiteDir := filepath.Join(scratchDir, "master_repo")
	if err := h.stager.Stage(ctx, h.cfg.SuiteRepoURL, suiteDir); err != nil {
		return "", fmt.Errorf("clone benchmark suite: %w", err)
	}
	if _, err := execx.RunChecked(ctx, h.runner, execx.Command{
		Name: "pip",
		Args: []string{"install", "-r", "requirements.txt"},
		Dir:  suiteDir,
	}); err != nil {
		return "", fmt.Errorf("install suite requirements: %w", err)
	}
	return suiteDir, nil
}

// OverlaySuite replaces the team's benchmark subtree with the canonical
// one and copies the canonical lint and type-check configuration over the
// team's own. Teams must not be able to grade themselves against a
// modified harness.
func (h *Harness) OverlaySuite(teamDir, suiteDir string) error {
	target := filepath.Join(teamDir, "benchmark")
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("remove team benchmark dir: %w", err)
	}
	if err := os.CopyFS(target, os.DirFS(filepath.Join(suiteDir, "benchmark"))); err != nil {
		return fmt.Errorf("copy canonical benchmark dir: %w", err)
	}
	for _, name := range configFiles {
		data, err := os.ReadFile(filepath.Join(suiteDir, name))
		if err != nil {
			return fmt.Errorf("read canonical %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(teamDir, name), data, 0o644); err != nil {
			return fmt.Errorf("copy canonical %s: %w", name, err)
		}
	}
	return nil
}

// RunGame launches the benchmark for one game with the team directory as
// both working directory and importable source root, bounded by the
// configured timeout.
func (h *Harness) RunGame(ctx context.Context, teamDir, game string) (domain.BenchmarkResult, error) {
	script := filepath.Join("benchmark", "benchmark_"+game+".py")
	class := game + "." + capitalize(game)
	res, err := h.runner.Run(ctx, execx.Command{
		Name:    "python",
		Args:    []string{script, "python", class},
		Dir:     teamDir,
		Env:     map[string]string{"PYTHONPATH": teamDir},
		Timeout: h.cfg.GameTimeout,
	})
	if errors.Is(err, execx.ErrTimeout) {
		return domain.BenchmarkResult{}, ErrTimeout
	}
	if err != nil {
		return domain.BenchmarkResult{}, fmt.Errorf("run benchmark %s: %w", game, err)
	}
	if res.ExitCode != 0 {
		return domain.BenchmarkResult{}, &CrashError{Stderr: res.Stderr}
	}
	return ParseOutput(res.Stdout)
}

// RunAll overlays the canonical suite onto the team directory and runs
// every configured game in order. A failed game contributes a result whose
// Score is the error text and whose test list is empty; it never prevents
// the remaining games from running.
func (h *Harness) RunAll(ctx context.Context, teamDir, suiteDir string) (map[string]domain.BenchmarkResult, error) {
	if err := h.OverlaySuite(teamDir, suiteDir); err != nil {
		return nil, err
	}
	out := make(map[string]domain.BenchmarkResult, len(h.cfg.Games))
	for _, game := range h.cfg.Games {
		h.logger.Printf("Running %s benchmark", game)
		result, err := h.RunGame(ctx, teamDir, game)
		if err != nil {
			out[game] = domain.BenchmarkResult{Score: err.Error()}
			continue
		}
		out[game] = result
	}
	return out, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
