package usecase

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ostaubli/team-eval/internal/domain"
	"github.com/ostaubli/team-eval/internal/gitrepo"
)

// mockStager is a mock implementation of the Stager interface.
type mockStager struct {
	mock.Mock
}

func (m *mockStager) Stage(ctx context.Context, repoURL, dir string) error {
	args := m.Called(ctx, repoURL, dir)
	// Mimic the real stager: a successful stage populates the directory.
	if args.Error(0) == nil {
		_ = os.MkdirAll(dir, 0o755)
		_ = os.WriteFile(filepath.Join(dir, "README.md"), []byte("checkout"), 0o644)
	}
	return args.Error(0)
}

func (m *mockStager) RewindToDeadline(ctx context.Context, dir, deadline string) error {
	args := m.Called(ctx, dir, deadline)
	return args.Error(0)
}

// mockContrib is a mock implementation of the ContributionAnalyzer interface.
type mockContrib struct {
	mock.Mock
}

func (m *mockContrib) TallyCommits(ctx context.Context, dir string) (domain.CommitTally, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.CommitTally), args.Error(1)
}

// mockIssues is a mock implementation of the IssueAnalyzer interface.
type mockIssues struct {
	mock.Mock
}

func (m *mockIssues) TallyDoneIssues(ctx context.Context, boardURL string) (domain.IssueTally, error) {
	args := m.Called(ctx, boardURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.IssueTally), args.Error(1)
}

// mockBench is a mock implementation of the SuiteRunner interface.
type mockBench struct {
	mock.Mock
}

func (m *mockBench) RunAll(ctx context.Context, teamDir, suiteDir string) (map[string]domain.BenchmarkResult, error) {
	args := m.Called(ctx, teamDir, suiteDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.BenchmarkResult), args.Error(1)
}

type evalMocks struct {
	stager  *mockStager
	contrib *mockContrib
	issues  *mockIssues
	bench   *mockBench
}

func newEvaluator(t *testing.T, cfg Config) (*Evaluator, *evalMocks) {
	t.Helper()
	m := &evalMocks{
		stager:  new(mockStager),
		contrib: new(mockContrib),
		issues:  new(mockIssues),
		bench:   new(mockBench),
	}
	logger := log.New(io.Discard, "", 0)
	return New(cfg, m.stager, m.contrib, m.issues, m.bench, logger), m
}

func TestEvaluateTeam_NoRepositoryURL(t *testing.T) {
	evaluator, mocks := newEvaluator(t, Config{ScratchDir: t.TempDir(), Deadline: "2024-12-13 18:00"})
	team := domain.Team{ID: "tok-1", Nr: "1", Name: "The Uno Ultras"}

	eval := evaluator.EvaluateTeam(context.Background(), team, "/suite")

	assert.Empty(t, eval.Contributors)
	assert.Equal(t, "no repository URL in roster", eval.StagingError)
	assert.Empty(t, eval.Benchmarks)
	assert.Empty(t, eval.IssueSummary)
	// None of the repository stages may run.
	mocks.stager.AssertNotCalled(t, "Stage", mock.Anything, mock.Anything, mock.Anything)
	mocks.bench.AssertNotCalled(t, "RunAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateTeam_NoRepositoryStillQueriesTracker(t *testing.T) {
	evaluator, mocks := newEvaluator(t, Config{ScratchDir: t.TempDir(), Deadline: "2024-12-13 18:00"})
	team := domain.Team{ID: "tok-1", Nr: "1", Name: "The Uno Ultras", IssueBoard: "https://t1.atlassian.net"}
	mocks.issues.On("TallyDoneIssues", mock.Anything, team.IssueBoard).
		Return(domain.IssueTally{"Alice": 3}, nil)

	eval := evaluator.EvaluateTeam(context.Background(), team, "/suite")

	assert.Equal(t, "no repository URL in roster", eval.StagingError)
	assert.Equal(t, "Alice (3)", eval.IssueSummary)
	mocks.issues.AssertExpectations(t)
}

func TestEvaluateTeam_StagingFailure(t *testing.T) {
	scratch := t.TempDir()
	evaluator, mocks := newEvaluator(t, Config{ScratchDir: scratch, Deadline: "2024-12-13 18:00"})
	team := domain.Team{ID: "tok-1", Nr: "1", Name: "The Uno Ultras", Repository: "https://github.com/t1/uno"}
	stagingErr := &gitrepo.StagingError{Op: "clone", Err: assert.AnError}
	mocks.stager.On("Stage", mock.Anything, team.Repository, filepath.Join(scratch, "tok-1")).
		Return(stagingErr)

	eval := evaluator.EvaluateTeam(context.Background(), team, "/suite")

	assert.Empty(t, eval.Contributors)
	assert.Contains(t, eval.StagingError, "error when cloning repo")
	assert.Empty(t, eval.Benchmarks)
	mocks.contrib.AssertNotCalled(t, "TallyCommits", mock.Anything, mock.Anything)
	mocks.bench.AssertNotCalled(t, "RunAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateTeam_HappyPath(t *testing.T) {
	scratch := t.TempDir()
	fairness := &domain.FairnessPolicy{Contributors: 2, MinCommits: 4}
	evaluator, mocks := newEvaluator(t, Config{
		ScratchDir: scratch,
		Deadline:   "2024-12-13 18:00",
		Staff:      []string{"Oliver Staubli"},
		Fairness:   fairness,
	})
	team := domain.Team{
		ID:         "tok-1",
		Nr:         "1",
		Name:       "The Uno Ultras",
		Repository: "https://github.com/t1/uno",
		IssueBoard: "https://t1.atlassian.net",
	}
	teamDir := filepath.Join(scratch, "tok-1")
	benchResults := map[string]domain.BenchmarkResult{
		"uno": {Score: "Tests: 7/10 valid\nMark:  14/20 points"},
	}

	mocks.stager.On("Stage", mock.Anything, team.Repository, teamDir).Return(nil)
	mocks.stager.On("RewindToDeadline", mock.Anything, teamDir, "2024-12-13 18:00").Return(nil)
	mocks.contrib.On("TallyCommits", mock.Anything, teamDir).
		Return(domain.CommitTally{"Alice": 12, "Bob": 5, "Oliver Staubli": 2}, nil)
	mocks.bench.On("RunAll", mock.Anything, teamDir, "/suite").Return(benchResults, nil)
	mocks.issues.On("TallyDoneIssues", mock.Anything, team.IssueBoard).
		Return(domain.IssueTally{"Alice": 2, "Bob": 1}, nil)

	eval := evaluator.EvaluateTeam(context.Background(), team, "/suite")

	assert.Equal(t, "Alice (12), Bob (5)", eval.Contributors, "staff must be filtered out")
	assert.Equal(t, "pass (min 5, mean 8.5)", eval.Fairness)
	assert.Equal(t, domain.NoErrors, eval.StagingError)
	assert.Equal(t, "Alice (2), Bob (1)", eval.IssueSummary)
	assert.Equal(t, benchResults, eval.Benchmarks)

	// The scratch checkout must be gone once the evaluation returns.
	_, statErr := os.Stat(teamDir)
	assert.True(t, os.IsNotExist(statErr), "team directory must be cleaned up")
	mocks.stager.AssertExpectations(t)
	mocks.contrib.AssertExpectations(t)
	mocks.bench.AssertExpectations(t)
	mocks.issues.AssertExpectations(t)
}

func TestEvaluateTeam_CleanupOnRewindFailure(t *testing.T) {
	scratch := t.TempDir()
	evaluator, mocks := newEvaluator(t, Config{ScratchDir: scratch, Deadline: "2024-12-13 18:00"})
	team := domain.Team{ID: "tok-1", Nr: "1", Repository: "https://github.com/t1/uno"}
	teamDir := filepath.Join(scratch, "tok-1")

	mocks.stager.On("Stage", mock.Anything, team.Repository, teamDir).Return(nil)
	mocks.stager.On("RewindToDeadline", mock.Anything, teamDir, "2024-12-13 18:00").
		Return(&gitrepo.StagingError{Op: "rewind", Err: assert.AnError})

	eval := evaluator.EvaluateTeam(context.Background(), team, "/suite")

	assert.Contains(t, eval.StagingError, "rewind")
	_, statErr := os.Stat(teamDir)
	assert.True(t, os.IsNotExist(statErr), "team directory must be cleaned up on failure")
}

func TestEvaluateTeam_TrackerFailureBecomesMessage(t *testing.T) {
	evaluator, mocks := newEvaluator(t, Config{ScratchDir: t.TempDir(), Deadline: "2024-12-13 18:00"})
	team := domain.Team{ID: "tok-1", Nr: "1", IssueBoard: "https://t1.atlassian.net"}
	mocks.issues.On("TallyDoneIssues", mock.Anything, team.IssueBoard).
		Return(nil, assert.AnError)

	eval := evaluator.EvaluateTeam(context.Background(), team, "/suite")

	assert.Equal(t, assert.AnError.Error(), eval.IssueSummary)
	assert.Equal(t, "no repository URL in roster", eval.StagingError)
}

func TestEvaluateAll_OneEvaluationPerTeam(t *testing.T) {
	evaluator, mocks := newEvaluator(t, Config{ScratchDir: t.TempDir(), Deadline: "2024-12-13 18:00"})
	teams := []domain.Team{
		{ID: "tok-1", Nr: "1", Name: "A"},
		{ID: "tok-2", Nr: "2", Name: "B", IssueBoard: "https://t2.atlassian.net"},
		{ID: "tok-3", Nr: "3", Name: "C"},
	}
	mocks.issues.On("TallyDoneIssues", mock.Anything, "https://t2.atlassian.net").
		Return(nil, assert.AnError)

	evals := evaluator.EvaluateAll(context.Background(), teams, "/suite")

	require.Len(t, evals, len(teams), "every team produces exactly one evaluation")
	assert.Equal(t, assert.AnError.Error(), evals[1].IssueSummary)
}
