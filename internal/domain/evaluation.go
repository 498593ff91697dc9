package domain

// TestResult is the outcome of a single benchmark test.
type TestResult struct {
	Nr     int    `json:"nr"`
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// BenchmarkResult is the parsed outcome of one game's benchmark run. When
// the run fails, Score carries the error text and Tests is empty.
type BenchmarkResult struct {
	// Score is the raw trailing score block of the benchmark output,
	// e.g. "Tests: 7/10 valid\nMark:  14/20 points".
	Score string `json:"score"`
	// Tests lists the per-test results in the order the benchmark's own
	// runner executed them.
	Tests []TestResult `json:"tests"`
}

// NoErrors is the staging error text of a team whose repository staged
// cleanly.
const NoErrors = "no errors"

// TeamEvaluation is the aggregate result for one team. Every team produces
// exactly one TeamEvaluation, no matter how many stages fail; failed stages
// degrade to readable text in the corresponding field.
type TeamEvaluation struct {
	// Contributors is the staff-filtered commit summary, empty when the
	// team has no repository or staging failed.
	Contributors string `json:"contributors"`
	// Fairness is the fairness verdict ("pass"/"fail" with the commit
	// spread), empty when no policy is configured or no tally exists.
	Fairness string `json:"fairness,omitempty"`
	// StagingError is NoErrors on success, otherwise a description of
	// what went wrong while staging the repository.
	StagingError string `json:"staging_error"`
	// IssueSummary is the done-issue tally summary, empty when the team
	// has no board, or the tracker error text when the query failed.
	IssueSummary string `json:"issue_summary"`
	// Benchmarks maps game name to that game's benchmark result.
	Benchmarks map[string]BenchmarkResult `json:"benchmarks"`
}
