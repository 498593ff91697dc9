package benchmark

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/ostaubli/team-eval/internal/domain"
)

// ErrMalformedOutput is returned when benchmark output lacks the trailing
// Tests/Mark score block. The harness does not attempt partial recovery.
var ErrMalformedOutput = errors.New("no proper benchmark output (missing 'Tests/Mark' section)")

// scoreBlockRe matches the two-line summary the benchmark prints last,
// anchored at the end of the output: the score line, the mark line, one
// blank line, end of stream.
var scoreBlockRe = regexp.MustCompile(`(Tests:\s\d+/\d+\svalid\nMark:\s\s\d+/\d+\spoints)\n\n$`)

// testLineRe matches one colored per-test line. ANSI code 92 (bright
// green) marks a pass, 91 (bright red) a fail.
var testLineRe = regexp.MustCompile(`\x1b\[(9[12])mTest\s(\d{3}):\s([^\n]+?)\s\[\d{1,2}\spoints?\]`)

// ParseOutput extracts the overall score block and the ordered per-test
// results from one benchmark run's standard output.
func ParseOutput(stdout string) (domain.BenchmarkResult, error) {
	score := scoreBlockRe.FindStringSubmatch(stdout)
	if score == nil {
		return domain.BenchmarkResult{}, ErrMalformedOutput
	}
	var tests []domain.TestResult
	for _, m := range testLineRe.FindAllStringSubmatch(stdout, -1) {
		nr, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		tests = append(tests, domain.TestResult{
			Nr:     nr,
			Name:   m[3],
			Passed: m[1] == "92",
		})
	}
	return domain.BenchmarkResult{Score: score[1], Tests: tests}, nil
}
