// Package report turns team evaluations into semicolon-delimited tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ostaubli/team-eval/internal/domain"
)

// Table is a header row plus data rows, ready for CSV serialization.
type Table struct {
	Header []string
	Rows   [][]string
}

// placeholder fills benchmark cells for games that produced no outcome.
const placeholder = "-"

// MainTable builds the per-team summary: one row per team, one score
// column per game. teams and evals must be parallel slices.
func MainTable(teams []domain.Team, evals []domain.TeamEvaluation, games []string, withFairness bool) Table {
	header := []string{"team_id", "team_name", "repository", "contributors"}
	if withFairness {
		header = append(header, "fairness")
	}
	header = append(header, "github_errors", "jira_board", "completed_jira_issues")
	for _, game := range games {
		header = append(header, game+"_benchmark")
	}

	t := Table{Header: header}
	for i, team := range teams {
		eval := evals[i]
		row := []string{team.Nr, team.Name, team.Repository, eval.Contributors}
		if withFairness {
			row = append(row, eval.Fairness)
		}
		row = append(row, eval.StagingError, team.IssueBoard, eval.IssueSummary)
		for _, game := range games {
			if result, ok := eval.Benchmarks[game]; ok {
				row = append(row, result.Score)
			} else {
				row = append(row, placeholder)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TestTable builds the per-test breakdown for one game: a 1/0 column per
// test, unioned across teams in first-seen order. Teams whose run for the
// game produced no per-test results are omitted; cells for tests a team's
// run never reached are left empty.
func TestTable(game string, teams []domain.Team, evals []domain.TeamEvaluation) Table {
	header := []string{"team_id", "team_name"}
	colIndex := make(map[string]int)

	type teamCells struct {
		team  domain.Team
		cells map[string]string
	}
	var included []teamCells

	for i, team := range teams {
		result, ok := evals[i].Benchmarks[game]
		if !ok || len(result.Tests) == 0 {
			continue
		}
		cells := make(map[string]string, len(result.Tests))
		for _, test := range result.Tests {
			col := fmt.Sprintf("%d: %s", test.Nr, test.Name)
			if _, seen := colIndex[col]; !seen {
				colIndex[col] = len(header)
				header = append(header, col)
			}
			if test.Passed {
				cells[col] = "1"
			} else {
				cells[col] = "0"
			}
		}
		included = append(included, teamCells{team: team, cells: cells})
	}

	t := Table{Header: header}
	for _, tc := range included {
		row := make([]string, len(header))
		row[0] = tc.team.Nr
		row[1] = tc.team.Name
		for col, val := range tc.cells {
			row[colIndex[col]] = val
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteCSV serializes the table as semicolon-delimited text with a header
// row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, creating or truncating it.
func WriteFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
