// Package roster reads the course team roster from a CSV-exportable
// spreadsheet.
package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ostaubli/team-eval/internal/domain"
)

var (
	repoURLRe  = regexp.MustCompile(`https://github\.com/[A-Za-z0-9\-\_]+/[A-Za-z0-9\-\_]+`)
	boardURLRe = regexp.MustCompile(`https://[A-Za-z0-9\-\_]+\.atlassian\.net`)
)

// NormalizeRepoURL reduces any input containing a recognizable GitHub
// repository URL to exactly that substring. Non-matching input passes
// through unchanged.
func NormalizeRepoURL(s string) string {
	if m := repoURLRe.FindString(s); m != "" {
		return m
	}
	return s
}

// NormalizeBoardURL reduces any input containing a recognizable Atlassian
// site URL to exactly that substring. Non-matching input passes through
// unchanged.
func NormalizeBoardURL(s string) string {
	if m := boardURLRe.FindString(s); m != "" {
		return m
	}
	return s
}

// Column headers expected on the second row of the sheet.
const (
	colNr    = "Team Nr"
	colName  = "Team Name"
	colRepo  = "GitHub Repo URL"
	colBoard = "Jira Board URL"
)

// Source fetches team rosters over HTTP.
type Source struct {
	client *http.Client
	logger *log.Logger
}

// New creates a roster source. A nil client falls back to
// http.DefaultClient.
func New(client *http.Client, logger *log.Logger) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{client: client, logger: logger}
}

// Fetch downloads the sheet as CSV and returns one Team per row with a
// non-blank team number. Google sheet edit URLs are rewritten to their CSV
// export form.
func (s *Source) Fetch(ctx context.Context, sheetURL string) ([]domain.Team, error) {
	exportURL := strings.Replace(sheetURL, "/edit?gid=", "/export?format=csv&gid=", 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster: unexpected status %s", resp.Status)
	}
	teams, err := parseTeams(resp.Body)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("Read %d teams from roster", len(teams))
	return teams, nil
}

// parseTeams reads the exported sheet. The first row is a title row; the
// second row holds the column headers.
func parseTeams(r io.Reader) ([]domain.Team, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}
	cols := make(map[string]int, len(records[1]))
	for i, h := range records[1] {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colNr, colName, colRepo, colBoard} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("roster is missing column %q", required)
		}
	}

	var teams []domain.Team
	for _, row := range records[2:] {
		nr := field(row, cols[colNr])
		if nr == "" {
			continue
		}
		team := domain.Team{
			ID:   uuid.NewString(),
			Nr:   nr,
			Name: field(row, cols[colName]),
		}
		if repo := field(row, cols[colRepo]); repo != "" {
			team.Repository = NormalizeRepoURL(repo)
		}
		if board := field(row, cols[colBoard]); board != "" {
			team.IssueBoard = NormalizeBoardURL(board)
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
