// Package tracker queries a Jira instance for completed issues grouped by
// assignee.
package tracker

import (
	"context"
	"fmt"
	"log"
	"net/http"

	jira "github.com/andygrunwald/go-jira"

	"github.com/ostaubli/team-eval/internal/domain"
)

// AuthError reports absent or rejected tracker credentials.
type AuthError struct{ Err error }

func (e *AuthError) Error() string { return fmt.Sprintf("tracker authentication failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// URLError reports a malformed board address.
type URLError struct {
	URL string
	Err error
}

func (e *URLError) Error() string { return fmt.Sprintf("invalid board url %q: %v", e.URL, e.Err) }
func (e *URLError) Unwrap() error { return e.Err }

// QueryError reports a failed issue search.
type QueryError struct{ Err error }

func (e *QueryError) Error() string { return fmt.Sprintf("tracker query failed: %v", e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

// doneJQL selects all issues whose status category is Done, newest first.
const doneJQL = "statusCategory = Done ORDER BY created DESC"

// Credentials authenticate against the tracker. They are supplied
// explicitly at construction; the component never reads the process
// environment itself.
type Credentials struct {
	Email    string
	APIToken string
}

// Client tallies done issues on Jira boards.
type Client struct {
	creds     Credentials
	transport http.RoundTripper // nil = http.DefaultTransport; overridable in tests
	logger    *log.Logger
}

// New creates a tracker client with the given credentials.
func New(creds Credentials, logger *log.Logger) *Client {
	return &Client{creds: creds, logger: logger}
}

// TallyDoneIssues queries boardURL for all issues in the "Done" status
// category and tallies them by assignee display name. Issues without an
// assignee are skipped. An empty result is success, not an error.
func (c *Client) TallyDoneIssues(ctx context.Context, boardURL string) (domain.IssueTally, error) {
	if c.creds.Email == "" || c.creds.APIToken == "" {
		return nil, &AuthError{Err: fmt.Errorf("JIRA_EMAIL and JIRA_API_TOKEN must be provided")}
	}
	tp := jira.BasicAuthTransport{
		Username:  c.creds.Email,
		Password:  c.creds.APIToken,
		Transport: c.transport,
	}
	client, err := jira.NewClient(tp.Client(), boardURL)
	if err != nil {
		return nil, &URLError{URL: boardURL, Err: err}
	}
	if _, _, err := client.User.GetSelfWithContext(ctx); err != nil {
		return nil, &AuthError{Err: err}
	}

	c.logger.Printf("Querying done issues on %s", boardURL)
	issues, _, err := client.Issue.SearchWithContext(ctx, doneJQL, nil)
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	tally := make(domain.IssueTally)
	for _, issue := range issues {
		if issue.Fields == nil || issue.Fields.Assignee == nil {
			continue
		}
		tally[issue.Fields.Assignee.DisplayName]++
	}
	return tally, nil
}
