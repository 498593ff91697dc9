// Package domain contains the core data structures and domain logic for the application.
package domain

// Team is one row of the course roster.
// It is immutable once read from the spreadsheet.
type Team struct {
	// ID is a generated unique token used for filesystem isolation.
	// The roster number is never used for directories, so repeated or
	// concurrent runs cannot collide.
	ID string `json:"id"`
	// Nr is the roster number as it appears in the spreadsheet.
	Nr string `json:"nr"`
	// Name is the display name of the team.
	Name string `json:"name"`
	// Repository is the normalized GitHub repository URL, empty if the
	// roster row has none.
	Repository string `json:"repository"`
	// IssueBoard is the normalized Jira board URL, empty if the roster
	// row has none.
	IssueBoard string `json:"issue_board"`
}
