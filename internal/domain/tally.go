package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
)

// CommitTally maps an author display name to the number of commits that
// author made in one repository snapshot. It is built fresh per team.
type CommitTally map[string]int

// IssueTally maps an assignee display name to the number of issues in the
// tracker's "Done" status category. It is built fresh per team.
type IssueTally map[string]int

// FilterStaff removes the given non-student contributor names from the
// tally in place. Names that are not present are a no-op, which makes the
// filter idempotent.
func FilterStaff(tally CommitTally, staff []string) {
	for _, name := range staff {
		delete(tally, name)
	}
}

// FairnessPolicy holds the constants of the contribution fairness check.
// The values are course policy, not mechanism, so they are injected rather
// than hard-coded.
type FairnessPolicy struct {
	// Contributors is the exact number of distinct contributors a team
	// must have.
	Contributors int
	// MinCommits is the commit count every contributor must exceed.
	MinCommits int
}

// Passes reports whether the tally satisfies the fairness policy: exactly
// policy.Contributors distinct authors, each with strictly more than
// policy.MinCommits commits. The tally must already be staff-filtered.
func Passes(tally CommitTally, policy FairnessPolicy) bool {
	if len(tally) != policy.Contributors {
		return false
	}
	for _, commits := range tally {
		if commits <= policy.MinCommits {
			return false
		}
	}
	return true
}

// Spread returns the minimum and mean commit count across all authors in
// the tally. It returns ok=false for an empty tally.
func Spread(tally CommitTally) (min, mean float64, ok bool) {
	if len(tally) == 0 {
		return 0, 0, false
	}
	counts := make([]float64, 0, len(tally))
	for _, c := range tally {
		counts = append(counts, float64(c))
	}
	min, err := stats.Min(counts)
	if err != nil {
		return 0, 0, false
	}
	mean, err = stats.Mean(counts)
	if err != nil {
		return 0, 0, false
	}
	return min, mean, true
}

// Summary formats a tally as "name (count), name (count), ...", ordered by
// count descending and name ascending for equal counts, matching the order
// of git shortlog -n.
func (t CommitTally) Summary() string {
	return summarize(t)
}

// Summary formats the issue tally the same way as CommitTally.Summary.
func (t IssueTally) Summary() string {
	return summarize(t)
}

func summarize(tally map[string]int) string {
	names := make([]string, 0, len(tally))
	for name := range tally {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if tally[names[i]] != tally[names[j]] {
			return tally[names[i]] > tally[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%d)", name, tally[name]))
	}
	return strings.Join(parts, ", ")
}
