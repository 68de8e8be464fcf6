// Package filter computes the visible issue subset from the current filter
// state. All functions are pure; the workspace store owns the state and
// calls Apply on every render pass.
package filter

import (
	"strings"

	"github.com/boardwalkhq/boardwalk/pkg/board"
	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// Filters holds the four filter dimensions. A dimension with no selections
// matches every issue; dimensions combine with logical AND, selections
// within a dimension with logical OR.
type Filters struct {
	SearchQuery string
	AssigneeIDs []string
	StatusIDs   []string
	PriorityIDs []string
}

// ActiveCount is the number of non-search filter selections. Search text is
// excluded from the count.
func (f Filters) ActiveCount() int {
	return len(f.AssigneeIDs) + len(f.StatusIDs) + len(f.PriorityIDs)
}

// IsZero reports whether no dimension is active, search included.
func (f Filters) IsZero() bool {
	return f.SearchQuery == "" && f.ActiveCount() == 0
}

// Apply returns the issues matching every active dimension, in input order.
func Apply(issues []model.Issue, cols board.ColumnSet, f Filters) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if Matches(issue, cols, f) {
			out = append(out, issue)
		}
	}
	return out
}

// Matches reports whether a single issue passes every dimension.
func Matches(issue model.Issue, cols board.ColumnSet, f Filters) bool {
	return MatchesSearch(issue, f) &&
		MatchesAssignee(issue, f) &&
		MatchesStatus(issue, cols, f) &&
		MatchesPriority(issue, f)
}

// MatchesSearch does a case-insensitive substring match against title or
// description. An empty query matches everything.
func MatchesSearch(issue model.Issue, f Filters) bool {
	q := strings.ToLower(strings.TrimSpace(f.SearchQuery))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(issue.Title), q) ||
		strings.Contains(strings.ToLower(issue.Description), q)
}

// MatchesAssignee checks the issue's AssigneeID against the selection.
func MatchesAssignee(issue model.Issue, f Filters) bool {
	if len(f.AssigneeIDs) == 0 {
		return true
	}
	return contains(f.AssigneeIDs, issue.AssigneeID)
}

// MatchesStatus checks the issue's resolved status token against the
// selection. A raw BoardColumnID match is also accepted, so selections may
// carry either canonical tokens or concrete column ids.
func MatchesStatus(issue model.Issue, cols board.ColumnSet, f Filters) bool {
	if len(f.StatusIDs) == 0 {
		return true
	}
	if issue.BoardColumnID != "" && contains(f.StatusIDs, issue.BoardColumnID) {
		return true
	}
	return contains(f.StatusIDs, statusToken(issue, cols))
}

// MatchesPriority checks the issue's priority against the selection.
func MatchesPriority(issue model.Issue, f Filters) bool {
	if len(f.PriorityIDs) == 0 {
		return true
	}
	return contains(f.PriorityIDs, string(issue.Priority))
}

// statusToken resolves an issue's status for filtering. This is
// deliberately more lenient than board.ColumnSet.Resolve: either the status
// or the board column id may name a column, whichever matches first, and a
// dangling column reference still falls back to the raw status string.
func statusToken(issue model.Issue, cols board.ColumnSet) string {
	if col, ok := cols.ByID(issue.Status); ok {
		return model.NormalizeStatusToken(col.Name)
	}
	if col, ok := cols.ByID(issue.BoardColumnID); ok {
		return model.NormalizeStatusToken(col.Name)
	}
	return model.NormalizeStatusToken(issue.Status)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
