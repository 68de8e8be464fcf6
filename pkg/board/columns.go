// Package board models the active column set of a project and assigns
// issues to columns.
//
// When a project has no provisioned board the set silently falls back to
// the five default columns, so callers never branch on "real columns"
// versus "fallback columns": a ColumnSet always has columns.
package board

import (
	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// Group classifies an issue for backlog-style views.
type Group int

const (
	// GroupBacklog holds TODO, DONE and anything unrecognized.
	GroupBacklog Group = iota
	// GroupBoard holds the in-flight interior statuses.
	GroupBoard
)

// ColumnSet is the ordered column list the workspace is currently showing.
// The zero value is not useful; construct with NewColumnSet.
type ColumnSet struct {
	columns  []model.Column
	fallback bool
	byID     map[string]int
}

// NewColumnSet wraps an explicit column list, or the default five columns
// when the list is empty.
func NewColumnSet(columns []model.Column) ColumnSet {
	fallback := len(columns) == 0
	if fallback {
		columns = model.DefaultColumns()
	}
	byID := make(map[string]int, len(columns))
	for i, c := range columns {
		byID[c.ID] = i
	}
	return ColumnSet{columns: columns, fallback: fallback, byID: byID}
}

// Columns returns the ordered column list.
func (s ColumnSet) Columns() []model.Column {
	return s.columns
}

// IsFallback reports whether the set is the default five columns rather
// than a provisioned board's.
func (s ColumnSet) IsFallback() bool {
	return s.fallback
}

// Len returns the number of columns.
func (s ColumnSet) Len() int {
	return len(s.columns)
}

// ByID returns the column with the given id.
func (s ColumnSet) ByID(id string) (model.Column, bool) {
	if i, ok := s.byID[id]; ok {
		return s.columns[i], true
	}
	return model.Column{}, false
}

// Resolve maps an issue to its column: first by BoardColumnID, then by the
// legacy status==column.id fallback. Issues that resolve to neither are
// unclassified and excluded from every column-based grouping.
func (s ColumnSet) Resolve(issue model.Issue) (model.Column, bool) {
	if issue.BoardColumnID != "" {
		if col, ok := s.ByID(issue.BoardColumnID); ok {
			return col, true
		}
		// A dangling BoardColumnID does not fall back to status; the
		// reference is stale and the issue is unclassified.
		return model.Column{}, false
	}
	if issue.Status != "" {
		if col, ok := s.ByID(issue.Status); ok {
			return col, true
		}
	}
	return model.Column{}, false
}

// StatusToken resolves the issue's status to a canonical token: the
// normalized name of its column when one resolves, otherwise the normalized
// raw status string.
func (s ColumnSet) StatusToken(issue model.Issue) string {
	if col, ok := s.Resolve(issue); ok {
		return model.NormalizeStatusToken(col.Name)
	}
	return model.NormalizeStatusToken(issue.Status)
}

// GroupOf classifies an issue into the board or backlog group.
//
// On the fallback set the rule is named: IN_PROGRESS, IN_REVIEW and
// IN_TESTING are board work, everything else is backlog. On an explicit
// column list longer than two the rule is purely positional: the first and
// last columns are backlog-like, interior columns are board-like.
func (s ColumnSet) GroupOf(issue model.Issue) Group {
	if !s.fallback && len(s.columns) > 2 {
		col, ok := s.Resolve(issue)
		if !ok {
			return GroupBacklog
		}
		idx := s.byID[col.ID]
		if idx == 0 || idx == len(s.columns)-1 {
			return GroupBacklog
		}
		return GroupBoard
	}
	switch s.StatusToken(issue) {
	case model.StatusInProgress, model.StatusInReview, model.StatusInTesting:
		return GroupBoard
	}
	return GroupBacklog
}

// Assign buckets issues per column id, preserving input order within each
// bucket. Unclassified issues are dropped.
func (s ColumnSet) Assign(issues []model.Issue) map[string][]model.Issue {
	out := make(map[string][]model.Issue, len(s.columns))
	for _, issue := range issues {
		col, ok := s.Resolve(issue)
		if !ok {
			continue
		}
		out[col.ID] = append(out[col.ID], issue)
	}
	return out
}
