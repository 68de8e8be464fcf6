// Package model defines the workspace data model shared by every other
// package: organizations, projects, boards, columns and issues, plus the
// people attached to them.
//
// The JSON tags mirror the backend wire format, so values decoded from API
// responses and values written to snapshots share one representation.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the issue priority on the wire.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Canonical status tokens. Column names normalize to these via
// NormalizeStatusToken; they double as the IDs of the default column set.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusInReview   = "IN_REVIEW"
	StatusInTesting  = "IN_TESTING"
	StatusDone       = "DONE"
)

// Organization is the root tenant scope. Immutable once loaded.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project belongs to exactly one organization. ProjectKey is the short
// uppercase identifier used in routing (derived upstream, not enforced here).
type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProjectKey     string `json:"projectKey"`
	OrganizationID string `json:"organizationId,omitempty"`
	ProjectType    string `json:"projectType,omitempty"`
	LeadID         string `json:"leadId,omitempty"`
}

// BoardType distinguishes kanban from scrum boards.
type BoardType string

const (
	BoardKanban BoardType = "KANBAN"
	BoardScrum  BoardType = "SCRUM"
)

// Board is the kanban/scrum view for one project. A project may have zero
// boards (not yet provisioned).
type Board struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    BoardType `json:"type"`
	Columns []Column  `json:"columns,omitempty"`
	Issues  []Issue   `json:"issues,omitempty"`
}

// Column is a named, ordered bucket within a board. Column identity is the
// join key against issues (issue.BoardColumnID == column.ID), with a legacy
// fallback matching issue.Status against column.ID.
type Column struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position,omitempty"`
}

// Assignee is the inline resolved snapshot of an issue's assignee. The
// canonical relationship is Issue.AssigneeID; this is derived display data.
type Assignee struct {
	Name     string `json:"name,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Issue belongs to exactly one project and, once provisioned, exactly one
// column addressed via BoardColumnID. Status is the denormalized legacy
// co-identifier and is rewritten alongside BoardColumnID on every move.
type Issue struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	Priority      Priority   `json:"priority"`
	IssueType     string     `json:"issueType,omitempty"`
	BoardColumnID string     `json:"boardColumnId,omitempty"`
	ProjectID     string     `json:"projectId,omitempty"`
	AssigneeID    string     `json:"assigneeId,omitempty"`
	ReporterID    string     `json:"reporterId,omitempty"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	Assignee      *Assignee  `json:"assignee,omitempty"`
}

// Validate checks the fields every issue must carry to be usable.
func (i *Issue) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("issue has no id")
	}
	if i.Title == "" {
		return fmt.Errorf("issue %s has no title", i.ID)
	}
	return nil
}

// Clone returns a deep copy of the issue.
func (i Issue) Clone() Issue {
	out := i
	if i.Assignee != nil {
		a := *i.Assignee
		out.Assignee = &a
	}
	if i.CreatedAt != nil {
		t := *i.CreatedAt
		out.CreatedAt = &t
	}
	if i.UpdatedAt != nil {
		t := *i.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// CloneIssues deep-copies a slice of issues. Used for move snapshots.
func CloneIssues(issues []Issue) []Issue {
	if issues == nil {
		return nil
	}
	out := make([]Issue, len(issues))
	for i := range issues {
		out[i] = issues[i].Clone()
	}
	return out
}

// OrganizationMember scopes a user to a single organization.
type OrganizationMember struct {
	UserID      string     `json:"userId"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	OrgRole     string     `json:"orgRole"`
	JobTitle    string     `json:"jobTitle,omitempty"`
	Department  string     `json:"department,omitempty"`
	JoinedAt    *time.Time `json:"joinedAt,omitempty"`
}

// Profile is a resolved display identity. Weak, derived data: never
// authoritative, always re-fetchable.
type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// DisplayName picks the best available name for the profile.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Name
}

// DefaultColumns is the static column set used when a project has no board
// yet. The order is fixed; it anchors the terminal-column concept in the
// workflow guard.
func DefaultColumns() []Column {
	return []Column{
		{ID: StatusTodo, Name: "TO DO", Position: 0},
		{ID: StatusInProgress, Name: "IN PROGRESS", Position: 1},
		{ID: StatusInReview, Name: "IN REVIEW", Position: 2},
		{ID: StatusInTesting, Name: "IN TESTING", Position: 3},
		{ID: StatusDone, Name: "DONE", Position: 4},
	}
}

// NormalizeStatusToken maps a column name or raw status to its canonical
// uppercase underscored token: "In Progress" -> "IN_PROGRESS". "TO DO" is
// special-cased to TODO, matching the default column set where the column
// named "TO DO" has id TODO.
func NormalizeStatusToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	token := strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), "_")
	if token == "TO_DO" {
		return StatusTodo
	}
	return token
}
