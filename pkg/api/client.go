// Package api defines the backend workspace contract and its HTTP
// implementation.
//
// The core never assumes a transport: everything upstream of this package
// talks to the Client interface, and tests substitute fakes. The contract
// mirrors the backend routes one-to-one.
package api

import (
	"context"
	"fmt"

	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// CreateIssueRequest is the payload for creating an issue.
type CreateIssueRequest struct {
	ProjectID     string         `json:"projectId"`
	IssueTypeID   string         `json:"issueTypeId"`
	BoardColumnID string         `json:"boardColumnId,omitempty"`
	EpicID        string         `json:"epicId,omitempty"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Priority      model.Priority `json:"priority,omitempty"`
	AssigneeID    string         `json:"assigneeId,omitempty"`
}

// CreateSubTaskRequest is the payload for creating a subtask under a parent
// issue.
type CreateSubTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	AssigneeID  string         `json:"assigneeId,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
}

// CreateBoardRequest is the payload for provisioning a board.
type CreateBoardRequest struct {
	ProjectID string          `json:"projectId"`
	Name      string          `json:"name"`
	Type      model.BoardType `json:"type"`
}

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	ProjectKey     string `json:"projectKey"`
	ProjectType    string `json:"projectType,omitempty"`
}

// Client is the backend workspace API. Every call may fail with a
// transport, auth or validation error; callers must never leave optimistic
// local state inconsistent with intent on failure.
type Client interface {
	// ListOrganizations returns the organizations of the current user.
	ListOrganizations(ctx context.Context) ([]model.Organization, error)

	// ListProjects returns the projects of an organization.
	ListProjects(ctx context.Context, orgID string) ([]model.Project, error)

	// GetBoard returns the board of a project, or nil when the project has
	// no board yet. A missing board is not an error.
	GetBoard(ctx context.Context, projectID string) (*model.Board, error)

	// ListColumns returns the ordered columns of a board.
	ListColumns(ctx context.Context, boardID string) ([]model.Column, error)

	// ListIssues returns all issues of a project.
	ListIssues(ctx context.Context, projectID string) ([]model.Issue, error)

	// ListMembers returns the members of an organization.
	ListMembers(ctx context.Context, orgID string) ([]model.OrganizationMember, error)

	// GetProfile resolves a user id to its display profile.
	GetProfile(ctx context.Context, userID string) (model.Profile, error)

	// CreateIssue creates an issue and returns the server's representation.
	CreateIssue(ctx context.Context, req CreateIssueRequest) (model.Issue, error)

	// UpdateIssue merges partial fields into an issue server-side.
	UpdateIssue(ctx context.Context, id string, fields map[string]any) (model.Issue, error)

	// DeleteIssue removes an issue.
	DeleteIssue(ctx context.Context, id string) error

	// CreateSubTask creates a subtask under the given parent issue.
	CreateSubTask(ctx context.Context, parentID string, req CreateSubTaskRequest) (model.Issue, error)

	// MoveIssue relocates an issue to a column. The response is the
	// authoritative issue used for reconciliation after an optimistic move.
	MoveIssue(ctx context.Context, issueID, columnID string) (model.Issue, error)

	// CreateBoard provisions a board for a project.
	CreateBoard(ctx context.Context, req CreateBoardRequest) (model.Board, error)

	// CreateProject creates a project in an organization.
	CreateProject(ctx context.Context, req CreateProjectRequest) (model.Project, error)

	// InviteMember invites an email address into an organization.
	InviteMember(ctx context.Context, orgID, email string) error

	// AcceptInvite accepts an organization invite token.
	AcceptInvite(ctx context.Context, token string) error

	// RejectInvite rejects an organization invite token.
	RejectInvite(ctx context.Context, token string) error
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}
