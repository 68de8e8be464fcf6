package workspace

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/boardwalkhq/boardwalk/pkg/api"
	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// fakeClient implements api.Client with per-method hooks. Unset hooks
// return zero values; moveCalls counts MoveIssue invocations.
type fakeClient struct {
	listOrganizations func(ctx context.Context) ([]model.Organization, error)
	listProjects      func(ctx context.Context, orgID string) ([]model.Project, error)
	getBoard          func(ctx context.Context, projectID string) (*model.Board, error)
	listColumns       func(ctx context.Context, boardID string) ([]model.Column, error)
	listIssues        func(ctx context.Context, projectID string) ([]model.Issue, error)
	listMembers       func(ctx context.Context, orgID string) ([]model.OrganizationMember, error)
	getProfile        func(ctx context.Context, userID string) (model.Profile, error)
	moveIssue         func(ctx context.Context, issueID, columnID string) (model.Issue, error)

	moveCalls int32
}

var _ api.Client = (*fakeClient)(nil)

func (f *fakeClient) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	if f.listOrganizations != nil {
		return f.listOrganizations(ctx)
	}
	return nil, nil
}

func (f *fakeClient) ListProjects(ctx context.Context, orgID string) ([]model.Project, error) {
	if f.listProjects != nil {
		return f.listProjects(ctx, orgID)
	}
	return nil, nil
}

func (f *fakeClient) GetBoard(ctx context.Context, projectID string) (*model.Board, error) {
	if f.getBoard != nil {
		return f.getBoard(ctx, projectID)
	}
	return nil, nil
}

func (f *fakeClient) ListColumns(ctx context.Context, boardID string) ([]model.Column, error) {
	if f.listColumns != nil {
		return f.listColumns(ctx, boardID)
	}
	return nil, nil
}

func (f *fakeClient) ListIssues(ctx context.Context, projectID string) ([]model.Issue, error) {
	if f.listIssues != nil {
		return f.listIssues(ctx, projectID)
	}
	return nil, nil
}

func (f *fakeClient) ListMembers(ctx context.Context, orgID string) ([]model.OrganizationMember, error) {
	if f.listMembers != nil {
		return f.listMembers(ctx, orgID)
	}
	return nil, nil
}

func (f *fakeClient) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	if f.getProfile != nil {
		return f.getProfile(ctx, userID)
	}
	return model.Profile{ID: userID}, nil
}

func (f *fakeClient) CreateIssue(ctx context.Context, req api.CreateIssueRequest) (model.Issue, error) {
	return model.Issue{}, errors.New("not implemented")
}

func (f *fakeClient) UpdateIssue(ctx context.Context, id string, fields map[string]any) (model.Issue, error) {
	return model.Issue{}, errors.New("not implemented")
}

func (f *fakeClient) DeleteIssue(ctx context.Context, id string) error {
	return nil
}

func (f *fakeClient) CreateSubTask(ctx context.Context, parentID string, req api.CreateSubTaskRequest) (model.Issue, error) {
	return model.Issue{}, errors.New("not implemented")
}

func (f *fakeClient) MoveIssue(ctx context.Context, issueID, columnID string) (model.Issue, error) {
	atomic.AddInt32(&f.moveCalls, 1)
	if f.moveIssue != nil {
		return f.moveIssue(ctx, issueID, columnID)
	}
	return model.Issue{ID: issueID, BoardColumnID: columnID, Status: columnID, Title: "moved"}, nil
}

func (f *fakeClient) CreateBoard(ctx context.Context, req api.CreateBoardRequest) (model.Board, error) {
	return model.Board{}, errors.New("not implemented")
}

func (f *fakeClient) CreateProject(ctx context.Context, req api.CreateProjectRequest) (model.Project, error) {
	return model.Project{}, errors.New("not implemented")
}

func (f *fakeClient) InviteMember(ctx context.Context, orgID, email string) error { return nil }
func (f *fakeClient) AcceptInvite(ctx context.Context, token string) error        { return nil }
func (f *fakeClient) RejectInvite(ctx context.Context, token string) error        { return nil }

func (f *fakeClient) MoveCalls() int {
	return int(atomic.LoadInt32(&f.moveCalls))
}
