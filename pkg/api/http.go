package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// DefaultTimeout bounds a single API call end to end.
const DefaultTimeout = 15 * time.Second

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) HTTPOption {
	return func(c *HTTPClient) {
		c.token = token
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.hc = hc
	}
}

// HTTPClient implements Client against the backend's REST routes.
type HTTPClient struct {
	baseURL string
	token   string
	hc      *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and decodes the response body into out (when out is
// non-nil). Non-2xx answers become a *StatusError carrying the server's
// message field when one can be parsed.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// readErrorMessage pulls a human-readable message out of an error body.
// Backends answer with {"message": ...} or {"error": ...}; anything else is
// returned as raw text.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 8*1024))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func (c *HTTPClient) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	var out []model.Organization
	if err := c.do(ctx, http.MethodGet, "/api/organizations/my", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListProjects(ctx context.Context, orgID string) ([]model.Project, error) {
	var out []model.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/org/"+url.PathEscape(orgID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetBoard(ctx context.Context, projectID string) (*model.Board, error) {
	var out model.Board
	err := c.do(ctx, http.MethodGet, "/api/boards/project/"+url.PathEscape(projectID), nil, &out)
	if err != nil {
		// An unprovisioned project has no board; that is data, not failure.
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListColumns(ctx context.Context, boardID string) ([]model.Column, error) {
	var out []model.Column
	if err := c.do(ctx, http.MethodGet, "/api/boards/"+url.PathEscape(boardID)+"/columns", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListIssues(ctx context.Context, projectID string) ([]model.Issue, error) {
	var out []model.Issue
	if err := c.do(ctx, http.MethodGet, "/api/issues/project/"+url.PathEscape(projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListMembers(ctx context.Context, orgID string) ([]model.OrganizationMember, error) {
	var out []model.OrganizationMember
	if err := c.do(ctx, http.MethodGet, "/api/organizations/"+url.PathEscape(orgID)+"/members", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	var out model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/profile/by-id/"+url.PathEscape(userID), nil, &out); err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

func (c *HTTPClient) CreateIssue(ctx context.Context, req CreateIssueRequest) (model.Issue, error) {
	var out model.Issue
	if err := c.do(ctx, http.MethodPost, "/api/issues", req, &out); err != nil {
		return model.Issue{}, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateIssue(ctx context.Context, id string, fields map[string]any) (model.Issue, error) {
	var out model.Issue
	if err := c.do(ctx, http.MethodPut, "/api/issues/"+url.PathEscape(id), fields, &out); err != nil {
		return model.Issue{}, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteIssue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/issues/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) CreateSubTask(ctx context.Context, parentID string, req CreateSubTaskRequest) (model.Issue, error) {
	var out model.Issue
	if err := c.do(ctx, http.MethodPost, "/api/issues/"+url.PathEscape(parentID)+"/subtasks", req, &out); err != nil {
		return model.Issue{}, err
	}
	return out, nil
}

func (c *HTTPClient) MoveIssue(ctx context.Context, issueID, columnID string) (model.Issue, error) {
	var out model.Issue
	body := map[string]string{"columnId": columnID}
	if err := c.do(ctx, http.MethodPatch, "/api/issues/"+url.PathEscape(issueID)+"/move", body, &out); err != nil {
		return model.Issue{}, err
	}
	return out, nil
}

func (c *HTTPClient) CreateBoard(ctx context.Context, req CreateBoardRequest) (model.Board, error) {
	var out model.Board
	if err := c.do(ctx, http.MethodPost, "/api/boards", req, &out); err != nil {
		return model.Board{}, err
	}
	return out, nil
}

func (c *HTTPClient) CreateProject(ctx context.Context, req CreateProjectRequest) (model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", req, &out); err != nil {
		return model.Project{}, err
	}
	return out, nil
}

func (c *HTTPClient) InviteMember(ctx context.Context, orgID, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/organizations/"+url.PathEscape(orgID)+"/invite", body, nil)
}

func (c *HTTPClient) AcceptInvite(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/organizations/invites/accept?token="+url.QueryEscape(token), nil, nil)
}

func (c *HTTPClient) RejectInvite(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/organizations/invites/reject?token="+url.QueryEscape(token), nil, nil)
}
