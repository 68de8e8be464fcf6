// Package workspace holds the client-side state of the active project:
// the organization/project/board hierarchy, the issue list, the filter
// selections, and every mutation operation over them.
//
// The store is an explicit object handed to whoever needs it; there is no
// ambient global. Local mutations are synchronous and atomic under the
// store's lock. The only suspension points are the backend calls made by
// MoveIssue and the loader; between issuing a move and receiving its
// response the optimistic state is the current truth shown to the user.
package workspace

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/boardwalkhq/boardwalk/pkg/api"
	"github.com/boardwalkhq/boardwalk/pkg/board"
	"github.com/boardwalkhq/boardwalk/pkg/filter"
	"github.com/boardwalkhq/boardwalk/pkg/model"
	"github.com/boardwalkhq/boardwalk/pkg/profile"
)

// Store is the single source of truth for the active project's board
// state. Construct with NewStore; the zero value is not usable.
type Store struct {
	client   api.Client
	profiles *profile.Cache
	logger   *log.Logger

	mu      sync.RWMutex
	org     *model.Organization
	project *model.Project
	board   *model.Board
	columns board.ColumnSet
	issues  []model.Issue
	members []model.OrganizationMember
	filters filter.Filters

	// generation counts issue-list mutations. The move orchestrator uses
	// it to tell whether its pre-move snapshot is still restorable.
	generation uint64

	// moveLocks serializes moves per issue id.
	moveMu    sync.Mutex
	moveLocks map[string]*sync.Mutex
}

// NewStore creates a store talking to the given backend client.
func NewStore(client api.Client) *Store {
	s := &Store{
		client: client,
		// Silence by default. Callers can opt-in via SetLogger.
		logger:    log.New(io.Discard, "", 0),
		columns:   board.NewColumnSet(nil),
		moveLocks: make(map[string]*sync.Mutex),
	}
	s.profiles = profile.NewCache(func(ctx context.Context, userID string) (model.Profile, error) {
		return client.GetProfile(ctx, userID)
	})
	return s
}

// SetLogger sets a custom logger for warnings on the network-touching
// paths. It also applies to the profile cache.
func (s *Store) SetLogger(logger *log.Logger) {
	s.logger = logger
	s.profiles.SetLogger(logger)
}

// Profiles exposes the user profile cache.
func (s *Store) Profiles() *profile.Cache {
	return s.profiles
}

// EnsureProfile delegates to the profile cache. Idempotent, safe to call
// repeatedly from render passes.
func (s *Store) EnsureProfile(ctx context.Context, userID string) {
	s.profiles.Ensure(ctx, userID)
}

// --- navigation-context setters -----------------------------------------

// SetCurrentOrg replaces the active organization.
func (s *Store) SetCurrentOrg(org *model.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.org = org
}

// SetCurrentProject replaces the active project.
func (s *Store) SetCurrentProject(p *model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = p
}

// SetCurrentBoard replaces the active board.
func (s *Store) SetCurrentBoard(b *model.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = b
}

// SetIssues replaces the whole issue set. Callers guarantee shape; no
// validation happens here.
func (s *Store) SetIssues(issues []model.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = issues
	s.generation++
}

// SetColumns replaces the column set. An empty list installs the default
// five columns.
func (s *Store) SetColumns(columns []model.Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = board.NewColumnSet(columns)
}

// SetMembers replaces the organization member list.
func (s *Store) SetMembers(members []model.OrganizationMember) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = members
}

// --- read accessors ------------------------------------------------------

// CurrentOrg returns the active organization, or nil.
func (s *Store) CurrentOrg() *model.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.org
}

// CurrentProject returns the active project, or nil.
func (s *Store) CurrentProject() *model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// CurrentBoard returns the active board, or nil when the project has none.
func (s *Store) CurrentBoard() *model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

// Issues returns a copy of the issue list.
func (s *Store) Issues() []model.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// Columns returns the active column set.
func (s *Store) Columns() board.ColumnSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columns
}

// Members returns a copy of the organization member list.
func (s *Store) Members() []model.OrganizationMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.OrganizationMember, len(s.members))
	copy(out, s.members)
	return out
}

// --- issue mutations -----------------------------------------------------

// AddIssue appends to the issue set. The caller guarantees the issue is
// new (fresh from a successful create call); there is no duplicate check.
func (s *Store) AddIssue(issue model.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, issue)
	s.generation++
}

// IssuePatch carries the fields UpdateIssue may merge. Nil fields are left
// untouched.
type IssuePatch struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *model.Priority
	IssueType     *string
	BoardColumnID *string
	AssigneeID    *string
	Assignee      *model.Assignee
}

// UpdateIssue shallow-merges the patch into the matching issue. Silently a
// no-op when the id is not found: UI events referencing stale ids must not
// crash the session.
func (s *Store) UpdateIssue(id string, patch IssuePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID != id {
			continue
		}
		issue := &s.issues[i]
		if patch.Title != nil {
			issue.Title = *patch.Title
		}
		if patch.Description != nil {
			issue.Description = *patch.Description
		}
		if patch.Status != nil {
			issue.Status = *patch.Status
		}
		if patch.Priority != nil {
			issue.Priority = *patch.Priority
		}
		if patch.IssueType != nil {
			issue.IssueType = *patch.IssueType
		}
		if patch.BoardColumnID != nil {
			issue.BoardColumnID = *patch.BoardColumnID
		}
		if patch.AssigneeID != nil {
			issue.AssigneeID = *patch.AssigneeID
		}
		if patch.Assignee != nil {
			a := *patch.Assignee
			issue.Assignee = &a
		}
		s.generation++
		return
	}
}

// UpdateIssueStatus merges only the status field. It deliberately does not
// touch BoardColumnID; callers needing transactional column+status
// consistency must use MoveIssue.
func (s *Store) UpdateIssueStatus(id, status string) {
	s.UpdateIssue(id, IssuePatch{Status: &status})
}

// DeleteIssue removes the issue with the matching id; no-op if absent.
func (s *Store) DeleteIssue(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == id {
			s.issues = append(s.issues[:i], s.issues[i+1:]...)
			s.generation++
			return
		}
	}
}

// ReorderIssues reorders issues within one status group: the element at
// startIndex moves to endIndex, all other issues keep their relative
// order. Order is not persisted remotely; a reload loses it.
func (s *Store) ReorderIssues(status string, startIndex, endIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var group, others []model.Issue
	for _, issue := range s.issues {
		if issue.Status == status {
			group = append(group, issue)
		} else {
			others = append(others, issue)
		}
	}
	if startIndex < 0 || startIndex >= len(group) {
		return
	}
	moved := group[startIndex]
	group = append(group[:startIndex], group[startIndex+1:]...)
	if endIndex < 0 {
		endIndex = 0
	}
	if endIndex > len(group) {
		endIndex = len(group)
	}
	group = append(group[:endIndex], append([]model.Issue{moved}, group[endIndex:]...)...)

	s.issues = append(others, group...)
	s.generation++
}

// --- filter state --------------------------------------------------------

// Filters returns a copy of the current filter state.
func (s *Store) Filters() filter.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyFilters(s.filters)
}

// SetSearchQuery replaces the search text.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SearchQuery = q
}

// ToggleAssigneeFilter adds or removes a user id from the assignee
// selection.
func (s *Store) ToggleAssigneeFilter(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.AssigneeIDs = toggle(s.filters.AssigneeIDs, userID)
}

// ToggleStatusFilter adds or removes a status token (or column id) from
// the status selection.
func (s *Store) ToggleStatusFilter(statusID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.StatusIDs = toggle(s.filters.StatusIDs, statusID)
}

// TogglePriorityFilter adds or removes a priority from the selection.
func (s *Store) TogglePriorityFilter(priorityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.PriorityIDs = toggle(s.filters.PriorityIDs, priorityID)
}

// ClearAllFilters resets all four dimensions at once.
func (s *Store) ClearAllFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filter.Filters{}
}

// ActiveFilterCount is the number of non-search selections.
func (s *Store) ActiveFilterCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.ActiveCount()
}

// VisibleIssues applies the current filters to the issue list.
func (s *Store) VisibleIssues() []model.Issue {
	s.mu.RLock()
	issues := make([]model.Issue, len(s.issues))
	copy(issues, s.issues)
	cols := s.columns
	f := copyFilters(s.filters)
	s.mu.RUnlock()
	return filter.Apply(issues, cols, f)
}

// ColumnIssues returns the column-local list: issues whose BoardColumnID
// equals the given column id, in list order.
func (s *Store) ColumnIssues(columnID string) []model.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return columnLocal(s.issues, columnID)
}

func columnLocal(issues []model.Issue, columnID string) []model.Issue {
	var out []model.Issue
	for _, issue := range issues {
		if issue.BoardColumnID == columnID {
			out = append(out, issue)
		}
	}
	return out
}

func toggle(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

func copyFilters(f filter.Filters) filter.Filters {
	out := f
	out.AssigneeIDs = append([]string(nil), f.AssigneeIDs...)
	out.StatusIDs = append([]string(nil), f.StatusIDs...)
	out.PriorityIDs = append([]string(nil), f.PriorityIDs...)
	return out
}
