package workspace

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/boardwalkhq/boardwalk/pkg/api"
	"github.com/boardwalkhq/boardwalk/pkg/metrics"
	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// Snapshot is one project's worth of workspace state as fetched from the
// backend: the hierarchy plus the issue and member lists.
type Snapshot struct {
	Org     model.Organization
	Project model.Project
	Board   *model.Board
	Columns []model.Column
	Issues  []model.Issue
	Members []model.OrganizationMember
}

// LoadProject fetches everything the store needs for one project. The
// board (and its columns), the issue list and the member list are fetched
// concurrently; a missing board is not an error and yields the fallback
// column set downstream.
func LoadProject(ctx context.Context, client api.Client, org model.Organization, project model.Project) (Snapshot, error) {
	defer metrics.Timer(metrics.ProjectLoad)()

	snap := Snapshot{Org: org, Project: project}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := client.GetBoard(ctx, project.ID)
		if err != nil {
			return fmt.Errorf("fetching board for project %s: %w", project.ID, err)
		}
		snap.Board = b
		if b == nil {
			return nil
		}
		if len(b.Columns) > 0 {
			snap.Columns = b.Columns
			return nil
		}
		cols, err := client.ListColumns(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("fetching columns for board %s: %w", b.ID, err)
		}
		snap.Columns = cols
		return nil
	})

	g.Go(func() error {
		issues, err := client.ListIssues(ctx, project.ID)
		if err != nil {
			return fmt.Errorf("fetching issues for project %s: %w", project.ID, err)
		}
		snap.Issues = issues
		return nil
	})

	g.Go(func() error {
		members, err := client.ListMembers(ctx, org.ID)
		if err != nil {
			return fmt.Errorf("fetching members for org %s: %w", org.ID, err)
		}
		snap.Members = members
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Install replaces the store's whole navigation context with the snapshot.
// Switching projects replaces the entire issue and column set.
func (s *Store) Install(snap Snapshot) {
	s.SetCurrentOrg(&snap.Org)
	s.SetCurrentProject(&snap.Project)
	s.SetCurrentBoard(snap.Board)
	s.SetColumns(snap.Columns)
	s.SetIssues(snap.Issues)
	s.SetMembers(snap.Members)
}

// SwitchProject loads a project from the backend and installs it.
func (s *Store) SwitchProject(ctx context.Context, org model.Organization, project model.Project) error {
	snap, err := LoadProject(ctx, s.client, org, project)
	if err != nil {
		return err
	}
	s.Install(snap)
	return nil
}

// Resync reloads the active project wholesale. This is the
// reload-equivalent recovery path: correctness over smoothness.
func (s *Store) Resync(ctx context.Context) error {
	s.mu.RLock()
	org := s.org
	project := s.project
	s.mu.RUnlock()

	if org == nil || project == nil {
		return fmt.Errorf("no active project to resynchronize")
	}
	return s.SwitchProject(ctx, *org, *project)
}
