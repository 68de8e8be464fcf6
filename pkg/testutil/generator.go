// Package testutil provides deterministic workspace fixtures for tests:
// issue sets spread across columns, members, and canned hierarchies.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// GeneratorConfig controls issue generation.
type GeneratorConfig struct {
	Seed        int64            // Random seed for determinism (0 = use current time)
	IDPrefix    string           // Prefix for issue IDs (default: "TEST")
	ProjectID   string           // Project ID stamped on every issue
	BaseTime    time.Time        // Base time for timestamps (default: fixed time)
	Columns     []model.Column   // Column distribution (nil = default column set)
	PriorityMix []model.Priority // Priority distribution (nil = all MEDIUM)
	AssigneeIDs []string         // rotated through issues; "" leaves unassigned
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		IDPrefix:    "TEST",
		ProjectID:   "proj-1",
		BaseTime:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		PriorityMix: []model.Priority{model.PriorityMedium},
	}
}

// Generator creates deterministic issue fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "TEST"
	}
	if len(cfg.Columns) == 0 {
		cfg.Columns = model.DefaultColumns()
	}
	if len(cfg.PriorityMix) == 0 {
		cfg.PriorityMix = []model.Priority{model.PriorityMedium}
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Issues generates n issues spread round-robin across the configured
// columns, with Status mirroring BoardColumnID the way a move would leave
// it.
func (g *Generator) Issues(n int) []model.Issue {
	issues := make([]model.Issue, 0, n)
	for i := 0; i < n; i++ {
		col := g.cfg.Columns[i%len(g.cfg.Columns)]
		created := g.cfg.BaseTime.Add(time.Duration(i) * time.Hour)
		issue := model.Issue{
			ID:            fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i+1),
			Title:         fmt.Sprintf("Issue %d", i+1),
			Status:        col.ID,
			BoardColumnID: col.ID,
			Priority:      g.cfg.PriorityMix[g.rng.Intn(len(g.cfg.PriorityMix))],
			IssueType:     "TASK",
			ProjectID:     g.cfg.ProjectID,
			CreatedAt:     &created,
		}
		if len(g.cfg.AssigneeIDs) > 0 {
			issue.AssigneeID = g.cfg.AssigneeIDs[i%len(g.cfg.AssigneeIDs)]
		}
		issues = append(issues, issue)
	}
	return issues
}

// ColumnIssues generates n issues all in one column, in list order.
func (g *Generator) ColumnIssues(columnID string, n int) []model.Issue {
	issues := make([]model.Issue, 0, n)
	for i := 0; i < n; i++ {
		created := g.cfg.BaseTime.Add(time.Duration(i) * time.Minute)
		issues = append(issues, model.Issue{
			ID:            fmt.Sprintf("%s-%s-%d", g.cfg.IDPrefix, columnID, i+1),
			Title:         fmt.Sprintf("%s issue %d", columnID, i+1),
			Status:        columnID,
			BoardColumnID: columnID,
			Priority:      model.PriorityMedium,
			ProjectID:     g.cfg.ProjectID,
			CreatedAt:     &created,
		})
	}
	return issues
}

// Members generates n organization members with stable IDs user-1..user-n.
func Members(n int) []model.OrganizationMember {
	members := make([]model.OrganizationMember, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, model.OrganizationMember{
			UserID:      fmt.Sprintf("user-%d", i+1),
			Email:       fmt.Sprintf("user%d@example.com", i+1),
			DisplayName: fmt.Sprintf("User %d", i+1),
			OrgRole:     "MEMBER",
		})
	}
	return members
}

// Hierarchy returns a minimal org/project/board triple for loader tests.
func Hierarchy() (model.Organization, model.Project, model.Board) {
	org := model.Organization{ID: "org-1", Name: "Acme"}
	project := model.Project{
		ID:             "proj-1",
		Name:           "Console",
		ProjectKey:     "CONS",
		OrganizationID: org.ID,
	}
	board := model.Board{
		ID:      "board-1",
		Name:    "Console board",
		Type:    model.BoardKanban,
		Columns: model.DefaultColumns(),
	}
	return org, project, board
}
