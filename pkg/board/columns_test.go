package board

import (
	"testing"

	"github.com/boardwalkhq/boardwalk/pkg/model"
)

func TestNewColumnSetFallback(t *testing.T) {
	s := NewColumnSet(nil)
	if !s.IsFallback() {
		t.Error("empty column list should use the fallback set")
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}

	explicit := NewColumnSet([]model.Column{{ID: "c1", Name: "Inbox"}})
	if explicit.IsFallback() {
		t.Error("explicit column list should not report fallback")
	}
	if explicit.Len() != 1 {
		t.Errorf("Len() = %d, want 1", explicit.Len())
	}
}

func TestResolve(t *testing.T) {
	cols := NewColumnSet([]model.Column{
		{ID: "c1", Name: "Inbox"},
		{ID: "c2", Name: "Doing"},
	})

	tests := []struct {
		name   string
		issue  model.Issue
		wantID string
		wantOK bool
	}{
		{"by board column id", model.Issue{BoardColumnID: "c2"}, "c2", true},
		{"legacy status fallback", model.Issue{Status: "c1"}, "c1", true},
		{"dangling column id stays unclassified", model.Issue{BoardColumnID: "gone", Status: "c1"}, "", false},
		{"unknown status", model.Issue{Status: "nope"}, "", false},
		{"empty issue", model.Issue{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := cols.Resolve(tt.issue)
			if ok != tt.wantOK || col.ID != tt.wantID {
				t.Errorf("Resolve() = (%q, %v), want (%q, %v)", col.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestStatusToken(t *testing.T) {
	cols := NewColumnSet([]model.Column{{ID: "c1", Name: "In Review"}})

	tests := []struct {
		name  string
		issue model.Issue
		want  string
	}{
		{"resolved column name", model.Issue{BoardColumnID: "c1", Status: "whatever"}, "IN_REVIEW"},
		{"unresolved raw status", model.Issue{Status: "in progress"}, "IN_PROGRESS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cols.StatusToken(tt.issue); got != tt.want {
				t.Errorf("StatusToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupOfFallbackSet(t *testing.T) {
	cols := NewColumnSet(nil)
	tests := []struct {
		status string
		want   Group
	}{
		{"TODO", GroupBacklog},
		{"IN_PROGRESS", GroupBoard},
		{"IN_REVIEW", GroupBoard},
		{"IN_TESTING", GroupBoard},
		{"DONE", GroupBacklog},
		{"SOMETHING_ELSE", GroupBacklog},
	}
	for _, tt := range tests {
		issue := model.Issue{BoardColumnID: tt.status, Status: tt.status}
		if got := cols.GroupOf(issue); got != tt.want {
			t.Errorf("GroupOf(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestGroupOfExplicitColumnsIsPositional(t *testing.T) {
	cols := NewColumnSet([]model.Column{
		{ID: "a", Name: "Ideas"},
		{ID: "b", Name: "Building"},
		{ID: "c", Name: "Verifying"},
		{ID: "d", Name: "Shipped"},
	})
	tests := []struct {
		col  string
		want Group
	}{
		{"a", GroupBacklog},
		{"b", GroupBoard},
		{"c", GroupBoard},
		{"d", GroupBacklog},
	}
	for _, tt := range tests {
		issue := model.Issue{BoardColumnID: tt.col}
		if got := cols.GroupOf(issue); got != tt.want {
			t.Errorf("GroupOf(column %s) = %v, want %v", tt.col, got, tt.want)
		}
	}

	// Unclassified issues land in the backlog group.
	if got := cols.GroupOf(model.Issue{BoardColumnID: "zzz"}); got != GroupBacklog {
		t.Errorf("GroupOf(unclassified) = %v, want GroupBacklog", got)
	}
}

func TestAssign(t *testing.T) {
	cols := NewColumnSet([]model.Column{
		{ID: "c1", Name: "Inbox"},
		{ID: "c2", Name: "Doing"},
	})
	issues := []model.Issue{
		{ID: "1", BoardColumnID: "c1"},
		{ID: "2", BoardColumnID: "c2"},
		{ID: "3", BoardColumnID: "c1"},
		{ID: "4", BoardColumnID: "dangling"},
	}

	buckets := cols.Assign(issues)
	if got := ids(buckets["c1"]); got != "1,3" {
		t.Errorf("c1 bucket = %s, want 1,3", got)
	}
	if got := ids(buckets["c2"]); got != "2" {
		t.Errorf("c2 bucket = %s, want 2", got)
	}
	total := len(buckets["c1"]) + len(buckets["c2"])
	if total != 3 {
		t.Errorf("assigned %d issues, want 3 (unclassified dropped)", total)
	}
}

func ids(issues []model.Issue) string {
	out := ""
	for i, issue := range issues {
		if i > 0 {
			out += ","
		}
		out += issue.ID
	}
	return out
}
