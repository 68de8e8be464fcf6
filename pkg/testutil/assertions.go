package testutil

import (
	"testing"

	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// AssertIssueCount verifies the expected number of issues.
func AssertIssueCount(t *testing.T, issues []model.Issue, expected int) {
	t.Helper()
	if len(issues) != expected {
		t.Errorf("expected %d issues, got %d", expected, len(issues))
	}
}

// AssertNoDuplicateIDs verifies all issue IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, issues []model.Issue) {
	t.Helper()
	seen := make(map[string]bool)
	for _, issue := range issues {
		if seen[issue.ID] {
			t.Errorf("duplicate issue ID: %s", issue.ID)
		}
		seen[issue.ID] = true
	}
}

// AssertAllValid verifies all issues pass validation.
func AssertAllValid(t *testing.T, issues []model.Issue) {
	t.Helper()
	for i, issue := range issues {
		if err := issue.Validate(); err != nil {
			t.Errorf("issue %d (%s) invalid: %v", i, issue.ID, err)
		}
	}
}

// AssertOrder verifies that the issue IDs appear in exactly the given order.
func AssertOrder(t *testing.T, issues []model.Issue, wantIDs ...string) {
	t.Helper()
	if len(issues) != len(wantIDs) {
		t.Fatalf("expected %d issues, got %d", len(wantIDs), len(issues))
	}
	for i, want := range wantIDs {
		if issues[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, issues[i].ID, want)
		}
	}
}

// AssertInColumn verifies an issue carries the given column identity on
// both BoardColumnID and the mirrored Status field.
func AssertInColumn(t *testing.T, issue model.Issue, columnID string) {
	t.Helper()
	if issue.BoardColumnID != columnID {
		t.Errorf("issue %s: BoardColumnID = %q, want %q", issue.ID, issue.BoardColumnID, columnID)
	}
	if issue.Status != columnID {
		t.Errorf("issue %s: Status = %q, want %q", issue.ID, issue.Status, columnID)
	}
}

// FindIssue returns the issue with the given ID, failing the test when
// absent.
func FindIssue(t *testing.T, issues []model.Issue, id string) model.Issue {
	t.Helper()
	for _, issue := range issues {
		if issue.ID == id {
			return issue
		}
	}
	t.Fatalf("issue %s not found", id)
	return model.Issue{}
}
