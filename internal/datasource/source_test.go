package datasource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boardwalkhq/boardwalk/pkg/model"
	"github.com/boardwalkhq/boardwalk/pkg/testutil"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		path    string
		want    SourceType
		wantErr bool
	}{
		{"workspace.jsonl", SourceTypeJSONL, false},
		{"/tmp/ws.JSONL", SourceTypeJSONL, false},
		{"workspace.db", SourceTypeSQLite, false},
		{"workspace.sqlite", SourceTypeSQLite, false},
		{"workspace.sqlite3", SourceTypeSQLite, false},
		{"workspace.txt", "", true},
		{"workspace", "", true},
	}
	for _, tt := range tests {
		got, err := DetectType(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectType(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("DetectType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func testSnapshot() Snapshot {
	org, project, board := testutil.Hierarchy()
	created := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	issues := testutil.New(testutil.DefaultConfig()).Issues(5)
	issues[0].Assignee = &model.Assignee{FullName: "Ada Lovelace"}
	issues[0].Description = "has\nnewlines and \"quotes\""
	issues[0].UpdatedAt = &created
	return Snapshot{
		SavedAt: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
		Org:     &org,
		Project: &project,
		Board:   &board,
		Columns: model.DefaultColumns(),
		Issues:  issues,
	}
}

func assertSnapshotsMatch(t *testing.T, got, want Snapshot) {
	t.Helper()
	if !got.SavedAt.Equal(want.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", got.SavedAt, want.SavedAt)
	}
	if got.Org == nil || got.Org.ID != want.Org.ID {
		t.Errorf("Org = %v, want %v", got.Org, want.Org)
	}
	if got.Project == nil || got.Project.ProjectKey != want.Project.ProjectKey {
		t.Errorf("Project = %v, want %v", got.Project, want.Project)
	}
	if got.Board == nil || got.Board.ID != want.Board.ID {
		t.Errorf("Board = %v, want %v", got.Board, want.Board)
	}
	if len(got.Columns) != len(want.Columns) {
		t.Fatalf("len(Columns) = %d, want %d", len(got.Columns), len(want.Columns))
	}
	for i := range want.Columns {
		if got.Columns[i] != want.Columns[i] {
			t.Errorf("column %d = %+v, want %+v", i, got.Columns[i], want.Columns[i])
		}
	}
	testutil.AssertIssueCount(t, got.Issues, len(want.Issues))
	for i := range want.Issues {
		w, g := want.Issues[i], got.Issues[i]
		if g.ID != w.ID || g.Title != w.Title || g.Status != w.Status ||
			g.BoardColumnID != w.BoardColumnID || g.Priority != w.Priority ||
			g.Description != w.Description {
			t.Errorf("issue %d = %+v, want %+v", i, g, w)
		}
	}
	if got.Issues[0].Assignee == nil || got.Issues[0].Assignee.FullName != "Ada Lovelace" {
		t.Error("inline assignee snapshot lost in round trip")
	}
	if got.Issues[0].UpdatedAt == nil || !got.Issues[0].UpdatedAt.Equal(*want.Issues[0].UpdatedAt) {
		t.Error("issue timestamp lost in round trip")
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.jsonl")
	want := testSnapshot()

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSnapshotsMatch(t, got, want)
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.db")
	want := testSnapshot()

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertSnapshotsMatch(t, got, want)
}

func TestSaveOverwritesExistingSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.db")
	first := testSnapshot()
	if err := Save(path, first); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	second := first
	second.Issues = second.Issues[:2]
	if err := Save(path, second); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	testutil.AssertIssueCount(t, got.Issues, 2)
}

func TestSaveStampsSavedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.jsonl")
	snap := testSnapshot()
	snap.SavedAt = time.Time{}

	if err := Save(path, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.SavedAt.IsZero() {
		t.Error("Save must stamp SavedAt when unset")
	}
}

func TestParseJSONLSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"kind":"meta","meta":{"savedAt":"2026-04-02T08:00:00Z","version":1}}`,
		`this is not json`,
		`{"kind":"issue","issue":{"id":"A","title":"good","status":"TODO"}}`,
		`{"kind":"issue","issue":{"id":"","title":"no id"}}`,
		``,
		`{"kind":"mystery","payload":true}`,
		`{"kind":"issue","issue":{"id":"B","title":"also good","status":"DONE"}}`,
	}, "\n")

	snap, err := parseJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseJSONL() error = %v", err)
	}
	testutil.AssertOrder(t, snap.Issues, "A", "B")
	if snap.SavedAt.IsZero() {
		t.Error("meta line was not parsed")
	}
}

func TestParseJSONLStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBF" + `{"kind":"issue","issue":{"id":"A","title":"t","status":"TODO"}}`
	snap, err := parseJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseJSONL() error = %v", err)
	}
	testutil.AssertIssueCount(t, snap.Issues, 1)
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Error("loading a missing JSONL snapshot should fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.db")); err == nil {
		t.Error("loading a missing SQLite snapshot should fail")
	}
}

func TestJSONLSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.jsonl")
	if err := Save(path, testSnapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".bwk-snapshot-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}
