// Package datasource reads and writes offline workspace snapshots.
//
// A snapshot captures the navigation context the store was showing
// (project, board, columns, issues) so the board can be rendered without a
// backend. Two formats exist: line-oriented JSONL for diff-friendly files
// and SQLite for larger workspaces. The format is chosen by file
// extension.
package datasource

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/boardwalkhq/boardwalk/pkg/metrics"
	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// SourceType identifies a snapshot format.
type SourceType string

const (
	SourceTypeJSONL  SourceType = "jsonl"
	SourceTypeSQLite SourceType = "sqlite"
)

// Snapshot is the offline representation of one project's workspace.
type Snapshot struct {
	SavedAt time.Time           `json:"savedAt"`
	Org     *model.Organization `json:"org,omitempty"`
	Project *model.Project      `json:"project,omitempty"`
	Board   *model.Board        `json:"board,omitempty"`
	Columns []model.Column      `json:"columns,omitempty"`
	Issues  []model.Issue       `json:"issues,omitempty"`
}

// DetectType maps a snapshot path to its format by extension.
func DetectType(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return SourceTypeJSONL, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	}
	return "", fmt.Errorf("cannot detect snapshot format of %s (want .jsonl, .db, .sqlite or .sqlite3)", path)
}

// Save writes the snapshot to path, dispatching on the detected format.
func Save(path string, snap Snapshot) error {
	t, err := DetectType(path)
	if err != nil {
		return err
	}
	defer metrics.Timer(metrics.SnapshotSave)()
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	switch t {
	case SourceTypeSQLite:
		return saveSQLite(path, snap)
	default:
		return saveJSONL(path, snap)
	}
}

// Load reads a snapshot from path, dispatching on the detected format.
func Load(path string) (Snapshot, error) {
	t, err := DetectType(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer metrics.Timer(metrics.SnapshotLoad)()
	switch t {
	case SourceTypeSQLite:
		return loadSQLite(path)
	default:
		return loadJSONL(path)
	}
}
