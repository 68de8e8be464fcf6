package datasource

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/boardwalkhq/boardwalk/pkg/debug"
	"github.com/boardwalkhq/boardwalk/pkg/model"
)

// maxLineSize bounds a single snapshot line (1MB). Issues never get close;
// anything larger is a corrupt file.
const maxLineSize = 1024 * 1024

// record is one JSONL snapshot line. Kind tags the payload so columns and
// issues can interleave with the header.
type record struct {
	Kind    string              `json:"kind"`
	Meta    *metaRecord         `json:"meta,omitempty"`
	Column  *model.Column       `json:"column,omitempty"`
	Issue   *model.Issue        `json:"issue,omitempty"`
	Org     *model.Organization `json:"org,omitempty"`
	Project *model.Project      `json:"project,omitempty"`
	Board   *model.Board        `json:"board,omitempty"`
}

type metaRecord struct {
	SavedAt string `json:"savedAt"`
	Version int    `json:"version"`
}

const jsonlVersion = 1

func saveJSONL(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	// Write to a temp file and rename, so a watcher never sees a torn
	// snapshot.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bwk-snapshot-*")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	write := func(r record) error {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	}

	meta := metaRecord{SavedAt: snap.SavedAt.Format(time.RFC3339), Version: jsonlVersion}
	if err := write(record{Kind: "meta", Meta: &meta}); err != nil {
		return fmt.Errorf("writing snapshot meta: %w", err)
	}
	if snap.Org != nil {
		if err := write(record{Kind: "org", Org: snap.Org}); err != nil {
			return fmt.Errorf("writing snapshot org: %w", err)
		}
	}
	if snap.Project != nil {
		if err := write(record{Kind: "project", Project: snap.Project}); err != nil {
			return fmt.Errorf("writing snapshot project: %w", err)
		}
	}
	if snap.Board != nil {
		// Columns and issues are flattened into their own lines.
		b := *snap.Board
		b.Columns = nil
		b.Issues = nil
		if err := write(record{Kind: "board", Board: &b}); err != nil {
			return fmt.Errorf("writing snapshot board: %w", err)
		}
	}
	for i := range snap.Columns {
		if err := write(record{Kind: "column", Column: &snap.Columns[i]}); err != nil {
			return fmt.Errorf("writing snapshot column: %w", err)
		}
	}
	for i := range snap.Issues {
		if err := write(record{Kind: "issue", Issue: &snap.Issues[i]}); err != nil {
			return fmt.Errorf("writing snapshot issue: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("installing snapshot: %w", err)
	}
	return nil
}

func loadJSONL(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	return parseJSONL(f)
}

// parseJSONL reads snapshot records line by line. Malformed lines are
// skipped with a debug log rather than failing the whole load; a snapshot
// is derived data and a partial read beats no read.
func parseJSONL(r io.Reader) (Snapshot, error) {
	var snap Snapshot

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			debug.Log("snapshot: skipping malformed line %d: %v", lineNum, err)
			continue
		}

		switch rec.Kind {
		case "meta":
			if rec.Meta != nil && rec.Meta.SavedAt != "" {
				if t, err := time.Parse(time.RFC3339, rec.Meta.SavedAt); err == nil {
					snap.SavedAt = t
				}
			}
		case "org":
			snap.Org = rec.Org
		case "project":
			snap.Project = rec.Project
		case "board":
			snap.Board = rec.Board
		case "column":
			if rec.Column != nil {
				snap.Columns = append(snap.Columns, *rec.Column)
			}
		case "issue":
			if rec.Issue == nil {
				continue
			}
			if err := rec.Issue.Validate(); err != nil {
				debug.Log("snapshot: skipping invalid issue on line %d: %v", lineNum, err)
				continue
			}
			snap.Issues = append(snap.Issues, *rec.Issue)
		default:
			debug.Log("snapshot: skipping unknown record kind %q on line %d", rec.Kind, lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot at line %d: %w", lineNum, err)
	}
	return snap, nil
}

// stripBOM removes the UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
