package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/boardwalkhq/boardwalk/pkg/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS columns (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS issues (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	status          TEXT NOT NULL,
	priority        TEXT NOT NULL,
	issue_type      TEXT,
	board_column_id TEXT,
	project_id      TEXT,
	assignee_id     TEXT,
	reporter_id     TEXT,
	description     TEXT,
	created_at      TEXT,
	updated_at      TEXT,
	assignee_json   TEXT,
	position        INTEGER NOT NULL DEFAULT 0
);
`

func saveSQLite(path string, snap Snapshot) error {
	// Recreate from scratch; a snapshot is always written whole.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing snapshot: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening snapshot database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("creating snapshot schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	putMeta := func(key, value string) error {
		_, err := tx.Exec(`INSERT INTO snapshot_meta (key, value) VALUES (?, ?)`, key, value)
		return err
	}
	if err := putMeta("saved_at", snap.SavedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("writing snapshot meta: %w", err)
	}
	for key, v := range map[string]any{"org": snap.Org, "project": snap.Project, "board": boardHeader(snap.Board)} {
		if isNilPtr(v) {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding snapshot %s: %w", key, err)
		}
		if err := putMeta(key, string(data)); err != nil {
			return fmt.Errorf("writing snapshot %s: %w", key, err)
		}
	}

	colStmt, err := tx.Prepare(`INSERT INTO columns (id, name, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing column insert: %w", err)
	}
	defer colStmt.Close()
	for _, c := range snap.Columns {
		if _, err := colStmt.Exec(c.ID, c.Name, c.Position); err != nil {
			return fmt.Errorf("inserting column %s: %w", c.ID, err)
		}
	}

	issueStmt, err := tx.Prepare(`
		INSERT INTO issues (
			id, title, status, priority, issue_type, board_column_id,
			project_id, assignee_id, reporter_id, description,
			created_at, updated_at, assignee_json, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing issue insert: %w", err)
	}
	defer issueStmt.Close()

	for pos, issue := range snap.Issues {
		var assigneeJSON sql.NullString
		if issue.Assignee != nil {
			data, err := json.Marshal(issue.Assignee)
			if err != nil {
				return fmt.Errorf("encoding assignee of %s: %w", issue.ID, err)
			}
			assigneeJSON = sql.NullString{String: string(data), Valid: true}
		}
		_, err := issueStmt.Exec(
			issue.ID, issue.Title, issue.Status, string(issue.Priority),
			nullable(issue.IssueType), nullable(issue.BoardColumnID),
			nullable(issue.ProjectID), nullable(issue.AssigneeID),
			nullable(issue.ReporterID), nullable(issue.Description),
			nullableTime(issue.CreatedAt), nullableTime(issue.UpdatedAt),
			assigneeJSON, pos,
		)
		if err != nil {
			return fmt.Errorf("inserting issue %s: %w", issue.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func loadSQLite(path string) (Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot not found at %s: %w", path, err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return Snapshot{}, fmt.Errorf("opening snapshot database: %w", err)
	}
	defer db.Close()

	var snap Snapshot

	rows, err := db.Query(`SELECT key, value FROM snapshot_meta`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot meta: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case "saved_at":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				snap.SavedAt = t
			}
		case "org":
			var org model.Organization
			if json.Unmarshal([]byte(value), &org) == nil {
				snap.Org = &org
			}
		case "project":
			var p model.Project
			if json.Unmarshal([]byte(value), &p) == nil {
				snap.Project = &p
			}
		case "board":
			var b model.Board
			if json.Unmarshal([]byte(value), &b) == nil {
				snap.Board = &b
			}
		}
	}
	rows.Close()

	colRows, err := db.Query(`SELECT id, name, position FROM columns ORDER BY position`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot columns: %w", err)
	}
	for colRows.Next() {
		var c model.Column
		if err := colRows.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			continue
		}
		snap.Columns = append(snap.Columns, c)
	}
	colRows.Close()

	issueRows, err := db.Query(`
		SELECT id, title, status, priority, issue_type, board_column_id,
		       project_id, assignee_id, reporter_id, description,
		       created_at, updated_at, assignee_json
		FROM issues ORDER BY position`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot issues: %w", err)
	}
	defer issueRows.Close()

	for issueRows.Next() {
		var issue model.Issue
		var priority string
		var issueType, boardColumnID, projectID, assigneeID, reporterID sql.NullString
		var description, createdAt, updatedAt, assigneeJSON sql.NullString

		err := issueRows.Scan(
			&issue.ID, &issue.Title, &issue.Status, &priority,
			&issueType, &boardColumnID, &projectID, &assigneeID,
			&reporterID, &description, &createdAt, &updatedAt, &assigneeJSON,
		)
		if err != nil {
			continue
		}

		issue.Priority = model.Priority(priority)
		issue.IssueType = issueType.String
		issue.BoardColumnID = boardColumnID.String
		issue.ProjectID = projectID.String
		issue.AssigneeID = assigneeID.String
		issue.ReporterID = reporterID.String
		issue.Description = description.String
		if createdAt.Valid {
			if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				issue.CreatedAt = &t
			}
		}
		if updatedAt.Valid {
			if t, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
				issue.UpdatedAt = &t
			}
		}
		if assigneeJSON.Valid {
			var a model.Assignee
			if json.Unmarshal([]byte(assigneeJSON.String), &a) == nil {
				issue.Assignee = &a
			}
		}

		snap.Issues = append(snap.Issues, issue)
	}
	if err := issueRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterating snapshot issues: %w", err)
	}

	return snap, nil
}

// boardHeader strips the nested column/issue lists before the board header
// is stored; they live in their own tables.
func boardHeader(b *model.Board) *model.Board {
	if b == nil {
		return nil
	}
	out := *b
	out.Columns = nil
	out.Issues = nil
	return &out
}

func isNilPtr(v any) bool {
	switch t := v.(type) {
	case *model.Organization:
		return t == nil
	case *model.Project:
		return t == nil
	case *model.Board:
		return t == nil
	}
	return v == nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}
