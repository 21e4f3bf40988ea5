// Package search maintains a DuckDB index over session transcripts and
// answers text queries against it. The index is derived data: it can be
// deleted and rebuilt from the storage root at any time, and losing it
// never affects checkpoint records or transcripts.
package search

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/session"
)

//go:embed schema/init.sql
var initSQL string

// Index wraps the DuckDB connection holding the transcript index.
type Index struct {
	db   *sql.DB
	path string
}

// Open initializes or opens the index database at the given path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if _, err := db.Exec(initSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize index schema: %w", err)
	}

	// Security hardening: queries carry user input, so keep DuckDB away
	// from the filesystem and network.
	if _, err := db.Exec("SET enable_external_access=false"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set security settings: %w", err)
	}

	return &Index{db: db, path: path}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the filesystem path to the index database file.
func (ix *Index) Path() string {
	return ix.path
}

// UpsertSession replaces a session's index rows with fresh entries in one
// transaction. line_num is 1-based and matches the transcript file.
func (ix *Index) UpsertSession(ctx context.Context, record checkpoint.SessionRecord, projectName string, entries []session.Entry) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM indexed_entries WHERE session_id = ?`, record.SessionID); err != nil {
		return fmt.Errorf("clear session entries: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO indexed_sessions (session_id, project_hash, project_name, started_at, entry_count, size_bytes, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			project_hash = EXCLUDED.project_hash,
			project_name = EXCLUDED.project_name,
			started_at = EXCLUDED.started_at,
			entry_count = EXCLUDED.entry_count,
			size_bytes = EXCLUDED.size_bytes,
			indexed_at = EXCLUDED.indexed_at
	`, record.SessionID, string(record.ProjectHash), projectName, record.StartedAt,
		len(entries), record.SizeBytes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert session row: %w", err)
	}

	for i, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO indexed_entries (session_id, line_num, role, "at", text)
			VALUES (?, ?, ?, ?, ?)
		`, record.SessionID, i+1, string(e.Role), e.At, e.Text)
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes a session's rows from the index.
func (ix *Index) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM indexed_entries WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session entries: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM indexed_sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session row: %w", err)
	}

	return tx.Commit()
}

// IndexedSize returns the transcript size recorded at index time, or -1 if
// the session is not in the index. Reindexing uses it to skip sessions
// whose transcript has not grown.
func (ix *Index) IndexedSize(ctx context.Context, sessionID string) (int64, error) {
	var size int64
	err := ix.db.QueryRowContext(ctx,
		`SELECT size_bytes FROM indexed_sessions WHERE session_id = ?`, sessionID).Scan(&size)
	if err == sql.ErrNoRows {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("query indexed size: %w", err)
	}
	return size, nil
}

// SessionsForProject returns the ids of all indexed sessions of a project.
func (ix *Index) SessionsForProject(ctx context.Context, hash checkpoint.ProjectHash) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT session_id FROM indexed_sessions WHERE project_hash = ?`, string(hash))
	if err != nil {
		return nil, fmt.Errorf("query project sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Stats describes the current contents of the index.
type Stats struct {
	Sessions  int64  `json:"sessions"`
	Entries   int64  `json:"entries"`
	SizeBytes int64  `json:"size_bytes"`
	Path      string `json:"path"`
}

// Stats returns aggregate counts and the database file size.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: ix.path}

	row := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM indexed_sessions")
	if err := row.Scan(&stats.Sessions); err != nil {
		return Stats{}, fmt.Errorf("count sessions: %w", err)
	}

	row = ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM indexed_entries")
	if err := row.Scan(&stats.Entries); err != nil {
		return Stats{}, fmt.Errorf("count entries: %w", err)
	}

	if info, err := os.Stat(ix.path); err == nil {
		stats.SizeBytes = info.Size()
	}

	return stats, nil
}
