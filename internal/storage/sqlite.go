package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS violations (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	session   TEXT    NOT NULL,
	step      INTEGER NOT NULL,
	invariant TEXT    NOT NULL,
	kind      TEXT    NOT NULL,
	message   TEXT    NOT NULL,
	snapshot  BLOB,
	at        INTEGER NOT NULL
)`

// SQLiteStore persists records in a SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create violations table: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Record inserts a violation.
func (s *SQLiteStore) Record(ctx context.Context, rec Record) (int64, error) {
	if rec.Invariant == "" {
		return 0, fmt.Errorf("record requires an invariant name")
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	res, err := s.conn.ExecContext(ctx,
		"INSERT INTO violations (session, step, invariant, kind, message, snapshot, at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.Session, int64(rec.Step), rec.Invariant, rec.Kind, rec.Message, rec.Snapshot, rec.At.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert violation: %w", err)
	}
	return res.LastInsertId()
}

// List returns the records of a session ordered by step then ID.
func (s *SQLiteStore) List(ctx context.Context, session string) ([]Record, error) {
	query := "SELECT id, session, step, invariant, kind, message, snapshot, at FROM violations"
	var args []any
	if session != "" {
		query += " WHERE session = ?"
		args = append(args, session)
	}
	query += " ORDER BY step, id"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec  Record
			step int64
			at   int64
		)
		if err := rows.Scan(&rec.ID, &rec.Session, &step, &rec.Invariant, &rec.Kind, &rec.Message, &rec.Snapshot, &at); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		rec.Step = uint64(step)
		rec.At = time.Unix(0, at)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate violations: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
