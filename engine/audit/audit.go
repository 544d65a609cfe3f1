// Package audit implements a durable, queryable append-only log of
// committed StateChanges, backed by SQLite (SPEC_FULL.md §1.1: "addressing
// spec.md §3's 'Used for tests, undo, and auditing' with a queryable
// append-only store instead of only the in-memory ChangeHistory").
// Plain `database/sql` with the `modernc.org/sqlite` pure-Go driver, a
// foreign-keys pragma check on open, and a sentinel `Error string` type
// rather than package-level `errors.New` values.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/loomwright/grue/types"
)

// Error is a sentinel error type: a defined string type over
// package-level errors.New values.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrForeignKeysDisabled = Error("audit: foreign keys disabled")
	ErrPragmaReturnedNil   = Error("audit: pragma returned nil")
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS changes (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id    TEXT NOT NULL,
	turn      INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	kind      INTEGER NOT NULL,
	data      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS changes_run_id_idx ON changes (run_id);
`

// Log is an open handle to the audit database. The zero value is not
// usable; construct with Open.
type Log struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite file at path and ensures
// its schema exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if rslt, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, ErrForeignKeysDisabled
	} else if rslt == nil {
		_ = db.Close()
		return nil, ErrPragmaReturnedNil
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Close closes the underlying database handle.
func (l *Log) Close() error { return l.db.Close() }

// Append records a single committed StateChange for runID at turn,
// tagged with a logical timestamp (the same one store.ChangeHistoryEntry
// carries).
func (l *Log) Append(runID string, turn int, timestamp int64, change types.StateChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("audit: marshal change: %w", err)
	}
	_, err = l.db.Exec(
		`INSERT INTO changes (run_id, turn, timestamp, kind, data) VALUES (?, ?, ?, ?, ?)`,
		runID, turn, timestamp, int(change.Kind), string(data),
	)
	return err
}

// AppendBatch records every change in a single turn's commit, in order.
func (l *Log) AppendBatch(runID string, turn int, timestamp int64, changes []types.StateChange) error {
	for _, c := range changes {
		if err := l.Append(runID, turn, timestamp, c); err != nil {
			return err
		}
	}
	return nil
}

// Entry is one row of the audit log.
type Entry struct {
	ID        int64
	RunID     string
	Turn      int
	Timestamp int64
	Change    types.StateChange
}

// ForRun returns every entry recorded for runID, in commit order.
func (l *Log) ForRun(runID string) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT id, run_id, turn, timestamp, data FROM changes WHERE run_id = ? ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// All returns every entry ever recorded, across every run, in commit
// order. Intended for small local playtesting databases, not production
// scale.
func (l *Log) All() ([]Entry, error) {
	rows, err := l.db.Query(`SELECT id, run_id, turn, timestamp, data FROM changes ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var data string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Turn, &e.Timestamp, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &e.Change); err != nil {
			return nil, fmt.Errorf("audit: unmarshal change %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
