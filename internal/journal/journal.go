// Package journal provides a SQLite-backed record of command executions.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrInvalidEntry indicates an entry without a command or status.
	ErrInvalidEntry = errors.New("invalid journal entry")
	// ErrInvalidLimit indicates a non-positive limit or keep count.
	ErrInvalidLimit = errors.New("invalid limit")
)

// Status is the outcome recorded for one execution.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

const timeLayout = time.RFC3339Nano

const schemaSQL = `
CREATE TABLE IF NOT EXISTS executions (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	command     TEXT NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	inputs      TEXT NOT NULL DEFAULT '{}',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_run ON executions(run_id, seq);
`

// Entry is one recorded execution. Entries of the same wizard run share RunID.
type Entry struct {
	ID         string
	RunID      string
	Seq        int
	Command    string
	Status     Status
	Message    string
	Error      string
	Inputs     map[string]string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Journal stores entries in SQLite. It is safe for concurrent use.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal: db path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	j := &Journal{db: db, now: time.Now}
	if err := j.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) init() error {
	if _, err := j.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("journal: set busy timeout: %w", err)
	}
	if _, err := j.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("journal: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// NewRunID returns a fresh identifier grouping the entries of one run.
func NewRunID() string {
	return uuid.NewString()
}

// Record stores e, assigning an ID and timestamps when missing.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if strings.TrimSpace(e.Command) == "" || e.Status == "" {
		return Entry{}, fmt.Errorf("journal: %w", ErrInvalidEntry)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RunID == "" {
		e.RunID = e.ID
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = j.now()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = e.FinishedAt
	}
	inputs, err := json.Marshal(e.Inputs)
	if err != nil {
		return Entry{}, fmt.Errorf("journal: encode inputs: %w", err)
	}
	if e.Inputs == nil {
		inputs = []byte("{}")
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO executions (id, run_id, seq, command, status, message, error, inputs, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RunID, e.Seq, e.Command, string(e.Status), e.Message, e.Error, string(inputs),
		e.StartedAt.UTC().Format(timeLayout), e.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return Entry{}, fmt.Errorf("journal: record %s: %w", e.Command, err)
	}
	return e, nil
}

const selectColumns = `SELECT id, run_id, seq, command, status, message, error, inputs, started_at, finished_at FROM executions`

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("journal: %w: %d", ErrInvalidLimit, limit)
	}
	rows, err := j.db.QueryContext(ctx, selectColumns+` ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query recent: %w", err)
	}
	return scanEntries(rows)
}

// Run returns the entries of one run in execution order.
func (j *Journal) Run(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, selectColumns+` WHERE run_id = ? ORDER BY seq, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal: query run: %w", err)
	}
	return scanEntries(rows)
}

// Prune keeps the newest keep entries and deletes the rest. It returns the
// number of deleted entries.
func (j *Journal) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("journal: %w: %d", ErrInvalidLimit, keep)
	}
	res, err := j.db.ExecContext(ctx, `
		DELETE FROM executions
		WHERE rowid NOT IN (SELECT rowid FROM executions ORDER BY rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("journal: prune rows affected: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			status, inputs      string
			startedAt, finished string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Seq, &e.Command, &status, &e.Message, &e.Error, &inputs, &startedAt, &finished); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		e.Status = Status(status)
		if err := json.Unmarshal([]byte(inputs), &e.Inputs); err != nil {
			return nil, fmt.Errorf("journal: decode inputs of %s: %w", e.ID, err)
		}
		var err error
		if e.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("journal: parse started_at of %s: %w", e.ID, err)
		}
		if e.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("journal: parse finished_at of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate entries: %w", err)
	}
	return entries, nil
}
