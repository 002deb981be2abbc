// Package journal keeps a local audit trail of validation runs.
//
// Each run and every temporary changelist it creates are written to a
// SQLite database, so a changelist left behind by an aborted run can be
// found later with "p4gate history". Journal writes are best effort: the
// caller logs a failure and carries on.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/danieljhkim/p4gate/internal/clock"
)

// Changelist states recorded for temporary changelists.
const (
	StateCreated   = "created"
	StateReverted  = "reverted"
	StateDeleted   = "deleted"
	StateSubmitted = "submitted"
	StateRejected  = "rejected"
)

// Recorder is the write side used by the orchestrator.
type Recorder interface {
	// StartRun opens a run for change and returns its id.
	StartRun(ctx context.Context, change string) (string, error)

	// RecordChangelist upserts the state of a temporary changelist.
	RecordChangelist(ctx context.Context, runID, changeID, purpose, state string) error

	// FinishRun stores the outcome of a run.
	FinishRun(ctx context.Context, runID, outcome, detail string) error
}

// Run is one journaled validation.
type Run struct {
	ID          string       `json:"id"`
	Change      string       `json:"change"`
	Outcome     string       `json:"outcome"`
	Detail      string       `json:"detail,omitempty"`
	StartedAt   time.Time    `json:"startedAt"`
	FinishedAt  *time.Time   `json:"finishedAt,omitempty"`
	Changelists []Changelist `json:"changelists,omitempty"`
}

// Changelist is a temporary changelist created by a run.
type Changelist struct {
	RunID     string    `json:"runId"`
	ChangeID  string    `json:"change"`
	Purpose   string    `json:"purpose"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Open reports whether the changelist may still exist on the server.
func (c Changelist) Open() bool {
	return c.State != StateDeleted && c.State != StateSubmitted
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	change_id   TEXT NOT NULL,
	outcome     TEXT NOT NULL DEFAULT 'running',
	detail      TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT
);

CREATE TABLE IF NOT EXISTS temp_changelists (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	change_id  TEXT NOT NULL,
	purpose    TEXT NOT NULL,
	state      TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (run_id, change_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// SQLiteJournal is the Recorder backed by a SQLite database file.
type SQLiteJournal struct {
	db    *sql.DB
	clock clock.Clock
}

// Open opens (creating if needed) the journal database at path.
func Open(path string, clk clock.Clock) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// one writer; p4gate is single-threaded anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	if clk == nil {
		clk = &clock.RealClock{}
	}
	return &SQLiteJournal{db: db, clock: clk}, nil
}

// Close closes the database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) now() string {
	return j.clock.Now().UTC().Format(time.RFC3339)
}

// StartRun inserts a new run row.
func (j *SQLiteJournal) StartRun(ctx context.Context, change string) (string, error) {
	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO runs (id, change_id, started_at) VALUES (?, ?, ?)",
		id, change, j.now())
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// RecordChangelist inserts or updates a temporary changelist.
func (j *SQLiteJournal) RecordChangelist(ctx context.Context, runID, changeID, purpose, state string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO temp_changelists (run_id, change_id, purpose, state, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (run_id, change_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		runID, changeID, purpose, state, j.now())
	if err != nil {
		return fmt.Errorf("failed to record changelist %s: %w", changeID, err)
	}
	return nil
}

// FinishRun sets the outcome and finish time of a run.
func (j *SQLiteJournal) FinishRun(ctx context.Context, runID, outcome, detail string) error {
	res, err := j.db.ExecContext(ctx,
		"UPDATE runs SET outcome = ?, detail = ?, finished_at = ? WHERE id = ?",
		outcome, detail, j.now(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to finish run: %w: %s", sql.ErrNoRows, runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their changelists.
func (j *SQLiteJournal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, change_id, outcome, detail, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Change, &r.Outcome, &r.Detail, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished.Valid {
			t := parseTime(finished.String)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	// release the only connection before the per-run queries
	_ = rows.Close()

	for i := range runs {
		cls, err := j.changelists(ctx, "WHERE run_id = ?", runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Changelists = cls
	}
	return runs, nil
}

// OpenChangelists returns temporary changelists that were never deleted or
// submitted, oldest first.
func (j *SQLiteJournal) OpenChangelists(ctx context.Context) ([]Changelist, error) {
	return j.changelists(ctx, "WHERE state NOT IN (?, ?)", StateDeleted, StateSubmitted)
}

func (j *SQLiteJournal) changelists(ctx context.Context, where string, args ...any) ([]Changelist, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT run_id, change_id, purpose, state, updated_at FROM temp_changelists "+where+" ORDER BY updated_at, rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changelists: %w", err)
	}
	defer rows.Close()

	var cls []Changelist
	for rows.Next() {
		var (
			c       Changelist
			updated string
		)
		if err := rows.Scan(&c.RunID, &c.ChangeID, &c.Purpose, &c.State, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan changelist: %w", err)
		}
		c.UpdatedAt = parseTime(updated)
		cls = append(cls, c)
	}
	return cls, rows.Err()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Nop discards everything.
type Nop struct{}

func (Nop) StartRun(ctx context.Context, change string) (string, error) { return "", nil }
func (Nop) RecordChangelist(ctx context.Context, runID, changeID, purpose, state string) error {
	return nil
}
func (Nop) FinishRun(ctx context.Context, runID, outcome, detail string) error { return nil }

var (
	_ Recorder = (*SQLiteJournal)(nil)
	_ Recorder = Nop{}
)
