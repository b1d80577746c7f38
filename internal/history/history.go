// Package history records tubeprep jobs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is fixed width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Status of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is one recorded command run.
type Job struct {
	ID         string
	Kind       string
	Input      string
	Output     string
	Status     Status
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the elapsed run time, zero while running.
func (j Job) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// Recorder tracks job lifecycles.
type Recorder interface {
	Start(ctx context.Context, kind, input string) (string, error)
	Finish(ctx context.Context, id, output string, jobErr error) error
	List(ctx context.Context, limit int) ([]Job, error)
	Close() error
}

const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Store is a Recorder backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	// Pragmas in the DSN apply to every pooled connection, which parallel
	// batch jobs need for busy_timeout.
	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Start inserts a running job and returns its ID.
func (s *Store) Start(ctx context.Context, kind, input string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, kind, input, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, kind, input, StatusRunning, s.timestamp(),
	)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// Finish marks a job succeeded, or failed when jobErr is non-nil.
func (s *Store) Finish(ctx context.Context, id, output string, jobErr error) error {
	status, detail := StatusSucceeded, ""
	if jobErr != nil {
		status, detail = StatusFailed, jobErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET output = ?, status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		output, status, detail, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}

// List returns the most recent jobs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, input, output, status, detail, started_at, finished_at
         FROM jobs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []Job
	for rows.Next() {
		var (
			job         Job
			status      string
			startedRaw  string
			finishedRaw sql.NullString
		)
		if err := rows.Scan(&job.ID, &job.Kind, &job.Input, &job.Output, &status, &job.Detail, &startedRaw, &finishedRaw); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.Status = Status(status)
		job.StartedAt = parseTime(startedRaw)
		if finishedRaw.Valid {
			job.FinishedAt = parseTime(finishedRaw.String)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Nop is the recorder used when history is disabled.
type Nop struct{}

func (Nop) Start(context.Context, string, string) (string, error) { return "", nil }
func (Nop) Finish(context.Context, string, string, error) error   { return nil }
func (Nop) List(context.Context, int) ([]Job, error)              { return nil, nil }
func (Nop) Close() error                                          { return nil }

// OpenRecorder returns a Store when enabled, otherwise Nop.
func OpenRecorder(enabled bool, path string) (Recorder, error) {
	if !enabled || path == "" {
		return Nop{}, nil
	}
	return Open(path)
}
