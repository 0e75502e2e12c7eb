package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on schema changes; the ledger is disposable, so a
// mismatch asks the user to delete the database rather than migrating.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible version.
var ErrSchemaMismatch = errors.New("ledger schema version mismatch")

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// RunInfo is the configuration snapshot stored with each run.
type RunInfo struct {
	SourceRoot      string
	DestinationRoot string
	Fold            int
	SamplesPerFile  int
	Seed            int64
	Workers         int
	Resume          bool
	ResumedCases    int
}

// RunSummary aggregates one run for report output.
type RunSummary struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Status         string
	SamplesPerFile int
	Resume         bool
	ResumedCases   int
	Cases          int
	Written        int
	Rejected       int
	Failed         int
}

// CaseResult is one per-case outcome row.
type CaseResult struct {
	CaseID   string
	Written  int
	Rejected int
	Duration time.Duration
	Error    string
}

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts a new run row and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, status, source_root, destination_root,
            fold, samples_per_file, seed, workers, resume, resumed_cases
        ) VALUES (?, ?, 'running', ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, now, info.SourceRoot, info.DestinationRoot,
		info.Fold, info.SamplesPerFile, info.Seed, info.Workers,
		boolToInt(info.Resume), info.ResumedCases,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordCase stores one case outcome for the run.
func (s *Store) RecordCase(ctx context.Context, runID, caseID string, written, rejected int, duration time.Duration, errMsg string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO case_results (
            run_id, case_id, written, rejected, duration_ms, error, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, caseID, written, rejected, duration.Milliseconds(),
		nullableString(errMsg), now,
	)
	if err != nil {
		return fmt.Errorf("record case %s: %w", caseID, err)
	}
	return nil
}

// FinishRun marks the run finished with the given terminal status.
func (s *Store) FinishRun(ctx context.Context, runID, status string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status = ? WHERE id = ?",
		now, status, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with aggregate counts.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, COALESCE(r.finished_at, ''), r.status,
                r.samples_per_file, r.resume, r.resumed_cases,
                COUNT(c.case_id),
                COALESCE(SUM(c.written), 0),
                COALESCE(SUM(c.rejected), 0),
                COALESCE(SUM(CASE WHEN c.error IS NOT NULL THEN 1 ELSE 0 END), 0)
         FROM runs r
         LEFT JOIN case_results c ON c.run_id = r.id
         GROUP BY r.id
         ORDER BY r.started_at DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			summary           RunSummary
			started, finished string
			resume            int
		)
		if err := rows.Scan(
			&summary.ID, &started, &finished, &summary.Status,
			&summary.SamplesPerFile, &resume, &summary.ResumedCases,
			&summary.Cases, &summary.Written, &summary.Rejected, &summary.Failed,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.Resume = resume != 0
		summary.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			summary.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// FailedCases returns the case outcomes of a run that recorded an error.
func (s *Store) FailedCases(ctx context.Context, runID string) ([]CaseResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, written, rejected, duration_ms, COALESCE(error, '')
         FROM case_results
         WHERE run_id = ? AND error IS NOT NULL
         ORDER BY case_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed cases: %w", err)
	}
	defer rows.Close()

	var results []CaseResult
	for rows.Next() {
		var (
			result CaseResult
			ms     int64
		)
		if err := rows.Scan(&result.CaseID, &result.Written, &result.Rejected, &ms, &result.Error); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		result.Duration = time.Duration(ms) * time.Millisecond
		results = append(results, result)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
