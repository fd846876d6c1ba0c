package runs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"veritext/internal/config"
	"veritext/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on incompatible schema changes; the registry is a
// local cache of run history, so a mismatched database is simply recreated
// by the operator.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists training-run records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run registry under the data
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
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

	store := &Store{db: db, path: dbPath}
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

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

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
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
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

// Create registers a new pending run and returns its record.
func (s *Store) Create(ctx context.Context, corpusPath, mode string, seed int64) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:         uuid.NewString(),
		CorpusPath: corpusPath,
		Mode:       mode,
		Seed:       seed,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_runs (id, corpus_path, mode, seed, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CorpusPath, run.Mode, run.Seed, string(run.Status),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// SetStatus advances a run to the given stage. Terminal runs cannot move.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if run.Status.Terminal() {
		return services.Wrap(services.ErrValidation, "runs", "set-status",
			fmt.Sprintf("run %s is already %s", id, run.Status), nil)
	}
	return s.update(ctx, id,
		"UPDATE training_runs SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(time.RFC3339Nano), id)
}

// Complete marks a run finished and stores its metrics report.
func (s *Store) Complete(ctx context.Context, id, metricsJSON string) error {
	return s.update(ctx, id,
		"UPDATE training_runs SET status = ?, metrics_json = ?, updated_at = ? WHERE id = ?",
		string(StatusCompleted), metricsJSON, time.Now().UTC().Format(time.RFC3339Nano), id)
}

// Fail marks a run failed with a human-readable reason.
func (s *Store) Fail(ctx context.Context, id, detail string) error {
	return s.update(ctx, id,
		"UPDATE training_runs SET status = ?, error_detail = ?, updated_at = ? WHERE id = ?",
		string(StatusFailed), detail, time.Now().UTC().Format(time.RFC3339Nano), id)
}

func (s *Store) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "runs", "update", "run "+id+" not found", nil)
	}
	return nil
}

// Get fetches one run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, corpus_path, mode, seed, status, error_detail, metrics_json, created_at, updated_at
         FROM training_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "runs", "get", "run "+id+" not found", nil)
	}
	return run, err
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, corpus_path, mode, seed, status, error_detail, metrics_json, created_at, updated_at
         FROM training_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var status, created, updated string
	if err := row.Scan(&run.ID, &run.CorpusPath, &run.Mode, &run.Seed, &status,
		&run.ErrorDetail, &run.MetricsJSON, &created, &updated); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	var err error
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if run.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &run, nil
}
