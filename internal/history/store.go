package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediasorter/internal/config"
)

// Store persists runs and operations.
type Store struct {
	db   *sql.DB
	path string
}

// OpenFromConfig opens the database named by the history section.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return Open(cfg.History.Path)
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

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
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun registers a run before any of its operations are recorded.
func (s *Store) BeginRun(ctx context.Context, runID string, dryRun bool) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, dry_run) VALUES (?, ?, ?)`,
		runID, formatTime(time.Now()), boolInt(dryRun),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the run with its final counts, derived from its records.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
            finished_at = ?,
            total = (SELECT COUNT(1) FROM operations WHERE run_id = runs.id),
            succeeded = (SELECT COUNT(1) FROM operations WHERE run_id = runs.id AND status = ?),
            skipped = (SELECT COUNT(1) FROM operations WHERE run_id = runs.id AND status = ?),
            failed = (SELECT COUNT(1) FROM operations WHERE run_id = runs.id AND status = ?)
         WHERE id = ?`,
		formatTime(time.Now()), StatusSuccess, StatusSkipped, StatusFailed, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Record appends one operation to its run.
func (s *Store) Record(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (
            run_id, source_path, destination_path, action, media_type, status,
            state, error_kind, message, checksum, dry_run, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.Source,
		nullableString(rec.Destination),
		rec.Action,
		rec.MediaType,
		string(rec.Status),
		nullableString(rec.State),
		nullableString(rec.ErrorKind),
		nullableString(rec.Message),
		nullableString(rec.Checksum),
		boolInt(rec.DryRun),
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const operationColumns = "id, run_id, source_path, destination_path, action, media_type, status, state, error_kind, message, checksum, dry_run, created_at"

// List returns operations newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	query := `SELECT ` + operationColumns + ` FROM operations`
	var (
		clauses []string
		args    []any
	)
	if opts.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, opts.RunID)
	}
	if opts.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(opts.Status))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return records, nil
}

// GetRun fetches one run; nil when unknown.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, total, succeeded, skipped, failed, dry_run FROM runs WHERE id = ?`, runID)
	var (
		run        Run
		startedRaw string
		finished   sql.NullString
		dryRun     int
	)
	err := row.Scan(&run.ID, &startedRaw, &finished, &run.Total, &run.Succeeded, &run.Skipped, &run.Failed, &dryRun)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.StartedAt = parseTime(startedRaw)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	run.DryRun = dryRun != 0
	return &run, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		rec         Record
		destination sql.NullString
		status      string
		state       sql.NullString
		errorKind   sql.NullString
		message     sql.NullString
		checksum    sql.NullString
		dryRun      int
		createdRaw  string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Source,
		&destination,
		&rec.Action,
		&rec.MediaType,
		&status,
		&state,
		&errorKind,
		&message,
		&checksum,
		&dryRun,
		&createdRaw,
	); err != nil {
		return Record{}, fmt.Errorf("scan operation: %w", err)
	}
	rec.Destination = destination.String
	rec.Status = Status(status)
	rec.State = state.String
	rec.ErrorKind = errorKind.String
	rec.Message = message.String
	rec.Checksum = checksum.String
	rec.DryRun = dryRun != 0
	rec.CreatedAt = parseTime(createdRaw)
	return rec, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
