package history

import (
	"context"
	"fmt"
)

type migration struct {
	version string
	sql     string
}

// migrations are applied in order and never edited once released.
var migrations = []migration{
	{
		version: "0001_runs_operations",
		sql: `
CREATE TABLE runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    total INTEGER NOT NULL DEFAULT 0,
    succeeded INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    dry_run INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE operations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    source_path TEXT NOT NULL,
    destination_path TEXT,
    action TEXT NOT NULL,
    media_type TEXT NOT NULL,
    status TEXT NOT NULL,
    state TEXT,
    error_kind TEXT,
    message TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX idx_operations_run ON operations(run_id);
CREATE INDEX idx_operations_status ON operations(status);`,
	},
	{
		version: "0002_operation_extras",
		sql: `
ALTER TABLE operations ADD COLUMN checksum TEXT;
ALTER TABLE operations ADD COLUMN dry_run INTEGER NOT NULL DEFAULT 0;`,
	},
}

func (s *Store) applyMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		var count int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", migration.version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, migration.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", migration.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", migration.version); err != nil {
			return fmt.Errorf("record migration %s: %w", migration.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
