package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations() {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations returns the ordered migration list.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_resume_drafts", Up: createResumeDrafts},
		{Name: "add_resume_drafts_updated_at_index", Up: addDraftsUpdatedAtIndex},
	}
}

// createResumeDrafts creates the per-session slot table.
func createResumeDrafts(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS resume_drafts (
			namespace  TEXT NOT NULL,
			slot       TEXT NOT NULL,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (namespace, slot)
		);
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// addDraftsUpdatedAtIndex supports pruning stale drafts.
func addDraftsUpdatedAtIndex(ctx context.Context, pool *pgxpool.Pool) error {
	query := `CREATE INDEX IF NOT EXISTS idx_resume_drafts_updated_at ON resume_drafts (updated_at);`

	if _, err := pool.Exec(ctx, query); err != nil {
		// Log the error but don't fail - the index only speeds up pruning
		slog.Warn("Error adding updated_at index (may already exist)", "error", err)
		return nil
	}
	return nil
}
