package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/draft"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/pkg/infrastructure"
)

// drafts is the opened draft backend together with its lifecycle hooks.
type drafts struct {
	provider draft.Provider
	// watch blocks until ctx is done, reporting external slot changes.
	watch func(ctx context.Context, cb repository.SlotChanged) error
	close func()
}

func openDrafts(ctx context.Context, cfg DraftsConfig, logger *slog.Logger) (*drafts, error) {
	idle := func(ctx context.Context, _ repository.SlotChanged) error {
		<-ctx.Done()
		return nil
	}
	switch cfg.Backend {
	case DraftsFS:
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create drafts dir: %w", err)
		}
		fsd, err := repository.NewFSDrafts(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("init fs drafts: %w", err)
		}
		return &drafts{
			provider: fsd,
			watch: func(ctx context.Context, cb repository.SlotChanged) error {
				return repository.WatchFS(ctx, fsd.Root(), logger, cb)
			},
			close: func() {},
		}, nil

	case DraftsSQLite:
		db, err := repository.OpenSQLiteDrafts(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite drafts: %w", err)
		}
		return &drafts{provider: db, watch: idle, close: func() { _ = db.Close() }}, nil

	case DraftsPostgres:
		pool, err := infrastructure.NewDraftsPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect drafts db: %w", err)
		}
		if err := migration.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate drafts db: %w", err)
		}
		return &drafts{provider: repository.NewPGDrafts(pool, cfg.Timeout), watch: idle, close: pool.Close}, nil

	default:
		return &drafts{provider: draft.NewMemory(), watch: idle, close: func() {}}, nil
	}
}
