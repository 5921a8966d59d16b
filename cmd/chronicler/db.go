package main

import (
	"context"
	"fmt"
	"strings"

	"chronicler/internal/config"
	"chronicler/internal/persist"
	"chronicler/internal/persist/postgres"
	"chronicler/internal/persist/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (persist.SnapshotStore, error) {
	dsn := cfg.Database.DSN
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database dsn: %s", dsn)
	}
}
