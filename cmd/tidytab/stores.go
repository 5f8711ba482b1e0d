package main

import (
	"context"
	"fmt"
	"log"

	"tidytab/adapters/postgres"
	"tidytab/internal/config"
	"tidytab/internal/migration"
	"tidytab/internal/session"
	"tidytab/ports"

	"github.com/jmoiron/sqlx"
)

// openStore builds the configured session store, capped at the configured
// session size. The returned close func releases any database connection.
func openStore(ctx context.Context, cfg *config.Config) (ports.SessionStore, func() error, error) {
	var store ports.SessionStore
	closer := func() error { return nil }

	switch cfg.Session.Backend {
	case config.BackendMemory:
		store = session.NewMemoryStore()

	case config.BackendFile:
		lbs, err := session.NewLocalBlobStore(cfg.Session.Dir)
		if err != nil {
			return nil, nil, err
		}
		store = lbs

	case config.BackendPostgres, config.BackendSQLite:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		store = postgres.NewSessionRepository(db)
		closer = db.Close

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	limited := session.NewLimitedStore(store, cfg.Limits.MaxSessionBytes)
	log.Printf("[Store] Using %s session backend (max %d bytes per record)", cfg.Session.Backend, limited.MaxSize())
	return limited, closer, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.Session.Backend {
	case config.BackendPostgres:
		return postgres.Connect(ctx, "postgres", cfg.Session.DatabaseURL)
	case config.BackendSQLite:
		return postgres.Connect(ctx, "sqlite", cfg.Session.SQLitePath)
	}
	return nil, fmt.Errorf("session backend %q has no database", cfg.Session.Backend)
}
