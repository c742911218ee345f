package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-enrollment-api/pkg/config"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Open connects to the configured driver and, when AutoSchema is set, ensures the tables exist.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = NewPostgres(ctx, cfg)
	case config.DriverSQLite:
		db, err = NewSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoSchema {
		if err := EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// EnsureSchema applies the embedded CREATE ... IF NOT EXISTS script for the connection's dialect.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	script, err := schemaFS.ReadFile(fmt.Sprintf("schema/%s.sql", db.DriverName()))
	if err != nil {
		return fmt.Errorf("read schema for %s: %w", db.DriverName(), err)
	}
	if _, err := db.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
