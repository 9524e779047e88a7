// Package database stores the alert journal in PostgreSQL (pgx) or SQLite.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"EXAM_PROCTOR/go-backend/internal/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type DB struct {
	*sql.DB
	driver string
}

// Open connects to the journal database and applies pending migrations.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows one writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := migrate(ctx, sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logging.Info("alert journal ready", "driver", driver)
	return &DB{DB: sqlDB, driver: driver}, nil
}

func dialectFor(driver string) (goose.Dialect, error) {
	switch driver {
	case DriverPostgres:
		return goose.DialectPostgres, nil
	case DriverSQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logging.Debug("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	err := db.DB.Close()
	logging.Info("alert journal closed")
	return err
}
