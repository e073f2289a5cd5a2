package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math"

	"github.com/pressly/goose/v3"
)

// migrationSource returns the embedded migration set and goose dialect for
// a store dialect.
func migrationSource(dialect string) (embed.FS, string, string, error) {
	switch dialect {
	case dialectSQLite:
		return migrations, "sqlite3", "migrations", nil
	case dialectPostgres:
		return pgMigrations, "postgres", "pgmigrations", nil
	default:
		return embed.FS{}, "", "", fmt.Errorf("unknown storage driver: %s", dialect)
	}
}

func runMigrations(db *sql.DB, dialect string) error {
	fsys, gooseDialect, dir, err := migrationSource(dialect)
	if err != nil {
		return err
	}
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// MigrationStatus reports the applied schema version of db and the versions
// of embedded migrations not yet applied. driver is "sqlite" or "postgres".
// The database is not modified beyond goose creating its version table.
func MigrationStatus(db *sql.DB, driver string) (current int64, pending []int64, err error) {
	fsys, gooseDialect, dir, err := migrationSource(driver)
	if err != nil {
		return 0, nil, err
	}
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return 0, nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	current, err = goose.GetDBVersion(db)
	if err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return 0, nil, fmt.Errorf("reading schema version: %w", err)
	}

	all, err := goose.CollectMigrations(dir, current, math.MaxInt64)
	if err != nil && !errors.Is(err, goose.ErrNoMigrationFiles) {
		return current, nil, fmt.Errorf("collecting migrations: %w", err)
	}
	for _, m := range all {
		if m.Version > current {
			pending = append(pending, m.Version)
		}
	}
	return current, pending, nil
}
