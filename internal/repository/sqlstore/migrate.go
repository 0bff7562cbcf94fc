package sqlstore

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"autoprice/internal/config"
)

//go:embed migrations
var migrationFS embed.FS

// Migrations returns the embedded migration files for a driver.
func Migrations(driver string) (fs.FS, error) {
	if _, err := driverName(driver); err != nil {
		return nil, err
	}
	return fs.Sub(migrationFS, "migrations/"+driver)
}

// NewMigrator builds a migrate instance over the embedded migrations. It opens
// its own connection; callers must Close it.
func NewMigrator(cfg *config.DBConfig) (*migrate.Migrate, error) {
	files, err := Migrations(cfg.Driver)
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("opening migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration.
func Migrate(cfg *config.DBConfig) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
