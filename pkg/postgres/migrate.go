package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// SourceURL turns a migrations directory into a migrate source URL. Values
// that already carry a scheme are returned unchanged.
func SourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	return "file://" + dir
}

// RunMigrations applies all pending migrations found in migrationsDir and
// returns the resulting schema version. No pending migrations is not an error.
func RunMigrations(dsn string, migrationsDir string) (uint, error) {
	m, err := migrate.New(SourceURL(migrationsDir), dsn)
	if err != nil {
		return 0, fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("postgres: run migrations up: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("postgres: read schema version: %w", err)
	}
	return version, nil
}
