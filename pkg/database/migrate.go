package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

// RunMigrations applies the migrations found in fsys under the directory
// named after the driver of db.
//
// Postgres migrations run over their own connection opened from dsn. SQLite
// migrations run over db itself so that they reach the same in-memory database.
func RunMigrations(db *sqlx.DB, dsn string, fsys fs.FS) error {
	const op = "database.RunMigrations"

	src, err := iofs.New(fsys, db.DriverName())
	if err != nil {
		return fmt.Errorf("%s: failed to open migrations source: %w", op, err)
	}

	var m *migrate.Migrate

	switch db.DriverName() {
	case DriverSQLite:
		drv, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("%s: failed to initialize sqlite driver: %w", op, err)
		}

		m, err = migrate.NewWithInstance("iofs", src, DriverSQLite, drv)
		if err != nil {
			return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
		}
		// m is not closed: closing it would close db.
	case DriverPostgres:
		m, err = migrate.NewWithSourceInstance("iofs", src, dsn)
		if err != nil {
			return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
		}
		defer m.Close()
	default:
		return fmt.Errorf("%s: unsupported driver %q", op, db.DriverName())
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}
