package config

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/cockroachdb"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL and CockroachDB driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rongwang/stonks/internal/migrations"
	"github.com/rongwang/stonks/internal/repository"
)

// SetupDatabase opens the configured database and applies pool settings.
// Migrations are not run here; see RunMigrations.
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	dialect := cfg.Database.Dialect()

	if dialect == repository.DialectSQLite {
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "can not create database directory %s", dir)
			}
		}
	}

	db, err := sqlx.Connect(dialect.DriverName(), cfg.Database.GetDSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Set connection pool settings
	if dialect == repository.DialectSQLite {
		// one writer at a time; the busy timeout covers the rest
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(5)
	}

	return db, nil
}

// RunMigrations brings the schema up to date. It uses its own connection,
// closed on return, because the migrate instance closes the database it
// was given.
func RunMigrations(cfg *Config) error {
	dialect := cfg.Database.Dialect()

	db, err := sql.Open(dialect.DriverName(), cfg.Database.GetDSN())
	if err != nil {
		return errors.Wrap(err, "can not open database")
	}
	defer db.Close()

	var driver database.Driver
	switch dialect {
	case repository.DialectSQLite:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case repository.DialectCockroach:
		driver, err = cockroachdb.WithInstance(db, &cockroachdb.Config{})
	default:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		return errors.Wrap(err, "failed to set up migrate driver")
	}

	files, dir, err := migrations.Source(string(dialect))
	if err != nil {
		return err
	}
	sourceDriver, err := iofs.New(files, dir)
	if err != nil {
		return errors.Wrap(err, "failed to create iofs source driver")
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(dialect), driver)
	if err != nil {
		return errors.Wrap(err, "failed to set up migrate instance")
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to run migration(up)")
	}
	return nil
}
