package storage

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// DefaultMigrationsURL is relative to the repository root.
const DefaultMigrationsURL = "file://migrations"

// Migrate applies every pending up migration from sourceURL and reports the
// schema version before and after.
func Migrate(db *sql.DB, sourceURL string, log *logrus.Logger) (uint, uint, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, 0, err
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return 0, 0, err
	}

	pre, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		pre = 0
	} else if err != nil {
		return 0, 0, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return pre, 0, err
	}

	post, _, err := m.Version()
	if err != nil {
		return pre, 0, err
	}

	log.WithFields(logrus.Fields{
		"preMigrationVersion":  pre,
		"postMigrationVersion": post,
	}).Info("Migration status")
	return pre, post, nil
}
