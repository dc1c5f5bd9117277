package database

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations opens the database file itself and applies every
// pending up migration from migrationsPath.
func RunMigrations(dbPath, migrationsPath string) error {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", dbPath)

	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		dsn,
	)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

// RunMigrationsWithDB migrates through an already-open *sql.DB. Test
// harnesses use this so the connection they migrate is the one they
// query.
func RunMigrationsWithDB(db *sql.DB, migrationsPath string) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite3",
		driver,
	)
	if err != nil {
		return err
	}
	// No deferred m.Close() here: the sqlite3 driver's Close also closes
	// the caller-owned *sql.DB, which this function must leave open.

	err = m.Up()
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}
