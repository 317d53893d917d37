package catalog

import (
	"database/sql"

	"github.com/pkg/errors"
)

// SchemaVersion is the latest schema version supported by the migrator.
const SchemaVersion = 1

// Migrate ensures the SQLite schema exists and is upgraded to SchemaVersion.
func Migrate(db *sql.DB) error {
	if db == nil {
		return errors.New("migrate: db is nil")
	}

	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return errors.Wrap(err, "migrate: create schema_migrations")
	}

	var current int
	err = db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current)
	if err != nil {
		return errors.Wrap(err, "migrate: read current version")
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "migrate: begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS automata (
			name TEXT PRIMARY KEY,
			regex TEXT NOT NULL DEFAULT '',
			description BLOB NOT NULL,
			states INTEGER NOT NULL,
			variables INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return errors.Wrap(err, "migrate: create automata table")
	}

	_, err = tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion)
	if err != nil {
		return errors.Wrap(err, "migrate: record schema version")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "migrate: commit transaction")
	}
	return nil
}
