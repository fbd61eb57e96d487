package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/username/salesinsight/backend/src/logger"
	_ "modernc.org/sqlite"
)

const createTablesStatement = `
CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	original_filename TEXT NOT NULL,
	saved_as TEXT NOT NULL,
	columns TEXT NOT NULL DEFAULT '',
	row_count INTEGER NOT NULL DEFAULT 0,
	encoding TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_uploads_saved_as ON uploads(saved_as);
CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);
`

// InitDB opens the sqlite database at databasePath and applies migrations.
// ":memory:" is accepted for tests.
func InitDB(databasePath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	// sqlite allows one writer; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database at %s: %w", databasePath, err)
	}

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	if err := migrateUploadsTable(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(createTablesStatement); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")

	return db, nil
}

// migrateUploadsTable adds columns introduced after the first schema version.
func migrateUploadsTable(db *sqlx.DB) error {
	var tableName string
	err := db.Get(&tableName, "SELECT name FROM sqlite_master WHERE type='table' AND name='uploads'")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.L.Info("'uploads' table does not exist, no migration needed as table will be created.")
			return nil
		}
		return fmt.Errorf("checking for 'uploads' table: %w", err)
	}

	columns, err := tableColumns(db, "uploads")
	if err != nil {
		return err
	}

	migrations := []struct {
		column string
		ddl    string
	}{
		{"row_count", "ALTER TABLE uploads ADD COLUMN row_count INTEGER NOT NULL DEFAULT 0"},
		{"encoding", "ALTER TABLE uploads ADD COLUMN encoding TEXT"},
	}
	for _, m := range migrations {
		if columns[m.column] {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			return fmt.Errorf("adding '%s' column to 'uploads': %w", m.column, err)
		}
		logger.L.Info("Added column to 'uploads' table", "column", m.column)
	}
	return nil
}

func tableColumns(db *sqlx.DB, table string) (map[string]bool, error) {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, fmt.Errorf("querying table schema for '%s': %w", table, err)
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, notnull, pk int
		var name, dataType string
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scanning column info for '%s': %w", table, err)
		}
		columnExists[name] = true
	}
	return columnExists, rows.Err()
}
