package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteConnection opens the embedded database file. WAL and a busy
// timeout keep concurrent request handlers from tripping over SQLITE_BUSY.
func NewSQLiteConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping sqlite database: %w", err)
	}

	return db, nil
}

// InitSQLiteSchema provisions the fixed embedded schema. Every statement is
// idempotent, so this runs on every boot.
func InitSQLiteSchema(db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS boxid_log(
			BoxID TEXT PRIMARY KEY,
			ItemCode TEXT,
			Qty INTEGER,
			Status TEXT DEFAULT 'OK',
			Location TEXT,
			CreatedAt TEXT,
			UpdatedAt TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS box_move_log(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			BoxID TEXT NOT NULL,
			FromLoc TEXT,
			ToLoc TEXT NOT NULL,
			MovedAt TEXT NOT NULL,
			Operator TEXT,
			Reason TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_box_move_log_boxid ON box_move_log(BoxID);`,
		`CREATE TABLE IF NOT EXISTS box_moves(
			Id INTEGER PRIMARY KEY AUTOINCREMENT,
			BoxID TEXT NOT NULL,
			Location TEXT NOT NULL,
			Operator TEXT,
			Warehouse TEXT,
			CreatedAt TEXT DEFAULT (datetime('now','localtime'))
		);`,
	}

	for _, q := range ddl {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("failed to init sqlite schema: %w", err)
		}
	}

	return nil
}
