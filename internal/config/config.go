package config

import (
	"os"
	"strings"
)

// Config is built once from the environment at startup and threaded through
// constructors; nothing reads ambient process state at call time.
type Config struct {
	DatabaseURL    string
	SQLitePath     string
	AppHost        string
	BoxesTable     string
	BoxesIDColumn  string
	BoxesLocColumn string
	MigrationsDir  string
}

func FromEnv() Config {
	return Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:     getEnv("SQLITE_PATH", "./boxtrack.db"),
		AppHost:        getEnv("APP_HOST", ":8000"),
		BoxesTable:     getEnv("BOXES_TABLE", "boxes"),
		BoxesIDColumn:  getEnv("BOXES_ID_COLUMN", "box_id"),
		BoxesLocColumn: getEnv("BOXES_LOC_COLUMN", "location"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "./migrations"),
	}
}

// UsePostgres reports whether the networked relational backend is selected.
// Anything that is not a postgres URL falls back to the embedded engine.
func (c Config) UsePostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
