package db

import (
	"database/sql"
	"fmt"
	"log"

	"profile-service/config"

	_ "github.com/lib/pq" // Postgres driver
)

var (
	DB     *sql.DB
	openDB = sql.Open
)

// schema is applied on every connect; all statements are idempotent. Handle
// uniqueness only holds among non-deleted rows, so the index is partial.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	handle TEXT NOT NULL,
	bio TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	blog TEXT NOT NULL DEFAULT '',
	public_repos INTEGER NOT NULL DEFAULT 0,
	public_gists INTEGER NOT NULL DEFAULT 0,
	follower_count INTEGER NOT NULL DEFAULT 0,
	following_count INTEGER NOT NULL DEFAULT 0,
	avatar_url TEXT NOT NULL DEFAULT '',
	followers_url TEXT NOT NULL DEFAULT '',
	following_url TEXT NOT NULL DEFAULT '',
	repos_url TEXT NOT NULL DEFAULT '',
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS profiles_handle_active_idx
	ON profiles (handle) WHERE NOT is_deleted;
CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func Connect(cfg config.DatabaseConfig) error {
	if cfg.Engine != "postgres" {
		return fmt.Errorf("unsupported database engine: %s", cfg.Engine)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLMode)

	var err error
	DB, err = openDB("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}

	if _, err = DB.Exec(schema); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}

	log.Println("Successfully connected to the Postgres database")
	return nil
}
