package db

import (
	"database/sql"
	"fleet-simulation-service/internal/adapters/repositories"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects to Postgres through the pgx stdlib driver.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSQLite opens a file-backed or ":memory:" SQLite database.
// SQLite allows one writer, so the pool is capped at a single connection;
// this also keeps every statement on the same in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", path, err)
	}

	return db, nil
}

// OpenDialect opens the database for driver ("sqlite" or "postgres") and
// returns the SQL dialect its repositories must use.
func OpenDialect(driver, dsn string) (*sql.DB, repositories.Dialect, error) {
	switch driver {
	case "sqlite":
		db, err := OpenSQLite(dsn)
		return db, repositories.SQLite, err
	case "postgres":
		db, err := Open(dsn)
		return db, repositories.Postgres, err
	default:
		return nil, 0, fmt.Errorf("openDB: unsupported driver %q", driver)
	}
}
