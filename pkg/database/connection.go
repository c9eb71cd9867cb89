package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// ErrUnsupportedDriver is returned for drivers other than the ones above
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ConnectDB opens the database that holds the key-value table
func ConnectDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		path, err := expandHome(dsn)
		if err != nil {
			return nil, err
		}

		// Create the directory structure if it doesn't exist
		dbDir := filepath.Dir(path)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dsn = path
	case DriverPostgres, DriverMySQL:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single writer keeps sqlite from reporting SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// EnsureSchema creates the key-value table if it doesn't exist
func EnsureSchema(db *sqlx.DB) error {
	var ddl string
	switch db.DriverName() {
	case DriverMySQL:
		ddl = `
		CREATE TABLE IF NOT EXISTS kv (
			k VARCHAR(191) NOT NULL PRIMARY KEY,
			v LONGTEXT NOT NULL,
			updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	default:
		ddl = `
		CREATE TABLE IF NOT EXISTS kv (
			k TEXT NOT NULL PRIMARY KEY,
			v TEXT NOT NULL,
			updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// expandHome replaces a leading tilde with the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return homeDir + path[1:], nil
}
