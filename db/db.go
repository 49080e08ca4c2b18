package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/limigrate/db/types"
)

// DB wraps sql.DB with the path it was opened from.
type DB struct {
	*sql.DB
	path string
}

var _ types.TxBeginner = (*DB)(nil)

// Open creates and configures a new SQLite database connection. The database
// file is created if it doesn't exist.
func Open(ctx context.Context, path string) (*DB, error) {
	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	// Migrations are run serially, and a single connection avoids SQLITE_BUSY
	// errors between the bookkeeping queries and a unit's transaction.
	sqliteDB.SetMaxOpenConns(1)
	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		// See https://github.com/mattn/go-sqlite3#faq
		sqliteDB.SetMaxIdleConns(10)
		sqliteDB.SetConnMaxLifetime(time.Duration(math.Inf(1)))
	}

	d := &DB{DB: sqliteDB, path: path}

	// Enable foreign key enforcement
	_, err = d.ExecContext(ctx, `PRAGMA foreign_keys = ON;`)
	if err != nil {
		_ = sqliteDB.Close()
		return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
	}

	return d, nil
}

// Path returns the data source name the database was opened with.
func (d *DB) Path() string {
	return d.path
}
