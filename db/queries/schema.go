package queries

import (
	"context"
	"fmt"
	"strings"

	"go.hackfix.me/limigrate/db/types"
)

// Tables returns the names of all tables in the database, excluding the ones
// SQLite manages internally.
func Tables(ctx context.Context, d types.Querier) (map[string]struct{}, error) {
	rows, err := d.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, fmt.Errorf("failed listing tables: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, types.ScanError{ModelName: "table", Err: err}
		}

		if !strings.HasPrefix(name, "sqlite_") {
			tables[name] = struct{}{}
		}
	}

	return tables, rows.Err()
}

// TableExists returns true if a table with the given name exists.
func TableExists(ctx context.Context, d types.Querier, name string) (bool, error) {
	var count int
	err := d.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed checking table '%s': %w", name, err)
	}

	return count > 0, nil
}
