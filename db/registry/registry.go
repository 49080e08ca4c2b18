// Package registry implements the bookkeeping table that tracks which
// migration units are known, their status, and when they were first
// registered. The table lives in the same database as the schema it tracks.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.hackfix.me/limigrate/db/types"
)

// Status is the state of a migration unit.
type Status string

// Unit statuses. A unit is registered as pending, becomes applied once its
// apply step commits, and goes back to pending when reverted.
const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
)

// DefaultTable is the name of the bookkeeping table if none is specified.
const DefaultTable = "migrations"

// timeFormat has a fixed width so that stored timestamps sort lexically in
// chronological order.
const timeFormat = "2006-01-02 15:04:05.000000000"

var tableNameRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Record is a single row of the bookkeeping table.
type Record struct {
	Name         string
	Status       Status
	RegisteredAt time.Time
}

// Store provides access to the bookkeeping table. All methods accept a
// types.Querier, so they can be run on the connection pool or inside a
// transaction.
type Store struct {
	table string
}

// New returns a Store backed by the given table.
func New(table string) (*Store, error) {
	if !tableNameRx.MatchString(table) {
		return nil, types.InvalidInputError{
			Msg: fmt.Sprintf("invalid registry table name '%s'", table),
		}
	}

	return &Store{table: table}, nil
}

// Table returns the name of the bookkeeping table.
func (s *Store) Table() string {
	return s.table
}

// Init creates the bookkeeping table if it doesn't exist.
func (s *Store) Init(ctx context.Context, q types.Querier) error {
	_, err := q.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (
		file       TEXT NOT NULL UNIQUE,
		status     TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`, s.table))
	if err != nil {
		return fmt.Errorf("failed creating table %s: %w", s.table, err)
	}

	return nil
}

// ListKnown returns the names of all registered units.
func (s *Store) ListKnown(ctx context.Context, q types.Querier) (map[string]struct{}, error) {
	names, err := s.names(ctx, q, fmt.Sprintf(`SELECT file FROM "%s"`, s.table))
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		known[name] = struct{}{}
	}

	return known, nil
}

// Register inserts a new record. It returns a *types.DuplicateError if a unit
// with the same name is already registered.
func (s *Store) Register(
	ctx context.Context, q types.Querier, name string, status Status, at time.Time,
) error {
	_, err := q.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO "%s" (file, status, created_at) VALUES (?, ?, ?)`, s.table),
		name, string(status), at.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed registering unit: %w",
			types.Err("unit", fmt.Sprintf("name '%s'", name), err))
	}

	return nil
}

// PendingOrdered returns the names of all pending units, oldest first. Units
// registered at the same instant are ordered by name.
func (s *Store) PendingOrdered(ctx context.Context, q types.Querier) ([]string, error) {
	return s.names(ctx, q, fmt.Sprintf(
		`SELECT file FROM "%s" WHERE status = ? ORDER BY created_at ASC, file ASC`, s.table),
		string(StatusPending))
}

// LatestApplied returns the name of the most recently registered unit that is
// applied. The returned value is invalid if no unit is applied.
func (s *Store) LatestApplied(ctx context.Context, q types.Querier) (sql.Null[string], error) {
	var name sql.Null[string]
	err := q.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT file FROM "%s" WHERE status = ?
		ORDER BY created_at DESC, file DESC LIMIT 1`, s.table),
		string(StatusApplied)).Scan(&name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return name, fmt.Errorf("failed querying latest applied unit: %w", err)
	}

	return name, nil
}

// SetStatus updates the status of a registered unit. It returns a
// types.NoResultError if the unit isn't registered.
func (s *Store) SetStatus(ctx context.Context, q types.Querier, name string, status Status) error {
	res, err := q.ExecContext(ctx,
		fmt.Sprintf(`UPDATE "%s" SET status = ? WHERE file = ?`, s.table),
		string(status), name)
	if err != nil {
		return fmt.Errorf("failed updating status of unit '%s': %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed updating status of unit '%s': %w", name, err)
	}
	if n == 0 {
		return types.NoResultError{ModelName: "unit", ID: fmt.Sprintf("name '%s'", name)}
	}

	return nil
}

// List returns all records in the order they would be applied.
func (s *Store) List(ctx context.Context, q types.Querier) ([]*Record, error) {
	// The cast stops the driver from converting the DATETIME column into a
	// time.Time with its own layout.
	rows, err := q.QueryContext(ctx, fmt.Sprintf(
		`SELECT file, status, CAST(created_at AS TEXT) FROM "%s"
		ORDER BY created_at ASC, file ASC`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed listing units: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		var (
			rec        Record
			status, ts string
		)
		if err = rows.Scan(&rec.Name, &status, &ts); err != nil {
			return nil, types.ScanError{ModelName: "unit", Err: err}
		}

		rec.Status = Status(status)
		rec.RegisteredAt, err = parseTime(ts)
		if err != nil {
			return nil, types.ScanError{ModelName: "unit", Err: err}
		}

		records = append(records, &rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed listing units: %w", err)
	}

	return records, nil
}

// Count returns the number of registered units.
func (s *Store) Count(ctx context.Context, q types.Querier) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM "%s"`, s.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed counting units: %w", err)
	}

	return count, nil
}

func (s *Store) names(
	ctx context.Context, q types.Querier, query string, args ...any,
) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed listing units: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, types.ScanError{ModelName: "unit", Err: err}
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed listing units: %w", err)
	}

	return names, nil
}

func parseTime(ts string) (time.Time, error) {
	t, err := time.ParseInLocation(timeFormat, ts, time.UTC)
	if err == nil {
		return t, nil
	}

	// Records written by other tools may use a coarser layout.
	t, err2 := time.ParseInLocation(time.DateTime, ts, time.UTC)
	if err2 != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp '%s': %w", ts, err)
	}

	return t, nil
}
