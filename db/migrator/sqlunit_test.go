package migrator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/limigrate/db/migrator"
	"go.hackfix.me/limigrate/db/queries"
)

func TestParseSQLUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		expUnit *migrator.SQLUnit
		expErr  string
	}{
		{
			name: "ok/up_and_down",
			data: createTestUnit,
			expUnit: &migrator.SQLUnit{
				Up:   "CREATE TABLE IF NOT EXISTS test (col1 TEXT, col2 TEXT);\nINSERT INTO test VALUES ('lol', 'stuff');",
				Down: "DROP TABLE IF EXISTS test;",
			},
		},
		{
			name: "ok/up_only",
			data: "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n",
			expUnit: &migrator.SQLUnit{
				Up: "CREATE TABLE a (id INTEGER);",
			},
		},
		{
			name: "ok/down_first",
			data: "-- +migrate Down\nDROP TABLE a;\n  -- +migrate Up  \nCREATE TABLE a (id INTEGER);",
			expUnit: &migrator.SQLUnit{
				Up:   "CREATE TABLE a (id INTEGER);",
				Down: "DROP TABLE a;",
			},
		},
		{
			// A marker line splits the unit even inside a string literal.
			name: "ok/marker_inside_literal",
			data: "-- +migrate Up\nINSERT INTO notes VALUES ('\n-- +migrate Down\n');",
			expUnit: &migrator.SQLUnit{
				Up:   "INSERT INTO notes VALUES ('",
				Down: "');",
			},
		},
		{
			name:   "err/empty",
			data:   "",
			expErr: "missing or empty Up section",
		},
		{
			name:   "err/empty_up",
			data:   "-- +migrate Up\n\n-- +migrate Down\nDROP TABLE a;",
			expErr: "missing or empty Up section",
		},
		{
			name:   "err/duplicate_up",
			data:   "-- +migrate Up\nSELECT 1;\n-- +migrate Up\nSELECT 2;",
			expErr: "duplicate Up marker",
		},
		{
			name:   "err/duplicate_down",
			data:   "-- +migrate Up\nSELECT 1;\n-- +migrate Down\n-- +migrate Down",
			expErr: "duplicate Down marker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			unit, err := migrator.ParseSQLUnit([]byte(tt.data))
			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
				assert.Nil(t, unit)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expUnit, unit)
		})
	}
}

func TestFileResolver(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.writeFile(t, "20250101000000_create_test.sql", createTestUnit)
	env.writeFile(t, "20250101000001_broken.sql", "SELECT 1;")

	resolver := migrator.FileResolver(env.fs)

	unit, err := resolver.Resolve(migrationsDir, "20250101000000_create_test.sql")
	require.NoError(t, err)

	require.NoError(t, unit.Apply(env.ctx, env.db))
	exists, err := queries.TableExists(env.ctx, env.db, "test")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, unit.Revert(env.ctx, env.db))
	exists, err = queries.TableExists(env.ctx, env.db, "test")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = resolver.Resolve(migrationsDir, "20250101000001_broken.sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed parsing unit file '20250101000001_broken.sql'")

	_, err = resolver.Resolve(migrationsDir, "20250101000002_missing.sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed reading unit file")

	_, err = resolver.Resolve(migrationsDir, "notes.txt")
	assert.True(t, errors.Is(err, migrator.ErrUnknownUnit))
}

func TestChainResolver(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.writeFile(t, "b.sql", createTestUnit)

	compiled := &migrator.SQLUnit{Up: "SELECT 1;"}
	resolver := migrator.ChainResolver(
		migrator.MapResolver(map[string]migrator.Unit{"a.sql": compiled}),
		migrator.FileResolver(env.fs),
	)

	unit, err := resolver.Resolve(migrationsDir, "a.sql")
	require.NoError(t, err)
	assert.Same(t, compiled, unit)

	unit, err = resolver.Resolve(migrationsDir, "b.sql")
	require.NoError(t, err)
	assert.IsType(t, &migrator.SQLUnit{}, unit)

	_, err = resolver.Resolve(migrationsDir, "c.txt")
	assert.True(t, errors.Is(err, migrator.ErrUnknownUnit))
}
