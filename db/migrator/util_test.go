package migrator_test

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/nrednav/cuid2"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/limigrate/db"
	"go.hackfix.me/limigrate/db/migrator"
	"go.hackfix.me/limigrate/db/registry"
)

const migrationsDir = "/migrations"

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// tickClock advances one second every time it's read.
type tickClock struct {
	t time.Time
}

func (c *tickClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

const createTestUnit = `-- Creates the test table.
-- +migrate Up
CREATE TABLE IF NOT EXISTS test (col1 TEXT, col2 TEXT);
INSERT INTO test VALUES ('lol', 'stuff');

-- +migrate Down
DROP TABLE IF EXISTS test;
`

type testEnv struct {
	ctx   context.Context
	db    *db.DB
	fs    vfs.FileSystem
	clock *tickClock
	store *registry.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := t.Context()
	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(ctx,
		fmt.Sprintf("file:migrator-%s?mode=memory&cache=shared", cuid2.Generate()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	store, err := registry.New(registry.DefaultTable)
	require.NoError(t, err)

	return &testEnv{
		ctx:   ctx,
		db:    d,
		fs:    memoryfs.New(),
		clock: &tickClock{t: timeNow},
		store: store,
	}
}

func (e *testEnv) newRunner(t *testing.T, opts ...migrator.Option) *migrator.Runner {
	t.Helper()

	opts = append([]migrator.Option{
		migrator.WithLogger(slog.New(slog.DiscardHandler)),
		migrator.WithTimeSource(e.clock),
	}, opts...)
	r, err := migrator.New(e.db, e.fs, migrationsDir, opts...)
	require.NoError(t, err)

	return r
}

func (e *testEnv) writeFile(t *testing.T, name, content string) {
	t.Helper()

	require.NoError(t, e.fs.MkdirAll(migrationsDir, 0o755))
	require.NoError(t, vfs.WriteFile(e.fs, filepath.Join(migrationsDir, name), []byte(content), 0o644))
}

func (e *testEnv) statuses(t *testing.T) map[string]registry.Status {
	t.Helper()

	records, err := e.store.List(e.ctx, e.db)
	require.NoError(t, err)

	statuses := make(map[string]registry.Status, len(records))
	for _, rec := range records {
		statuses[rec.Name] = rec.Status
	}

	return statuses
}

func pathExists(t *testing.T, fs vfs.FileSystem, path string) bool {
	t.Helper()

	_, err := fs.Stat(path)
	if vfs.IsErrNotExist(err) {
		return false
	}
	require.NoError(t, err)

	return true
}
