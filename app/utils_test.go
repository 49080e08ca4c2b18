package app

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/nrednav/cuid2"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/limigrate/db"
	"go.hackfix.me/limigrate/models"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

// testEnv is the state shared by all application runs of a test.
type testEnv struct {
	t  *testing.T
	fs vfs.FileSystem
	db *db.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A unique name per test, to avoid clashing of in-memory SQLite DBs.
	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	d, err := db.Open(t.Context(),
		fmt.Sprintf("file:limigrate-%s?mode=memory&cache=shared", cuid2.Generate()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return &testEnv{t: t, fs: memoryfs.New(), db: d}
}

func (e *testEnv) writeFile(path, content string) {
	e.t.Helper()

	require.NoError(e.t, e.fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(e.t, vfs.WriteFile(e.fs, path, []byte(content), 0o644))
}

type runResult struct {
	stdout, stderr string
	err            error
}

// run executes the application once with the given arguments.
func (e *testEnv) run(args ...string) runResult {
	e.t.Helper()

	var stdout, stderr bytes.Buffer
	app, err := New("limigrate", "/config.json",
		WithContext(e.t.Context()),
		WithTimeSource(models.TimeSourceFunc(timeNowFn)),
		WithDB(e.db),
		WithFDs(nil, &stdout, &stderr),
		WithFS(e.fs),
		WithLogger(false),
	)
	require.NoError(e.t, err)

	err = app.Run(args)

	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
