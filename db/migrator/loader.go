package migrator

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// UnitExt is the file extension of migration unit files.
const UnitExt = ".sql"

// IsUnitName returns true if name follows the unit file naming convention.
func IsUnitName(name string) bool {
	return filepath.Ext(name) == UnitExt && len(name) > len(UnitExt)
}

// Loader enumerates the migration units in a directory.
type Loader struct {
	fs     vfs.FileSystem
	dir    string
	purge  bool
	logger *slog.Logger
}

// NewLoader returns a new Loader for the directory dir. If purge is true,
// Discover deletes files that aren't migration units.
func NewLoader(fs vfs.FileSystem, dir string, purge bool, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fs: fs, dir: dir, purge: purge, logger: logger}
}

// Dir returns the migrations directory.
func (l *Loader) Dir() string {
	return l.dir
}

// Exists returns true if the migrations directory exists.
func (l *Loader) Exists() (bool, error) {
	fi, err := l.fs.Stat(l.dir)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed reading migrations directory: %w", err)
	}

	if !fi.IsDir() {
		return false, fmt.Errorf("migrations path '%s' is not a directory", l.dir)
	}

	return true, nil
}

// Discover returns the sorted names of all units in the migrations directory,
// creating the directory if it doesn't exist.
func (l *Loader) Discover() ([]string, error) {
	if err := l.fs.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating migrations directory: %w", err)
	}

	return l.scan(l.purge)
}

// Scan returns the sorted names of all units in the migrations directory,
// without modifying it. A missing directory has no units.
func (l *Loader) Scan() ([]string, error) {
	exists, err := l.Exists()
	if err != nil || !exists {
		return nil, err
	}

	return l.scan(false)
}

func (l *Loader) scan(purge bool) ([]string, error) {
	entries, err := vfs.ReadDir(l.fs, l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory: %w", err)
	}

	names := []string{}
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}

		name := fi.Name()
		if IsUnitName(name) {
			if fi.Mode().IsRegular() {
				names = append(names, name)
			} else {
				l.logger.Debug("ignoring non-regular unit file", "file", name)
			}
			continue
		}

		if !purge {
			l.logger.Debug("ignoring unrecognized file", "file", name)
			continue
		}

		path := filepath.Join(l.dir, name)
		if err = l.fs.Remove(path); err != nil {
			return nil, fmt.Errorf("failed removing unrecognized file '%s': %w", path, err)
		}
		l.logger.Warn("removed unrecognized file", "file", name)
	}

	slices.Sort(names)

	return names, nil
}
