package migrator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// unitTimeFormat is the layout of the creation timestamp prefixed to unit file
// names.
const unitTimeFormat = "20060102150405"

var nonSlugRx = regexp.MustCompile(`[^a-z0-9]+`)

const unitTemplate = `-- %s
-- Created at %s

-- +migrate Up


-- +migrate Down

`

// UnitFileName returns the file name of a new unit with the given descriptive
// name, created at the given time.
func UnitFileName(name string, createdAt time.Time) (string, error) {
	slug := strings.Trim(nonSlugRx.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("invalid unit name '%s': must contain at least one letter or digit", name)
	}

	return fmt.Sprintf("%s_%s%s", createdAt.UTC().Format(unitTimeFormat), slug, UnitExt), nil
}

// NewUnit creates a new, empty SQL unit file in the directory dir, creating the
// directory if needed. It returns the path of the created file.
func NewUnit(fs vfs.FileSystem, dir, name string, createdAt time.Time) (string, error) {
	fileName, err := UnitFileName(name, createdAt)
	if err != nil {
		return "", err
	}

	if err = fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed creating migrations directory: %w", err)
	}

	path := filepath.Join(dir, fileName)
	if _, err = fs.Stat(path); err == nil {
		return "", fmt.Errorf("unit file '%s' already exists", path)
	}

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("unit file '%s' already exists", path)
		}
		return "", fmt.Errorf("failed creating unit file: %w", err)
	}

	_, err = fmt.Fprintf(f, unitTemplate, name, createdAt.UTC().Format(time.RFC3339))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed writing unit file: %w", err)
	}

	return path, nil
}
