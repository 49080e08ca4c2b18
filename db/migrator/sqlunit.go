package migrator

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/limigrate/db/types"
)

const (
	markerUp   = "-- +migrate Up"
	markerDown = "-- +migrate Down"
)

var (
	errMissingUpSection    = errors.New("missing or empty Up section")
	errDuplicateUpMarker   = errors.New("duplicate Up marker")
	errDuplicateDownMarker = errors.New("duplicate Down marker")
)

// SQLUnit is a unit defined by SQL statements.
type SQLUnit struct {
	Up   string
	Down string
}

var _ Unit = (*SQLUnit)(nil)

// Apply runs the Up statements.
func (u *SQLUnit) Apply(ctx context.Context, q types.Querier) error {
	return execScript(ctx, q, u.Up)
}

// Revert runs the Down statements. A unit without a Down section reverts
// without touching the database.
func (u *SQLUnit) Revert(ctx context.Context, q types.Querier) error {
	return execScript(ctx, q, u.Down)
}

func execScript(ctx context.Context, q types.Querier, script string) error {
	if script == "" {
		return nil
	}
	if _, err := q.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("failed executing SQL: %w", err)
	}
	return nil
}

// ParseSQLUnit parses the contents of a SQL unit file. Statements after the
// `-- +migrate Up` marker are run on apply, and the ones after the
// `-- +migrate Down` marker on revert. Anything before the first marker is
// ignored.
//
// Markers are matched line by line, without parsing SQL. A line that consists
// only of a marker is treated as one even inside a string literal or a block
// comment, so such lines must not appear in a unit's statements.
func ParseSQLUnit(data []byte) (*SQLUnit, error) {
	var (
		upBuilder, downBuilder strings.Builder
		currentSection         *strings.Builder
		upSeen, downSeen       bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case markerUp:
			if upSeen {
				return nil, errDuplicateUpMarker
			}
			upSeen = true
			currentSection = &upBuilder
			continue
		case markerDown:
			if downSeen {
				return nil, errDuplicateDownMarker
			}
			downSeen = true
			currentSection = &downBuilder
			continue
		}

		if currentSection != nil {
			currentSection.WriteString(line)
			currentSection.WriteString("\n")
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading unit: %w", err)
	}

	up := strings.TrimSpace(upBuilder.String())
	if up == "" {
		return nil, errMissingUpSection
	}

	return &SQLUnit{
		Up:   up,
		Down: strings.TrimSpace(downBuilder.String()),
	}, nil
}

// FileResolver returns a Resolver that reads SQL units from fs.
func FileResolver(fs vfs.FileSystem) Resolver {
	return ResolverFunc(func(dir, name string) (Unit, error) {
		if !IsUnitName(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, name)
		}

		data, err := vfs.ReadFile(fs, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed reading unit file: %w", err)
		}

		unit, err := ParseSQLUnit(data)
		if err != nil {
			return nil, fmt.Errorf("failed parsing unit file '%s': %w", name, err)
		}

		return unit, nil
	})
}
