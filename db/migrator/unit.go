package migrator

import (
	"context"
	"errors"
	"fmt"

	"go.hackfix.me/limigrate/db/types"
)

// ErrUnknownUnit is returned by a Resolver that has no implementation for a
// unit name.
var ErrUnknownUnit = errors.New("unknown migration unit")

// Direction is the direction a unit is run in.
type Direction string

// Supported directions.
const (
	DirectionApply  Direction = "apply"
	DirectionRevert Direction = "revert"
)

// Unit is a single database change. Both methods receive the transaction the
// unit's status update will be committed in, and must not commit or roll it
// back themselves. Revert is expected to undo exactly what Apply did.
type Unit interface {
	Apply(ctx context.Context, q types.Querier) error
	Revert(ctx context.Context, q types.Querier) error
}

// Resolver returns the implementation of the unit with the given name, found in
// the migrations directory dir.
type Resolver interface {
	Resolve(dir, name string) (Unit, error)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as
// Resolvers.
type ResolverFunc func(dir, name string) (Unit, error)

// Resolve calls f(dir, name).
func (f ResolverFunc) Resolve(dir, name string) (Unit, error) {
	return f(dir, name)
}

// MapResolver returns a Resolver of compiled units, keyed by unit name.
func MapResolver(units map[string]Unit) Resolver {
	return ResolverFunc(func(_, name string) (Unit, error) {
		unit, ok := units[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, name)
		}
		return unit, nil
	})
}

// ChainResolver returns a Resolver that tries each resolver in order, and
// returns the result of the first one that knows the unit.
func ChainResolver(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(dir, name string) (Unit, error) {
		for _, r := range resolvers {
			unit, err := r.Resolve(dir, name)
			if errors.Is(err, ErrUnknownUnit) {
				continue
			}
			return unit, err
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, name)
	})
}

// UnitError is returned when resolving or running a unit fails.
type UnitError struct {
	Unit      string
	Direction Direction
	Err       error
}

// Error returns a string representation of the error.
func (e *UnitError) Error() string {
	return fmt.Sprintf("failed to %s unit '%s': %s", e.Direction, e.Unit, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *UnitError) Unwrap() error {
	return e.Err
}
