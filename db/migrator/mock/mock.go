// Package mock provides a migration unit whose behavior can be scripted by
// tests.
package mock

import (
	"context"
	"fmt"

	"go.hackfix.me/limigrate/db/types"
)

// Journal records the order in which units are run.
type Journal struct {
	Entries []string
}

func (j *Journal) record(direction, name string) {
	if j != nil {
		j.Entries = append(j.Entries, fmt.Sprintf("%s:%s", direction, name))
	}
}

// Unit is a migration unit that optionally runs SQL statements, and counts how
// many times it was applied and reverted.
type Unit struct {
	Name      string
	ApplySQL  string
	RevertSQL string
	Applied   int
	Reverted  int
	journal   *Journal
	failErr   error // to simulate errors
}

// New returns a new Unit that records its runs in journal, which may be nil.
func New(name string, journal *Journal) *Unit {
	return &Unit{Name: name, journal: journal}
}

// Apply runs ApplySQL, if set.
func (u *Unit) Apply(ctx context.Context, q types.Querier) error {
	if u.failErr != nil {
		return u.failErr
	}
	if u.ApplySQL != "" {
		if _, err := q.ExecContext(ctx, u.ApplySQL); err != nil {
			return err
		}
	}
	u.Applied++
	u.journal.record("apply", u.Name)
	return nil
}

// Revert runs RevertSQL, if set.
func (u *Unit) Revert(ctx context.Context, q types.Querier) error {
	if u.failErr != nil {
		return u.failErr
	}
	if u.RevertSQL != "" {
		if _, err := q.ExecContext(ctx, u.RevertSQL); err != nil {
			return err
		}
	}
	u.Reverted++
	u.journal.record("revert", u.Name)
	return nil
}

// SetFailError makes all subsequent runs fail with err. Passing nil clears it.
func (u *Unit) SetFailError(err error) {
	u.failErr = err
}
