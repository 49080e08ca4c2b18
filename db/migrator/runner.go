package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/nrednav/cuid2"

	"go.hackfix.me/limigrate/db/queries"
	"go.hackfix.me/limigrate/db/registry"
	"go.hackfix.me/limigrate/db/types"
	"go.hackfix.me/limigrate/models"
)

// Runner applies and reverts the migration units found in a directory, and
// keeps track of their status in the database.
type Runner struct {
	db         types.TxBeginner
	fs         vfs.FileSystem
	dir        string
	purge      bool
	store      *registry.Store
	loader     *Loader
	resolver   Resolver
	timeSource models.TimeSource
	logger     *slog.Logger
}

// UnitState is the status of a single unit, as reported by Runner.Status.
type UnitState struct {
	Name   string
	Status registry.Status
	// RegisteredAt is invalid if the unit hasn't been registered yet.
	RegisteredAt sql.Null[time.Time]
	// Missing is true if the unit is registered, but its file doesn't exist in
	// the migrations directory anymore.
	Missing bool
}

// New returns a new Runner for the units in the directory dir of fs.
func New(d types.TxBeginner, fs vfs.FileSystem, dir string, opts ...Option) (*Runner, error) {
	if d == nil {
		return nil, errors.New("database is required")
	}
	if fs == nil {
		return nil, errors.New("filesystem is required")
	}
	if dir == "" {
		return nil, errors.New("migrations directory is required")
	}

	r := &Runner{db: d, fs: fs, dir: dir}

	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.resolver == nil {
		r.resolver = FileResolver(fs)
	}
	r.loader = NewLoader(fs, dir, r.purge, r.logger)

	return r, nil
}

// Reconcile registers all units in the migrations directory that aren't
// registered yet as pending, and returns how many were registered. Units
// already registered are left untouched.
func (r *Runner) Reconcile(ctx context.Context) (int, error) {
	return r.reconcile(ctx, r.logger)
}

// ApplyAll registers new units, and applies all pending units, oldest first.
// Each unit is applied and marked as applied in its own transaction. If a unit
// fails, the units applied before it remain applied, and the error is
// returned. It returns true if at least one unit was applied.
func (r *Runner) ApplyAll(ctx context.Context) (bool, error) {
	logger := r.logger.With("run_id", cuid2.Generate())

	if _, err := r.reconcile(ctx, logger); err != nil {
		return false, err
	}

	pending, err := r.store.PendingOrdered(ctx, r.db)
	if err != nil {
		return false, err
	}

	if len(pending) == 0 {
		logger.Debug("no pending units")
		return false, nil
	}

	for _, name := range pending {
		if err = r.run(ctx, logger, name, DirectionApply); err != nil {
			return false, err
		}
	}

	return true, nil
}

// RevertOne reverts the most recently registered applied unit, and marks it as
// pending. It returns true if a unit was reverted.
func (r *Runner) RevertOne(ctx context.Context) (bool, error) {
	logger := r.logger.With("run_id", cuid2.Generate())

	exists, err := r.loader.Exists()
	if err != nil {
		return false, err
	}
	if !exists {
		logger.Debug("migrations directory doesn't exist", "dir", r.dir)
		return false, nil
	}

	if err = r.store.Init(ctx, r.db); err != nil {
		return false, err
	}

	latest, err := r.store.LatestApplied(ctx, r.db)
	if err != nil {
		return false, err
	}
	if !latest.Valid {
		logger.Debug("no applied units")
		return false, nil
	}

	if err = r.run(ctx, logger, latest.V, DirectionRevert); err != nil {
		return false, err
	}

	return true, nil
}

// Status returns the state of all registered units in the order they are
// applied, followed by the units that haven't been registered yet. It doesn't
// modify the database or the migrations directory. If the bookkeeping table
// doesn't exist, all units on disk are reported as pending.
func (r *Runner) Status(ctx context.Context) ([]*UnitState, error) {
	onDisk, err := r.loader.Scan()
	if err != nil {
		return nil, err
	}

	hasTable, err := queries.TableExists(ctx, r.db, r.store.Table())
	if err != nil {
		return nil, err
	}

	var records []*registry.Record
	if hasTable {
		records, err = r.store.List(ctx, r.db)
		if err != nil {
			return nil, err
		}
	}

	states := make([]*UnitState, 0, len(records)+len(onDisk))
	known := make(map[string]struct{}, len(records))
	for _, rec := range records {
		known[rec.Name] = struct{}{}
		_, found := slices.BinarySearch(onDisk, rec.Name)
		states = append(states, &UnitState{
			Name:         rec.Name,
			Status:       rec.Status,
			RegisteredAt: sql.Null[time.Time]{V: rec.RegisteredAt, Valid: true},
			Missing:      !found,
		})
	}

	for _, name := range onDisk {
		if _, ok := known[name]; ok {
			continue
		}
		states = append(states, &UnitState{Name: name, Status: registry.StatusPending})
	}

	return states, nil
}

func (r *Runner) reconcile(ctx context.Context, logger *slog.Logger) (count int, err error) {
	if err = r.store.Init(ctx, r.db); err != nil {
		return 0, err
	}

	names, err := r.loader.Discover()
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	known, err := r.store.ListKnown(ctx, tx)
	if err != nil {
		return 0, err
	}

	// Names are sorted, so units created earlier are registered first.
	for _, name := range names {
		if _, ok := known[name]; ok {
			continue
		}
		if err = r.store.Register(ctx, tx, name, registry.StatusPending, r.timeSource.Now()); err != nil {
			return 0, err
		}
		logger.Debug("registered unit", "unit", name)
		count++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed committing registered units: %w", err)
	}

	return count, nil
}

// run resolves the unit and runs it in the given direction, updating its
// status in the same transaction.
func (r *Runner) run(
	ctx context.Context, logger *slog.Logger, name string, dir Direction,
) (err error) {
	logger = logger.With("unit", name, "direction", dir)

	unit, err := r.resolver.Resolve(r.dir, name)
	if err != nil {
		return &UnitError{Unit: name, Direction: dir, Err: err}
	}

	logger.Debug("running unit")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var status registry.Status
	switch dir {
	case DirectionApply:
		err = unit.Apply(ctx, tx)
		status = registry.StatusApplied
	case DirectionRevert:
		err = unit.Revert(ctx, tx)
		status = registry.StatusPending
	default:
		return fmt.Errorf("unsupported direction '%s'", dir)
	}
	if err != nil {
		return &UnitError{Unit: name, Direction: dir, Err: err}
	}

	if err = r.store.SetStatus(ctx, tx, name, status); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return &UnitError{Unit: name, Direction: dir, Err: fmt.Errorf("failed committing: %w", err)}
	}

	switch dir {
	case DirectionApply:
		logger.Info("applied unit")
	case DirectionRevert:
		logger.Info("reverted unit")
	}

	return nil
}
