package migrator

import (
	"log/slog"

	"go.hackfix.me/limigrate/db/registry"
	"go.hackfix.me/limigrate/models"
)

// Option is a function that allows configuring the Runner.
type Option func(*Runner) error

// WithLogger sets the logger used by the Runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		r.logger = logger.With("component", "migrator")
		return nil
	}
}

// WithPurgeUnrecognized enables deleting files in the migrations directory that
// aren't migration units.
func WithPurgeUnrecognized(purge bool) Option {
	return func(r *Runner) error {
		r.purge = purge
		return nil
	}
}

// WithResolver sets the resolver used to find unit implementations. By
// default units are read from SQL files.
func WithResolver(resolver Resolver) Option {
	return func(r *Runner) error {
		r.resolver = resolver
		return nil
	}
}

// WithTable sets the name of the bookkeeping table.
func WithTable(table string) Option {
	return func(r *Runner) error {
		store, err := registry.New(table)
		if err != nil {
			return err
		}
		r.store = store
		return nil
	}
}

// WithTimeSource sets the source of registration timestamps.
func WithTimeSource(ts models.TimeSource) Option {
	return func(r *Runner) error {
		r.timeSource = ts
		return nil
	}
}

// DefaultOptions returns the default Runner options.
func DefaultOptions() []Option {
	return []Option{
		WithLogger(slog.Default()),
		WithTable(registry.DefaultTable),
		WithTimeSource(models.SystemTime{}),
	}
}
