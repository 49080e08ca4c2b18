package cli

import (
	"errors"

	actx "go.hackfix.me/limigrate/app/context"
	aerrors "go.hackfix.me/limigrate/app/errors"
	"go.hackfix.me/limigrate/db/migrator"
)

// Up applies all pending migrations.
type Up struct{}

// Run the up command.
func (c *Up) Run(appCtx *actx.Context) error {
	r, err := newRunner(appCtx)
	if err != nil {
		return err
	}

	applied, err := r.ApplyAll(appCtx.Ctx)
	if err != nil {
		return unitRuntimeError("failed applying migrations", err,
			"Fix the failing migration and run 'limigrate up' again.")
	}

	if !applied {
		appCtx.Logger.Info("nothing to apply")
		return nil
	}

	appCtx.Logger.Info("applied all pending migrations")

	return nil
}

func unitRuntimeError(msg string, err error, hint string) error {
	rerr := aerrors.NewRuntimeError(msg, err, hint)

	var unitErr *migrator.UnitError
	if errors.As(err, &unitErr) {
		rerr = aerrors.WithCause(rerr, unitErr.Err,
			"unit", unitErr.Unit, "direction", string(unitErr.Direction))
	}

	return rerr
}
