package cli

import (
	actx "go.hackfix.me/limigrate/app/context"
)

// Down reverts the most recently applied migration.
type Down struct{}

// Run the down command.
func (c *Down) Run(appCtx *actx.Context) error {
	r, err := newRunner(appCtx)
	if err != nil {
		return err
	}

	reverted, err := r.RevertOne(appCtx.Ctx)
	if err != nil {
		return unitRuntimeError("failed reverting migration", err, "")
	}

	if !reverted {
		appCtx.Logger.Info("nothing to revert")
		return nil
	}

	appCtx.Logger.Info("reverted migration")

	return nil
}
