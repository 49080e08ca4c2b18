package cli

import (
	"fmt"

	actx "go.hackfix.me/limigrate/app/context"
	aerrors "go.hackfix.me/limigrate/app/errors"
	"go.hackfix.me/limigrate/db/migrator"
)

// NewCmd creates a new migration file.
type NewCmd struct {
	Name string `arg:"" help:"A short description of the migration, e.g. 'create users'."`
}

// Run the new command.
func (c *NewCmd) Run(appCtx *actx.Context) error {
	path, err := migrator.NewUnit(
		appCtx.FS, appCtx.Config.Migrations.Dir.V, c.Name, appCtx.TimeSource.Now())
	if err != nil {
		return aerrors.NewRuntimeError("failed creating migration", err, "")
	}

	appCtx.Logger.Debug("created migration", "path", path)
	fmt.Fprintln(appCtx.Stdout, path)

	return nil
}
