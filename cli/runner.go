package cli

import (
	"fmt"

	actx "go.hackfix.me/limigrate/app/context"
	"go.hackfix.me/limigrate/db"
	"go.hackfix.me/limigrate/db/migrator"
)

// newRunner returns a migration Runner configured from the application
// context, opening the database if it isn't open yet.
func newRunner(appCtx *actx.Context) (*migrator.Runner, error) {
	cfg := appCtx.Config
	if appCtx.DB == nil {
		d, err := db.Open(appCtx.Ctx, cfg.Database.Path.V)
		if err != nil {
			return nil, err
		}
		appCtx.DB = d
		appCtx.Logger.Debug("opened database", "path", d.Path())
	}

	r, err := migrator.New(appCtx.DB, appCtx.FS, cfg.Migrations.Dir.V,
		migrator.WithLogger(appCtx.Logger),
		migrator.WithTable(cfg.Database.Table.V),
		migrator.WithPurgeUnrecognized(cfg.Migrations.PurgeUnrecognized.V),
		migrator.WithTimeSource(appCtx.TimeSource),
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the migration runner: %w", err)
	}

	return r, nil
}
