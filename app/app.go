package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/limigrate/app/config"
	actx "go.hackfix.me/limigrate/app/context"
	"go.hackfix.me/limigrate/cli"
	"go.hackfix.me/limigrate/models"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:        context.Background(),
		FS:         memoryfs.New(),
		Logger:     slog.Default(),
		TimeSource: models.SystemTime{},
		Stdout:     io.Discard,
		Stderr:     io.Discard,
		Version:    version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(configFilePath, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run parses the command line arguments, loads the configuration and executes
// the selected command.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.LogLevel())
	}

	cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
	if err := cfg.Load(); err != nil {
		return err
	}
	app.cli.ApplyConfig(cfg)
	app.ctx.Config = cfg

	// Only close the database if it was opened by the command.
	if app.ctx.DB == nil {
		defer func() {
			if app.ctx.DB != nil {
				if err := app.ctx.DB.Close(); err != nil {
					app.ctx.Logger.Warn("failed closing database", "error", err)
				}
				app.ctx.DB = nil
			}
		}()
	}

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}
