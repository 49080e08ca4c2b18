package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"go.hackfix.me/limigrate/app/config"
	actx "go.hackfix.me/limigrate/app/context"
)

// CLI is the command line interface of limigrate.
type CLI struct {
	Up     Up     `kong:"cmd,help='Apply all pending migrations.'"`
	Down   Down   `kong:"cmd,help='Revert the most recently applied migration.'"`
	New    NewCmd `kong:"cmd,name='new',help='Create a new migration file.'"`
	Status Status `kong:"cmd,help='Show the status of all migrations.',aliases='st'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	Verbose bool `kong:"short='v',help='Log every step. Shortcut for --log-level=DEBUG.'"`

	// Options below override the values in the configuration file, which in
	// turn override the defaults.
	Database          string           `kong:"short='d',placeholder='PATH',help='Path to the SQLite database file. Default: ${defaultDatabase}'"`
	Dir               string           `kong:"placeholder='PATH',help='Path to the migrations directory. Default: ${defaultDir}'"`
	Table             string           `kong:"help='Name of the table migrations are tracked in. Default: ${defaultTable}'"`
	PurgeUnrecognized bool             `kong:"help='Delete files in the migrations directory that are not migrations.'"`
	ConfigFile        string           `kong:"default='${configFile}',help='Path to the configuration file.'"`
	Version           kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(configFilePath, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("limigrate"),
		kong.Description("A minimal schema migration runner for SQLite databases."),
		kong.UsageOnError(),
		kong.DefaultEnvars("LIMIGRATE"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile":      configFilePath,
			"defaultDatabase": config.DefaultDatabasePath,
			"defaultDir":      config.DefaultMigrationsDir,
			"defaultTable":    config.DefaultTable,
			"version":         version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// LogLevel returns the logging level selected on the command line.
func (c *CLI) LogLevel() slog.Level {
	if c.Verbose {
		return min(c.Log.Level, slog.LevelDebug)
	}
	return c.Log.Level
}

// ApplyConfig overrides the values in cfg with the options set on the command
// line, and sets defaults for the rest. The resulting values are copied back to
// the CLI, so that both agree on the effective configuration.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.Database != "" {
		cfg.Database.Path = sql.Null[string]{V: c.Database, Valid: true}
	}
	if c.Table != "" {
		cfg.Database.Table = sql.Null[string]{V: c.Table, Valid: true}
	}
	if c.Dir != "" {
		cfg.Migrations.Dir = sql.Null[string]{V: c.Dir, Valid: true}
	}
	if c.PurgeUnrecognized {
		cfg.Migrations.PurgeUnrecognized = sql.Null[bool]{V: true, Valid: true}
	}

	cfg.SetDefaults()

	c.Database = cfg.Database.Path.V
	c.Table = cfg.Database.Table.V
	c.Dir = cfg.Migrations.Dir.V
	c.PurgeUnrecognized = cfg.Migrations.PurgeUnrecognized.V
}
