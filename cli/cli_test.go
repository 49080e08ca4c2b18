package cli

import (
	"database/sql"
	"log/slog"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/limigrate/app/config"
)

func TestCLIParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		expCmd   string
		expLevel slog.Level
		expErr   string
	}{
		{name: "ok/up", args: []string{"up"}, expCmd: "up", expLevel: slog.LevelInfo},
		{name: "ok/down", args: []string{"down"}, expCmd: "down", expLevel: slog.LevelInfo},
		{name: "ok/new", args: []string{"new", "create users"}, expCmd: "new", expLevel: slog.LevelInfo},
		{name: "ok/status_alias", args: []string{"st"}, expCmd: "status", expLevel: slog.LevelInfo},
		{name: "ok/verbose", args: []string{"-v", "up"}, expCmd: "up", expLevel: slog.LevelDebug},
		{name: "ok/log_level", args: []string{"--log-level", "WARN", "up"}, expCmd: "up", expLevel: slog.LevelWarn},
		{name: "err/new_without_name", args: []string{"new"}, expErr: "failed parsing CLI arguments"},
		{name: "err/unknown_command", args: []string{"sideways"}, expErr: "failed parsing CLI arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New("/config.json", "limigrate v0.0.0-dev")
			require.NoError(t, err)

			err = c.Parse(tt.args)
			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expCmd, c.Command())
			assert.Equal(t, tt.expLevel, c.LogLevel())
			assert.Equal(t, "/config.json", c.ConfigFile)
		})
	}

	t.Run("ok/new_name", func(t *testing.T) {
		t.Parallel()

		c, err := New("/config.json", "")
		require.NoError(t, err)
		require.NoError(t, c.Parse([]string{"new", "create users"}))
		assert.Equal(t, "create users", c.New.Name)
	})
}

func TestCLIApplyConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		cfg    config.Config
		expDB  string
		expDir string
		expTbl string
		expPrg bool
	}{
		{
			name:   "ok/defaults",
			args:   []string{"up"},
			expDB:  config.DefaultDatabasePath,
			expDir: config.DefaultMigrationsDir,
			expTbl: config.DefaultTable,
		},
		{
			name: "ok/config_file",
			args: []string{"up"},
			cfg: config.Config{
				Database: config.Database{
					Path: sql.Null[string]{V: "app.db", Valid: true},
				},
				Migrations: config.Migrations{
					PurgeUnrecognized: sql.Null[bool]{V: true, Valid: true},
				},
			},
			expDB:  "app.db",
			expDir: config.DefaultMigrationsDir,
			expTbl: config.DefaultTable,
			expPrg: true,
		},
		{
			name: "ok/flags_win",
			args: []string{"-d", "flag.db", "--dir", "units", "--table", "units", "up"},
			cfg: config.Config{
				Database: config.Database{
					Path:  sql.Null[string]{V: "app.db", Valid: true},
					Table: sql.Null[string]{V: "from_config", Valid: true},
				},
			},
			expDB:  "flag.db",
			expDir: "units",
			expTbl: "units",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New("/config.json", "")
			require.NoError(t, err)
			require.NoError(t, c.Parse(tt.args))

			cfg := config.NewConfig(memoryfs.New(), "/config.json")
			cfg.Database = tt.cfg.Database
			cfg.Migrations = tt.cfg.Migrations
			c.ApplyConfig(cfg)

			assert.Equal(t, tt.expDB, cfg.Database.Path.V)
			assert.Equal(t, tt.expDir, cfg.Migrations.Dir.V)
			assert.Equal(t, tt.expTbl, cfg.Database.Table.V)
			assert.Equal(t, tt.expPrg, cfg.Migrations.PurgeUnrecognized.V)

			assert.Equal(t, tt.expDB, c.Database)
			assert.Equal(t, tt.expDir, c.Dir)
			assert.Equal(t, tt.expTbl, c.Table)
			assert.Equal(t, tt.expPrg, c.PurgeUnrecognized)
		})
	}
}
