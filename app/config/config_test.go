package config_test

import (
	"database/sql"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/limigrate/app/config"
)

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		exp    config.Config
		expErr string
	}{
		{
			name: "ok/missing_file",
		},
		{
			name: "ok/full",
			data: `{
				"database": {"path": "app.db", "table": "schema_units"},
				"migrations": {"dir": "db/units", "purge_unrecognized": true}
			}`,
			exp: config.Config{
				Database: config.Database{
					Path:  sql.Null[string]{V: "app.db", Valid: true},
					Table: sql.Null[string]{V: "schema_units", Valid: true},
				},
				Migrations: config.Migrations{
					Dir:               sql.Null[string]{V: "db/units", Valid: true},
					PurgeUnrecognized: sql.Null[bool]{V: true, Valid: true},
				},
			},
		},
		{
			name: "ok/explicit_false",
			data: `{"migrations": {"purge_unrecognized": false}}`,
			exp: config.Config{
				Migrations: config.Migrations{
					PurgeUnrecognized: sql.Null[bool]{V: false, Valid: true},
				},
			},
		},
		{
			name:   "err/invalid_json",
			data:   `{"database":`,
			expErr: "failed parsing configuration file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := memoryfs.New()
			if tt.data != "" {
				require.NoError(t, vfs.WriteFile(fs, "/config.json", []byte(tt.data), 0o644))
			}

			cfg := config.NewConfig(fs, "/config.json")
			err := cfg.Load()
			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.exp.Database, cfg.Database)
			assert.Equal(t, tt.exp.Migrations, cfg.Migrations)
		})
	}
}

func TestConfigSaveLoad(t *testing.T) {
	t.Parallel()

	fs := memoryfs.New()
	cfg := config.NewConfig(fs, "/etc/limigrate/config.json")
	cfg.Migrations.Dir = sql.Null[string]{V: "units", Valid: true}
	cfg.Migrations.PurgeUnrecognized = sql.Null[bool]{V: true, Valid: true}
	require.NoError(t, cfg.Save())

	data, err := vfs.ReadFile(fs, cfg.Path())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"database": {}, "migrations": {"dir": "units", "purge_unrecognized": true}}`,
		string(data))

	loaded := config.NewConfig(fs, cfg.Path())
	require.NoError(t, loaded.Load())
	assert.Equal(t, cfg.Migrations, loaded.Migrations)
	assert.False(t, loaded.Database.Path.Valid)

	loaded.SetDefaults()
	assert.Equal(t, config.DefaultDatabasePath, loaded.Database.Path.V)
	assert.Equal(t, config.DefaultTable, loaded.Database.Table.V)
	assert.Equal(t, "units", loaded.Migrations.Dir.V)
	assert.True(t, loaded.Migrations.PurgeUnrecognized.V)
}
