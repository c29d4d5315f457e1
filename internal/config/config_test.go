// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply without file or flags", func(t *testing.T) {
		cfg, err := config.Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
		assert.Equal(t, 8, cfg.Auth.MaxConcurrentHashes)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  addr: ":9999"
session:
  ttl: 1h
log:
  format: text
`)
		cfg, err := config.Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.Server.Addr)
		assert.Equal(t, time.Hour, cfg.Session.TTL)
		assert.Equal(t, "text", cfg.Log.Format)
		// untouched keys keep their defaults
		assert.Equal(t, ":9090", cfg.Metrics.Addr)
	})

	t.Run("DATABASE_URL env overrides file", func(t *testing.T) {
		path := writeConfig(t, `
database:
  url: postgres://file/db
`)
		t.Setenv("DATABASE_URL", "postgres://env/db")

		cfg, err := config.Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	})

	t.Run("changed flag wins over file", func(t *testing.T) {
		path := writeConfig(t, `
server:
  addr: ":9999"
`)
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("server.addr", ":8080", "")
		require.NoError(t, flags.Parse([]string{"--server.addr", ":7777"}))

		cfg, err := config.Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, ":7777", cfg.Server.Addr)
	})

	t.Run("unchanged flag does not clobber file", func(t *testing.T) {
		path := writeConfig(t, `
server:
  addr: ":9999"
`)
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("server.addr", ":8080", "")
		require.NoError(t, flags.Parse(nil))

		cfg, err := config.Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.Server.Addr)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := config.Load("/nonexistent/config.yaml", nil)
		require.Error(t, err)
	})

	t.Run("zero ttl disables expiry and is valid", func(t *testing.T) {
		path := writeConfig(t, `
session:
  ttl: 0s
`)
		cfg, err := config.Load(path, nil)
		require.NoError(t, err)
		assert.Zero(t, cfg.Session.TTL)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty server addr", func(c *config.Config) { c.Server.Addr = "" }},
		{"empty database url", func(c *config.Config) { c.Database.URL = "" }},
		{"negative session ttl", func(c *config.Config) { c.Session.TTL = -time.Hour }},
		{"zero sweep interval", func(c *config.Config) { c.Session.SweepInterval = 0 }},
		{"zero hash concurrency", func(c *config.Config) { c.Auth.MaxConcurrentHashes = 0 }},
		{"unknown log format", func(c *config.Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
