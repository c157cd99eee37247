package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "repairshop", cfg.Database.Name)
	assert.Equal(t, "Africa/Algiers", cfg.Store.Timezone)
	assert.Equal(t, "DA", cfg.Store.Currency)
	assert.Equal(t, 40, cfg.Store.ReceiptWidth)
	assert.Equal(t, 12, cfg.Admin.SessionHours)
	assert.Equal(t, "lp", cfg.Printing.Command)
	assert.False(t, cfg.Archive.Enabled)
}

func TestLoadFileReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 9090\nstore:\n  timezone: Europe/Paris\n  receipt_width: 32\ndatabase:\n  name: shop_test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Europe/Paris", cfg.Store.Timezone)
	assert.Equal(t, 32, cfg.Store.ReceiptWidth)
	assert.Equal(t, "shop_test", cfg.Database.Name)
	// untouched keys keep their defaults
	assert.Equal(t, "DA", cfg.Store.Currency)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("ADMIN_TOKEN_SECRET", "signing-key")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "signing-key", cfg.Admin.TokenSecret)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.ConnectionString())

	d.SSLMode = "require"
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=require", d.ConnectionString())
}
