package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"snowlift/pkg/errors"
	"snowlift/pkg/models"
)

func validConfig() *models.Config {
	cfg := &models.Config{
		Countries: []string{"CHILE", "PERU"},
		Sources: map[string]models.Source{
			"CHILE": {Server: "db-cl.example.com", Database: "GC_CHILE", Username: "svc", Password: "x"},
			"PERU":  {Server: "db-pe.example.com", Database: "GC_PERU", Username: "svc", Password: "x"},
		},
		Snowflake: models.Snowflake{
			Account:   "xy12345",
			Username:  "loader",
			Password:  "secret",
			Warehouse: "LOAD_WH",
			Database:  "STAGING",
			Schema:    "PUBLIC",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestGetConfigFileEnvOverride(t *testing.T) {
	t.Setenv("SNOWLIFT_CONFIG", "/tmp/custom/config.yaml")
	assert.Equal(t, "/tmp/custom/config.yaml", GetConfigFile())
	assert.Equal(t, "/tmp/custom", GetConfigPath())
}

func TestGetConfigFileDefault(t *testing.T) {
	t.Setenv("SNOWLIFT_CONFIG", "")
	os.Unsetenv("SNOWLIFT_CONFIG")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".snowlift", "config.yaml"), GetConfigFile())
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SNOWLIFT_CONFIG", filepath.Join(dir, "config.yaml"))

	cfg := validConfig()
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Snowflake.Account, loaded.Snowflake.Account)
	assert.Equal(t, cfg.Countries, loaded.Countries)
	assert.Equal(t, DefaultBatchSize, loaded.Load.BatchSize)
}

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	t.Setenv("SNOWLIFT_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Snowflake.Account)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &models.Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, []string{"CHILE", "COLOMBIA", "ECUADOR", "PERU"}, cfg.Countries)
	assert.Equal(t, DefaultBatchSize, cfg.Load.BatchSize)
	assert.Equal(t, DefaultMaxRetries, cfg.Load.MaxRetries)
	assert.Equal(t, DefaultConnectTimeoutSec, cfg.Load.ConnectTimeoutSec)
	assert.Equal(t, DefaultStatementTimeoutSec, cfg.Load.StatementTimeoutSec)
	assert.False(t, cfg.Load.TruncateBeforeLoad)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Config)
		wantErr string
	}{
		{"valid", func(c *models.Config) {}, ""},
		{"missing account", func(c *models.Config) { c.Snowflake.Account = "" }, "snowflake.account"},
		{"missing password", func(c *models.Config) { c.Snowflake.Password = "" }, "snowflake.password"},
		{"missing warehouse", func(c *models.Config) { c.Snowflake.Warehouse = "" }, "snowflake.warehouse"},
		{"no countries", func(c *models.Config) { c.Countries = nil }, "no countries"},
		{"unknown country", func(c *models.Config) { c.Countries = []string{"BRASIL"} }, "unknown country"},
		{"missing source", func(c *models.Config) { delete(c.Sources, "PERU") }, "no source server"},
		{"incomplete source", func(c *models.Config) {
			c.Sources["PERU"] = models.Source{Server: "db-pe.example.com"}
		}, "incomplete source"},
		{"bad batch size", func(c *models.Config) { c.Load.BatchSize = -1 }, "batch_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateConfigFailureIsCritical(t *testing.T) {
	cfg := validConfig()
	cfg.Snowflake.Account = ""
	err := Validate(cfg)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.SeverityCritical, appErr.Severity)
}

func TestResolveBaseDirEnvOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	t.Setenv("SNOWLIFT_BASE_DIR", dir)

	got, err := ResolveBaseDir(&models.Config{})
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, got)
}

func TestResolveBaseDirPrefersExistingPrimary(t *testing.T) {
	os.Unsetenv("SNOWLIFT_BASE_DIR")
	primary := t.TempDir()
	cfg := &models.Config{Staging: models.Staging{BaseDir: primary, FallbackDir: t.TempDir()}}

	got, err := ResolveBaseDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, primary, got)
}

func TestResolveBaseDirFallsBackWhenPrimaryMissing(t *testing.T) {
	os.Unsetenv("SNOWLIFT_BASE_DIR")
	fallback := filepath.Join(t.TempDir(), "fallback")
	cfg := &models.Config{Staging: models.Staging{
		BaseDir:     filepath.Join(t.TempDir(), "does-not-exist"),
		FallbackDir: fallback,
	}}

	got, err := ResolveBaseDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)
	assert.DirExists(t, got)
}

func TestEnsureCountryDirs(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, EnsureCountryDirs(base, []string{"CHILE", "ECUADOR"}))
	assert.DirExists(t, filepath.Join(base, "CHILE"))
	assert.DirExists(t, filepath.Join(base, "ECUADOR"))
}
