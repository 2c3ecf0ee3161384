package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"snowlift/internal/common"
	"snowlift/pkg/errors"
	"snowlift/pkg/models"
)

// Defaults for the recognized load options. Chunk sizes mirror the source
// extraction batches; the timeouts bound connection setup and long statements.
const (
	DefaultBatchSize           = 100000
	DefaultMaxRetries          = 3
	DefaultConnectTimeoutSec   = 30
	DefaultStatementTimeoutSec = 300
)

func GetConfigPath() string {
	// Check for environment variable first
	if configPath := os.Getenv("SNOWLIFT_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".snowlift")
}

func GetConfigFile() string {
	// Check for environment variable first
	if configFile := os.Getenv("SNOWLIFT_CONFIG"); configFile != "" {
		// Validate the path to prevent directory traversal
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			// Fall back to default if invalid
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

func Load() (*models.Config, error) {
	configFile := GetConfigFile()

	// Validate the config file path
	cleanedPath, err := common.CleanPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	// Check if config file exists
	if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
		return &models.Config{}, nil
	}

	data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&config)
	return &config, nil
}

func Save(config *models.Config) error {
	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := GetConfigFile()

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}

// ApplyDefaults fills in unset recognized options so that every one of them
// resolves to a concrete value before the pipeline starts.
func ApplyDefaults(cfg *models.Config) {
	if len(cfg.Countries) == 0 {
		for _, c := range models.AllCountries {
			cfg.Countries = append(cfg.Countries, string(c))
		}
	}
	if cfg.Load.BatchSize <= 0 {
		cfg.Load.BatchSize = DefaultBatchSize
	}
	if cfg.Load.MaxRetries <= 0 {
		cfg.Load.MaxRetries = DefaultMaxRetries
	}
	if cfg.Load.ConnectTimeoutSec <= 0 {
		cfg.Load.ConnectTimeoutSec = DefaultConnectTimeoutSec
	}
	if cfg.Load.StatementTimeoutSec <= 0 {
		cfg.Load.StatementTimeoutSec = DefaultStatementTimeoutSec
	}
}

// Validate checks that every required setting is present. A validation
// failure here is fatal: the pipeline must not begin with an incomplete
// configuration.
func Validate(cfg *models.Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"snowflake.account", cfg.Snowflake.Account},
		{"snowflake.username", cfg.Snowflake.Username},
		{"snowflake.password", cfg.Snowflake.Password},
		{"snowflake.warehouse", cfg.Snowflake.Warehouse},
		{"snowflake.database", cfg.Snowflake.Database},
		{"snowflake.schema", cfg.Snowflake.Schema},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.New(errors.ErrCodeConfigMissing,
				fmt.Sprintf("required setting %s is not configured", r.name)).
				WithSeverity(errors.SeverityCritical)
		}
	}

	if len(cfg.Countries) == 0 {
		return errors.New(errors.ErrCodeConfigMissing, "no countries configured").
			WithSeverity(errors.SeverityCritical)
	}
	for _, name := range cfg.Countries {
		country, err := models.ParseCountry(name)
		if err != nil {
			return errors.ConfigError(err.Error(), "countries")
		}
		src, ok := cfg.Sources[string(country)]
		if !ok {
			return errors.New(errors.ErrCodeConfigMissing,
				fmt.Sprintf("no source server configured for %s", country)).
				WithSeverity(errors.SeverityCritical)
		}
		if src.Server == "" || src.Database == "" {
			return errors.ConfigError(
				fmt.Sprintf("incomplete source settings for %s", country),
				"sources."+string(country))
		}
	}

	if cfg.Load.BatchSize <= 0 {
		return errors.ConfigError("batch_size must be positive", "load.batch_size")
	}
	if cfg.Load.MaxRetries < 0 {
		return errors.ConfigError("max_retries must not be negative", "load.max_retries")
	}
	return nil
}

// ResolveBaseDir resolves the staging base directory once at startup, in
// priority order: SNOWLIFT_BASE_DIR environment override, the configured
// primary path, then the configured fallback. A missing primary degrades to
// the fallback (the synced drive may not be mounted); a missing fallback is
// created under the OS temp directory.
func ResolveBaseDir(cfg *models.Config) (string, error) {
	if env := os.Getenv("SNOWLIFT_BASE_DIR"); env != "" {
		return env, os.MkdirAll(env, 0750)
	}

	if cfg.Staging.BaseDir != "" {
		if _, err := os.Stat(cfg.Staging.BaseDir); err == nil {
			return cfg.Staging.BaseDir, nil
		}
	}

	dir := cfg.Staging.FallbackDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "snowlift_staging")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeFileOperation,
			"cannot create staging base directory").WithContext("dir", dir)
	}
	return dir, nil
}

// EnsureCountryDirs creates the per-country staging folders.
func EnsureCountryDirs(baseDir string, countries []string) error {
	for _, country := range countries {
		if err := os.MkdirAll(filepath.Join(baseDir, country), 0750); err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation,
				"cannot create country staging directory").WithContext("country", country)
		}
	}
	return nil
}
