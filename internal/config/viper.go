// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level    string `mapstructure:"level" yaml:"level"`
		Format   string `mapstructure:"format" yaml:"format"`
		Dir      string `mapstructure:"dir" yaml:"dir"`
		MaxFiles int    `mapstructure:"max_files" yaml:"max_files"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		ConfigPath string `mapstructure:"config_path" yaml:"config_path"`
		CSVDir     string `mapstructure:"csv_dir" yaml:"csv_dir"`
		Extension  string `mapstructure:"extension" yaml:"extension"`
	} `mapstructure:"data" yaml:"data"`

	Database struct {
		URL          string `mapstructure:"url" yaml:"-"` // Never serialize credentials
		ConfigPath   string `mapstructure:"config_path" yaml:"config_path"`
		MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
		MaxIdleTime  string `mapstructure:"max_idle_time" yaml:"max_idle_time"`
	} `mapstructure:"database" yaml:"database"`

	Ingest struct {
		DryRun              bool   `mapstructure:"dry_run" yaml:"dry_run"`
		DropBatchDuplicates bool   `mapstructure:"drop_batch_duplicates" yaml:"drop_batch_duplicates"`
		ReportPath          string `mapstructure:"report_path" yaml:"report_path"`
	} `mapstructure:"ingest" yaml:"ingest"`
}

// envBindings maps config keys to the unprefixed environment variables the
// deployment scripts already export.
var envBindings = map[string]string{
	"data.config_path":     "DATA_CONFIG_PATH",
	"data.csv_dir":         "CSV_FILES_DIR",
	"database.url":         "DATABASE_URL",
	"database.config_path": "DB_CONFIG_PATH",
	"log.level":            "LOG_LEVEL",
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("bank-ingest")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.bank-ingest")
	v.AddConfigPath(".bank-ingest")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("BANKINGEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Plain environment names take precedence over the prefixed ones
	for key, env := range envBindings {
		if err := v.BindEnv(key, env, "BANKINGEST_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.max_files", 5)

	// Data defaults
	v.SetDefault("data.config_path", "config/data_config.yaml")
	v.SetDefault("data.csv_dir", "data")
	v.SetDefault("data.extension", ".csv")

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.config_path", "config/db_config.yaml")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_idle_time", "15m")

	// Ingest defaults
	v.SetDefault("ingest.dry_run", false)
	v.SetDefault("ingest.drop_batch_duplicates", true)
	v.SetDefault("ingest.report_path", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Log.MaxFiles < 1 {
		return fmt.Errorf("log.max_files must be at least 1, got: %d", config.Log.MaxFiles)
	}

	if !strings.HasPrefix(config.Data.Extension, ".") {
		return fmt.Errorf("data.extension must start with '.', got: %s", config.Data.Extension)
	}

	if config.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1, got: %d", config.Database.MaxOpenConns)
	}

	if config.Database.MaxIdleConns < 0 || config.Database.MaxIdleConns > config.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and %d, got: %d",
			config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	}

	if _, err := time.ParseDuration(config.Database.MaxIdleTime); err != nil {
		return fmt.Errorf("database.max_idle_time is not a duration: %s", config.Database.MaxIdleTime)
	}

	return nil
}
