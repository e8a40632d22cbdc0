// Package config defines the pocs configuration schema and its loader.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabasePath           = "pocs.sqlite3"
	DefaultBusyTimeoutMS          = 5000
	DefaultServerHost             = "127.0.0.1"
	DefaultServerPort             = 8000
	DefaultReadTimeoutSeconds     = 15
	DefaultWriteTimeoutSeconds    = 15
	DefaultShutdownTimeoutSeconds = 10
	DefaultProductsPerPage        = 2
	DefaultAdminPerPage           = 100
	DefaultTimeZone               = "UTC"
	DefaultTestRunner             = "restore-db-dump"
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "text"
)

// Config holds the full configuration schema for pocs.
type Config struct {
	// TimeZone names the location used for timezone-aware timestamps.
	TimeZone   string           `mapstructure:"time-zone" yaml:"time-zone" json:"time-zone"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database" json:"database"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
	Pagination PaginationConfig `mapstructure:"pagination" yaml:"pagination" json:"pagination"`
	TestRunner TestRunnerConfig `mapstructure:"test-runner" yaml:"test-runner" json:"test-runner"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// DatabaseConfig locates the SQLite database and its backups.
type DatabaseConfig struct {
	Path            string `mapstructure:"path" yaml:"path" json:"path"`
	BackupEnabled   bool   `mapstructure:"backup-enabled" yaml:"backup-enabled" json:"backup-enabled"`
	BackupDirectory string `mapstructure:"backup-directory" yaml:"backup-directory" json:"backup-directory"`
	BusyTimeoutMS   int    `mapstructure:"busy-timeout-ms" yaml:"busy-timeout-ms" json:"busy-timeout-ms"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host                   string `mapstructure:"host" yaml:"host" json:"host"`
	Port                   int    `mapstructure:"port" yaml:"port" json:"port"`
	ReadTimeoutSeconds     int    `mapstructure:"read-timeout-seconds" yaml:"read-timeout-seconds" json:"read-timeout-seconds"`
	WriteTimeoutSeconds    int    `mapstructure:"write-timeout-seconds" yaml:"write-timeout-seconds" json:"write-timeout-seconds"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown-timeout-seconds" yaml:"shutdown-timeout-seconds" json:"shutdown-timeout-seconds"`
}

// PaginationConfig holds page sizes for list views.
type PaginationConfig struct {
	ProductsPerPage int `mapstructure:"products-per-page" yaml:"products-per-page" json:"products-per-page"`
	AdminPerPage    int `mapstructure:"admin-per-page" yaml:"admin-per-page" json:"admin-per-page"`
}

// TestRunnerConfig selects the runner testrunner.FromConfig builds for a
// package TestMain.
type TestRunnerConfig struct {
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	DumpPath string `mapstructure:"dump-path" yaml:"dump-path" json:"dump-path"`
}

// LoggingConfig controls log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// DefaultConfig returns a config with all default values applied.
func DefaultConfig() Config {
	return Config{
		TimeZone: DefaultTimeZone,
		Database: DatabaseConfig{
			Path:          DefaultDatabasePath,
			BackupEnabled: true,
			BusyTimeoutMS: DefaultBusyTimeoutMS,
		},
		Server: ServerConfig{
			Host:                   DefaultServerHost,
			Port:                   DefaultServerPort,
			ReadTimeoutSeconds:     DefaultReadTimeoutSeconds,
			WriteTimeoutSeconds:    DefaultWriteTimeoutSeconds,
			ShutdownTimeoutSeconds: DefaultShutdownTimeoutSeconds,
		},
		Pagination: PaginationConfig{
			ProductsPerPage: DefaultProductsPerPage,
			AdminPerPage:    DefaultAdminPerPage,
		},
		TestRunner: TestRunnerConfig{
			Name: DefaultTestRunner,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Location resolves TimeZone. An empty value means UTC.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.TimeZone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// String renders the configuration as YAML.
func (c Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}

	return strings.TrimSpace(string(data))
}
