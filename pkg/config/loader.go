package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "POCS"

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	ConfigFile  string
	ConfigFiles []string
	Flags       *pflag.FlagSet
}

// LoadResult contains the merged configuration and validation output.
type LoadResult struct {
	Config         Config
	Validation     ValidationResult
	ConfigFileUsed string
}

// flagBindings maps CLI flag names to config keys.
var flagBindings = map[string]string{
	"database":   "database.path",
	"time-zone":  "time-zone",
	"host":       "server.host",
	"port":       "server.port",
	"log-level":  "logging.level",
	"log-file":   "logging.file",
	"log-format": "logging.format",
}

// LoadConfig loads configuration from defaults, file, env, and flags.
func LoadConfig(opts LoadOptions) (LoadResult, error) {
	v := viper.New()
	setDefaults(v)
	configureEnv(v)

	if opts.Flags != nil {
		if err := BindFlags(v, opts.Flags); err != nil {
			return LoadResult{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	configPath, err := resolveConfigFile(opts)
	if err != nil {
		return LoadResult{}, err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return LoadResult{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return LoadResult{}, fmt.Errorf("unmarshal config: %w", err)
	}

	result := LoadResult{
		Config:         cfg,
		Validation:     ValidateConfig(cfg),
		ConfigFileUsed: v.ConfigFileUsed(),
	}
	if result.Validation.HasErrors() {
		return result, &ValidationError{Result: result.Validation}
	}

	return result, nil
}

// BindFlags binds supported CLI flags to viper keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flag, key := range flagBindings {
		f := flags.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", flag, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("time-zone", defaults.TimeZone)

	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.backup-enabled", defaults.Database.BackupEnabled)
	v.SetDefault("database.backup-directory", defaults.Database.BackupDirectory)
	v.SetDefault("database.busy-timeout-ms", defaults.Database.BusyTimeoutMS)

	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.read-timeout-seconds", defaults.Server.ReadTimeoutSeconds)
	v.SetDefault("server.write-timeout-seconds", defaults.Server.WriteTimeoutSeconds)
	v.SetDefault("server.shutdown-timeout-seconds", defaults.Server.ShutdownTimeoutSeconds)

	v.SetDefault("pagination.products-per-page", defaults.Pagination.ProductsPerPage)
	v.SetDefault("pagination.admin-per-page", defaults.Pagination.AdminPerPage)

	v.SetDefault("test-runner.name", defaults.TestRunner.Name)
	v.SetDefault("test-runner.dump-path", defaults.TestRunner.DumpPath)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

func configureEnv(v *viper.Viper) {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	v.SetEnvKeyReplacer(replacer)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// testrunner.FromEnv's variable names select the runner too
	_ = v.BindEnv("test-runner.name", EnvPrefix+"_TEST_RUNNER_NAME", EnvPrefix+"_TEST_RUNNER")
	_ = v.BindEnv("test-runner.dump-path", EnvPrefix+"_TEST_RUNNER_DUMP_PATH", EnvPrefix+"_TEST_DB_DUMP")
}

func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
			}
			return "", fmt.Errorf("config file error: %w", err)
		}
		return opts.ConfigFile, nil
	}

	candidates := opts.ConfigFiles
	if len(candidates) == 0 {
		candidates = defaultConfigFiles()
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("config file error: %w", err)
		}
		if info.IsDir() {
			continue
		}
		return candidate, nil
	}

	return "", nil
}

func defaultConfigFiles() []string {
	files := []string{"./pocs.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".config", "pocs", "config.yaml"))
	}
	files = append(files, "/etc/pocs/config.yaml")
	return files
}
