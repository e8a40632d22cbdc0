package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// ValidationError wraps a ValidationResult as an error.
type ValidationError struct {
	Result ValidationResult
}

// Error returns all validation errors as a single message.
func (e *ValidationError) Error() string {
	if len(e.Result.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Result.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Result.Errors[0])
	}
	var b strings.Builder
	b.WriteString("configuration validation failed:")
	for _, err := range e.Result.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors joined together.
func (e *ValidationError) Unwrap() error {
	return errors.Join(e.Result.Errors...)
}

// ValidationResult captures validation errors and warnings.
type ValidationResult struct {
	Errors   []error
	Warnings []string
}

// HasErrors reports whether validation errors exist.
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings reports whether validation warnings exist.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

var (
	allowedLogLevels   = []string{"debug", "info", "warn", "error"}
	allowedLogFormats  = []string{"text", "json"}
	allowedTestRunners = []string{"discover", "restore-db-dump"}
)

// ValidateConfig validates configuration values and returns all issues.
func ValidateConfig(cfg Config) ValidationResult {
	var result ValidationResult

	if _, err := cfg.Location(); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("invalid time-zone: %w", err))
	}

	if strings.TrimSpace(cfg.Database.Path) == "" {
		result.Errors = append(result.Errors, errors.New("database.path must be non-empty"))
	}
	if cfg.Database.BusyTimeoutMS < 0 {
		result.Errors = append(result.Errors, fmt.Errorf(
			"database.busy-timeout-ms must be >= 0, got: %d", cfg.Database.BusyTimeoutMS))
	}

	for _, msg := range validation.IsValidPortNum(cfg.Server.Port) {
		result.Errors = append(result.Errors, fmt.Errorf("invalid server.port %d: %s", cfg.Server.Port, msg))
	}
	for _, timeout := range []int{
		cfg.Server.ReadTimeoutSeconds,
		cfg.Server.WriteTimeoutSeconds,
		cfg.Server.ShutdownTimeoutSeconds,
	} {
		if timeout < 1 {
			result.Errors = append(result.Errors, fmt.Errorf("timeout must be >= 1 second, got: %d", timeout))
		}
	}

	if cfg.Pagination.ProductsPerPage <= 0 {
		result.Errors = append(result.Errors, fmt.Errorf(
			"pagination.products-per-page must be > 0, got: %d", cfg.Pagination.ProductsPerPage))
	}
	if cfg.Pagination.AdminPerPage <= 0 {
		result.Errors = append(result.Errors, fmt.Errorf(
			"pagination.admin-per-page must be > 0, got: %d", cfg.Pagination.AdminPerPage))
	}
	if cfg.Pagination.ProductsPerPage > 1000 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("pagination.products-per-page=%d is very large - list pages will be slow", cfg.Pagination.ProductsPerPage))
	}

	if cfg.TestRunner.Name != "" && !slices.Contains(allowedTestRunners, cfg.TestRunner.Name) {
		result.Errors = append(result.Errors, fmt.Errorf(
			"invalid test-runner.name %q: allowed values are %v",
			cfg.TestRunner.Name, allowedTestRunners))
	}
	if cfg.TestRunner.Name == "restore-db-dump" && cfg.TestRunner.DumpPath == "" {
		result.Warnings = append(result.Warnings,
			"test-runner.dump-path is empty - the restore-db-dump runner uses the test package default dump")
	}

	if cfg.Logging.Level != "" && !slices.Contains(allowedLogLevels, cfg.Logging.Level) {
		result.Errors = append(result.Errors, fmt.Errorf(
			"invalid logging.level %q: allowed values are %v",
			cfg.Logging.Level, allowedLogLevels))
	}
	if cfg.Logging.Format != "" && !slices.Contains(allowedLogFormats, cfg.Logging.Format) {
		result.Errors = append(result.Errors, fmt.Errorf(
			"invalid logging.format %q: allowed values are %v",
			cfg.Logging.Format, allowedLogFormats))
	}

	return result
}
