// Package commands provides the CLI command implementations for pocs.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/config"
	"github.com/andri/pocs/pkg/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// version information set by build flags
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	buildDate = d
}

// RootOptions holds the global options for all commands
type RootOptions struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// Database is the SQLite database path
	Database string

	// TimeZone names the zone used for timezone-aware datetimes
	TimeZone string

	// LogLevel sets the logging level (debug, info, warn, error)
	LogLevel string

	// LogFile sets the file path for log output
	LogFile string

	// LogFormat selects text or json log lines
	LogFormat string

	// Config holds the loaded configuration
	Config config.Config

	// Context is the root context for all operations
	Context context.Context

	// CancelFunc cancels the root context
	CancelFunc context.CancelFunc

	logFile *os.File
}

// GlobalOptions is the singleton instance for root options
var GlobalOptions = &RootOptions{}

// NewRootCmd creates the root cobra command
func NewRootCmd() *cobra.Command {
	*GlobalOptions = RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pocs",
		Short: "Model, form, filter and test-runner proofs of concept",
		Long: `pocs - proofs of concept for a small web application stack

Stores posts and products in SQLite and exercises the pieces around them:
  - posts whose datetime defaults to a timezone-aware "now"
  - model forms with field validation, used by the admin site
  - a product list filtered by release month and year, two per page
  - a test runner that restores a database dump before running tests`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeGlobals(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			cleanup()
		},
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPostCmd())
	rootCmd.AddCommand(newPostDefaultCmd())
	rootCmd.AddCommand(newProductCmd())
	rootCmd.AddCommand(newDumpDataCmd())
	rootCmd.AddCommand(newLoadDataCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newFlushCmd())

	return rootCmd
}

// addGlobalFlags adds the global flags to the root command
func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&GlobalOptions.ConfigFile, "config", "",
		"config file (default: ./pocs.yaml, ~/.config/pocs/config.yaml, /etc/pocs/config.yaml)")
	flags.StringVar(&GlobalOptions.Database, "database", "",
		"SQLite database path (default: "+config.DefaultDatabasePath+")")
	flags.StringVar(&GlobalOptions.TimeZone, "time-zone", "",
		"IANA time zone for timezone-aware datetimes (default: UTC)")
	flags.StringVar(&GlobalOptions.LogLevel, "log-level", "",
		"log level: debug, info, warn, error (default: info)")
	flags.StringVar(&GlobalOptions.LogFile, "log-file", "",
		"log file path (default: stderr)")
	flags.StringVar(&GlobalOptions.LogFormat, "log-format", "",
		"log format: text, json (default: text)")
}

// initializeGlobals initializes global options from flags, env, and config file
func initializeGlobals(cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	GlobalOptions.Context = ctx
	GlobalOptions.CancelFunc = cancel

	result, err := config.LoadConfig(config.LoadOptions{
		ConfigFile: GlobalOptions.ConfigFile,
		Flags:      buildFlagSet(cmd),
	})
	if err != nil {
		// config validate reports problems itself
		if cmd.Name() == "validate" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			GlobalOptions.Config = result.Config
			return nil
		}
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	GlobalOptions.Config = result.Config

	if logErr := initLogger(); logErr != nil {
		return fmt.Errorf("failed to initialize logger: %w", logErr)
	}

	if result.ConfigFileUsed != "" {
		logger.Debug("loaded configuration", "file", result.ConfigFileUsed)
	}
	for _, w := range result.Validation.Warnings {
		logger.Warn("configuration warning", "warning", w)
	}

	return nil
}

// buildFlagSet creates a pflag.FlagSet from cobra command flags for config binding
func buildFlagSet(cmd *cobra.Command) *pflag.FlagSet {
	flags := pflag.NewFlagSet("config", pflag.ContinueOnError)

	addIfExists := func(name string) {
		if flags.Lookup(name) != nil {
			return
		}
		if localFlag := cmd.Flags().Lookup(name); localFlag != nil {
			flags.AddFlag(localFlag)
		} else if inheritedFlag := cmd.InheritedFlags().Lookup(name); inheritedFlag != nil {
			flags.AddFlag(inheritedFlag)
		}
	}

	for _, name := range []string{
		"database", "time-zone", "host", "port",
		"log-level", "log-file", "log-format",
	} {
		addIfExists(name)
	}

	return flags
}

// initLogger initializes the logger based on configuration
func initLogger() error {
	cfg := GlobalOptions.Config.Logging

	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var output io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		GlobalOptions.logFile = f
		output = f
	}

	format := logger.FormatText
	if cfg.Format == "json" {
		format = logger.FormatJSON
	}

	logger.SetDefault(logger.New(logger.Config{
		Level:  level,
		Format: format,
		Output: output,
	}))

	return nil
}

// cleanup performs any necessary cleanup before exit
func cleanup() {
	if GlobalOptions.CancelFunc != nil {
		GlobalOptions.CancelFunc()
	}
	if GlobalOptions.logFile != nil {
		_ = GlobalOptions.logFile.Close()
		GlobalOptions.logFile = nil
	}
}

// openStore opens the configured database.
func openStore(ctx context.Context) (*store.Store, error) {
	cfg := GlobalOptions.Config
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, store.Options{
		Path:        cfg.Database.Path,
		Location:    loc,
		BusyTimeout: time.Duration(cfg.Database.BusyTimeoutMS) * time.Millisecond,
	})
}

// withStore opens the database, runs fn and closes it again.
func withStore(fn func(ctx context.Context, s *store.Store) error) error {
	ctx := GlobalOptions.Context
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logger.Warn("close database", "error", cerr)
		}
	}()
	return fn(ctx, s)
}

// newVersionCmd creates the version subcommand
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, commit, and build date information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "pocs version %s\n", version)
			_, _ = fmt.Fprintf(out, "  commit:     %s\n", commit)
			_, _ = fmt.Fprintf(out, "  build date: %s\n", buildDate)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
