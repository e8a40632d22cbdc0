// Package testrunner sets up a throwaway database around a test binary's
// run. Use it from TestMain:
//
//	var runner testrunner.Runner
//
//	func TestMain(m *testing.M) {
//		runner = &testrunner.RestoreDBDumpRunner{DumpPath: "testdata/products.sql"}
//		testrunner.Main(m, runner)
//	}
//
// FromConfig and FromLoadedConfig pick the runner from the test-runner
// config section instead.
package testrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/config"
	"github.com/andri/pocs/pkg/fixtures"
	"github.com/andri/pocs/pkg/store"
	"github.com/fatih/color"
	"k8s.io/utils/clock"
)

// Environment variables read by FromEnv.
const (
	EnvRunner = "POCS_TEST_RUNNER"
	EnvDump   = "POCS_TEST_DB_DUMP"
)

// Runner names accepted by FromEnv.
const (
	NameDiscover      = "discover"
	NameRestoreDBDump = "restore-db-dump"
)

// Suite runs tests and returns an exit code. *testing.M satisfies it.
type Suite interface {
	Run() int
}

// Runner wraps a Suite with database setup and teardown.
type Runner interface {
	RunTests(suite Suite) int
	Store() *store.Store
}

// DiscoverRunner creates a fresh migrated database, runs the suite, and
// removes the database afterwards.
type DiscoverRunner struct {
	// Out receives runner messages. Defaults to os.Stdout.
	Out io.Writer

	// Location and Clock configure the test store.
	Location *time.Location
	Clock    clock.PassiveClock

	// Keep leaves the database file in place after the run.
	Keep bool

	dir   string
	store *store.Store
}

var _ Runner = (*DiscoverRunner)(nil)

func (r *DiscoverRunner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// Store returns the database set up for the current run, or nil outside
// of RunTests.
func (r *DiscoverRunner) Store() *store.Store {
	return r.store
}

// SetupDatabases creates and migrates the test database.
func (r *DiscoverRunner) SetupDatabases(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "pocs-test-")
	if err != nil {
		return fmt.Errorf("create test database directory: %w", err)
	}

	s, err := store.Open(ctx, store.Options{
		Path:     filepath.Join(dir, "test_pocs.sqlite3"),
		Location: r.Location,
		Clock:    r.Clock,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("create test database: %w", err)
	}

	r.dir = dir
	r.store = s
	logger.Debug("created test database", "path", s.Path())
	return nil
}

// TeardownDatabases closes the test database and removes it unless Keep
// is set.
func (r *DiscoverRunner) TeardownDatabases() error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	if r.Keep {
		logger.Info("keeping test database", "path", r.store.Path())
	} else if rmErr := os.RemoveAll(r.dir); rmErr != nil {
		err = errors.Join(err, rmErr)
	}
	r.store = nil
	r.dir = ""
	return err
}

// RunTests sets up the databases, runs suite and tears down.
func (r *DiscoverRunner) RunTests(suite Suite) int {
	return r.run(suite, nil)
}

func (r *DiscoverRunner) run(suite Suite, prepare func(ctx context.Context, s *store.Store) error) int {
	ctx := context.Background()

	if err := r.SetupDatabases(ctx); err != nil {
		fmt.Fprintf(r.out(), "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := r.TeardownDatabases(); err != nil {
			logger.Warn("failed to remove test database", "error", err)
		}
	}()

	if prepare != nil {
		if err := prepare(ctx, r.store); err != nil {
			fmt.Fprintf(r.out(), "Error: %v\n", err)
			return 1
		}
	}

	return suite.Run()
}

// RestoreDBDumpRunner announces itself, restores DumpPath into the fresh
// test database, then runs the suite like DiscoverRunner.
type RestoreDBDumpRunner struct {
	DiscoverRunner

	// DumpPath is an SQL dump (.sql) or a fixture (.yaml, .yml, .json).
	// An empty or missing path is skipped.
	DumpPath string
}

var _ Runner = (*RestoreDBDumpRunner)(nil)

var bannerColor = color.New(color.FgCyan, color.Bold)

// RunTests prints the runner banner and runs the suite on the restored
// database. A failed restore returns 1 without running any test.
func (r *RestoreDBDumpRunner) RunTests(suite Suite) int {
	bannerColor.Fprintf(r.out(), "Running the %q test runner\n", "RestoreDBDumpRunner")
	return r.run(suite, r.restore)
}

func (r *RestoreDBDumpRunner) restore(ctx context.Context, s *store.Store) error {
	path := strings.TrimSpace(r.DumpPath)
	if path == "" {
		logger.Info("no database dump configured, skipping restore")
		return nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("database dump not found, skipping restore", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open database dump: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".sql") {
		if err := s.Restore(ctx, f); err != nil {
			return fmt.Errorf("restore %s: %w", path, err)
		}
	} else {
		format, err := fixtures.FormatFromPath(path)
		if err != nil {
			return err
		}
		n, err := fixtures.Load(ctx, s, f, format)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		logger.Info("installed fixture objects", "count", n, "path", path)
	}

	fmt.Fprintf(r.out(), "Restored database dump %s\n", path)
	return nil
}

// FromEnv returns the runner named by POCS_TEST_RUNNER, defaulting to
// DiscoverRunner. A RestoreDBDumpRunner reads its dump path from
// POCS_TEST_DB_DUMP, falling back to defaultDump.
func FromEnv(defaultDump string) (Runner, error) {
	name := strings.TrimSpace(os.Getenv(EnvRunner))
	switch name {
	case "", NameDiscover:
		return &DiscoverRunner{}, nil
	case NameRestoreDBDump:
		dump := os.Getenv(EnvDump)
		if dump == "" {
			dump = defaultDump
		}
		return &RestoreDBDumpRunner{DumpPath: dump}, nil
	default:
		return nil, fmt.Errorf("unknown test runner %q (want %s or %s)", name, NameDiscover, NameRestoreDBDump)
	}
}

// FromConfig returns the runner selected by cfg's test-runner section,
// with test databases in cfg's time zone. An empty name selects
// DiscoverRunner; an empty dump path falls back to defaultDump.
func FromConfig(cfg config.Config, defaultDump string) (Runner, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	base := DiscoverRunner{Location: loc}
	switch name := strings.TrimSpace(cfg.TestRunner.Name); name {
	case "", NameDiscover:
		return &base, nil
	case NameRestoreDBDump:
		dump := cfg.TestRunner.DumpPath
		if dump == "" {
			dump = defaultDump
		}
		return &RestoreDBDumpRunner{DiscoverRunner: base, DumpPath: dump}, nil
	default:
		return nil, fmt.Errorf("unknown test runner %q (want %s or %s)", name, NameDiscover, NameRestoreDBDump)
	}
}

// FromLoadedConfig loads the pocs configuration the way the command does
// (config file, POCS_* variables, defaults) and calls FromConfig.
func FromLoadedConfig(defaultDump string) (Runner, error) {
	result, err := config.LoadConfig(config.LoadOptions{})
	if err != nil {
		return nil, fmt.Errorf("load test runner configuration: %w", err)
	}
	return FromConfig(result.Config, defaultDump)
}

// Main runs m with runner and exits with its code.
func Main(m Suite, runner Runner) {
	os.Exit(runner.RunTests(m))
}
