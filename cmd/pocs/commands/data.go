package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/cli"
	"github.com/andri/pocs/pkg/fixtures"
	"github.com/andri/pocs/pkg/store"
	"github.com/andri/pocs/pkg/tui/format"
	"github.com/spf13/cobra"
)

// formatSQL selects a plain SQL dump in dumpdata.
const formatSQL = "sql"

// DumpDataOptions holds options for the dumpdata command
type DumpDataOptions struct {
	Format string
	Output string
}

// DestructiveOptions holds options shared by commands that replace data
type DestructiveOptions struct {
	// Yes skips the confirmation prompt
	Yes bool
}

func newDumpDataCmd() *cobra.Command {
	opts := &DumpDataOptions{}

	cmd := &cobra.Command{
		Use:   "dumpdata [app_label.model...]",
		Short: "Write database contents as a fixture or SQL dump",
		Long: `Write every row of the named models, or of all models, as a YAML or JSON
fixture. --format sql writes INSERT statements that restore reads back.`,
		Example: `  pocs dumpdata > all.yaml
  pocs dumpdata django_filter_pagination.product --format json -o products.json
  pocs dumpdata --format sql -o dump.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				return runDumpData(ctx, s, cmd.OutOrStdout(), opts, args)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", string(fixtures.FormatYAML), "yaml, json or sql")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFixed("yaml", "json", formatSQL))

	return cmd
}

func runDumpData(ctx context.Context, s *store.Store, stdout io.Writer, opts *DumpDataOptions, labels []string) (err error) {
	w := stdout
	if opts.Output != "" {
		f, createErr := os.Create(opts.Output)
		if createErr != nil {
			return fmt.Errorf("create %s: %w", opts.Output, createErr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if strings.EqualFold(opts.Format, formatSQL) {
		if len(labels) > 0 {
			return fmt.Errorf("an SQL dump always covers every model")
		}
		return s.Dump(ctx, w)
	}

	f, err := fixtures.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	return fixtures.Dump(ctx, s, w, f, labels...)
}

func newLoadDataCmd() *cobra.Command {
	opts := &DestructiveOptions{}

	cmd := &cobra.Command{
		Use:   "loaddata FIXTURE...",
		Short: "Load YAML or JSON fixtures into the database",
		Long: `Create or update the objects in each fixture, keeping their primary keys.
Each fixture is loaded in one transaction. The database is backed up first
when database.backup-enabled is set.`,
		Example: `  pocs loaddata products.yaml
  pocs loaddata posts.json products.yaml --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				return runLoadData(ctx, cmd, s, opts, args)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not prompt for confirmation")

	return cmd
}

func runLoadData(ctx context.Context, cmd *cobra.Command, s *store.Store, opts *DestructiveOptions, paths []string) error {
	ok, err := cli.Confirm(cli.ConfirmOptions{
		Question:  fmt.Sprintf("Load %d fixture(s) into %s?", len(paths), s.Path()),
		Details:   paths,
		AssumeYes: opts.Yes,
		Input:     cmd.InOrStdin(),
		Output:    cmd.OutOrStdout(),
	})
	if err != nil || !ok {
		return abortedOr(cmd, err)
	}

	pw := cli.NewProgressWriter(cmd.OutOrStdout())
	if err := backup(ctx, s, pw); err != nil {
		return err
	}

	total := 0
	for _, path := range paths {
		n, err := loadFixture(ctx, s, path)
		if err != nil {
			pw.PrintError(err.Error())
			return err
		}
		pw.Step(cli.StageComplete, fmt.Sprintf("Loaded %d object(s) from %s", n, path))
		total += n
	}
	pw.PrintSuccess(fmt.Sprintf("Installed %d object(s) from %d fixture(s)", total, len(paths)))
	return nil
}

func loadFixture(ctx context.Context, s *store.Store, path string) (int, error) {
	f, err := fixtures.FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open fixture: %w", err)
	}
	defer file.Close()

	n, err := fixtures.Load(ctx, s, file, f)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	return n, nil
}

func newRestoreCmd() *cobra.Command {
	opts := &DestructiveOptions{}

	cmd := &cobra.Command{
		Use:   "restore DUMP",
		Short: "Replace the database contents with an SQL dump",
		Long: `Flush every model table and replay DUMP, a file of SQL statements such
as "pocs dumpdata --format sql" writes, in a single transaction. Nothing
changes if any statement fails. The database file is backed up first
when database.backup-enabled is set.`,
		Example: `  pocs restore dump.sql
  pocs --database test.sqlite3 restore testdata/products.sql --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				return runRestore(ctx, cmd, s, opts, args[0])
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not prompt for confirmation")

	return cmd
}

func runRestore(ctx context.Context, cmd *cobra.Command, s *store.Store, opts *DestructiveOptions, dumpPath string) error {
	info, err := os.Stat(dumpPath)
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}

	pw := cli.NewProgressWriter(cmd.OutOrStdout())
	pw.PrintSummary("Restore plan", [][2]string{
		{"Database", s.Path()},
		{"Dump", fmt.Sprintf("%s (%s)", dumpPath, format.Size(info.Size()))},
	})

	ok, err := cli.Confirm(cli.ConfirmOptions{
		Question:  "Every post and product will be replaced. Continue?",
		AssumeYes: opts.Yes,
		Input:     cmd.InOrStdin(),
		Output:    cmd.OutOrStdout(),
	})
	if err != nil || !ok {
		return abortedOr(cmd, err)
	}

	if err := backup(ctx, s, pw); err != nil {
		return err
	}

	file, err := os.Open(dumpPath)
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	defer file.Close()

	pw.Step(cli.StageRunning, "Restoring "+filepath.Base(dumpPath))
	if err := s.Restore(ctx, file); err != nil {
		pw.PrintError(err.Error())
		return err
	}
	pw.PrintSuccess("Restored " + dumpPath)
	return nil
}

func newFlushCmd() *cobra.Command {
	opts := &DestructiveOptions{}

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete every row and reset primary keys",
		Long: `Delete all posts and products and reset their id sequences. Applied
migrations are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				ok, err := cli.Confirm(cli.ConfirmOptions{
					Question:  fmt.Sprintf("Delete all data in %s?", s.Path()),
					AssumeYes: opts.Yes,
					Input:     cmd.InOrStdin(),
					Output:    cmd.OutOrStdout(),
				})
				if err != nil || !ok {
					return abortedOr(cmd, err)
				}

				pw := cli.NewProgressWriter(cmd.OutOrStdout())
				if err := backup(ctx, s, pw); err != nil {
					return err
				}
				if err := s.Flush(ctx); err != nil {
					return err
				}
				pw.PrintSuccess("Flushed " + s.Path())
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "do not prompt for confirmation")

	return cmd
}

// backup snapshots the database ahead of a destructive command and prints
// how to put it back.
func backup(ctx context.Context, s *store.Store, pw *cli.ProgressWriter) error {
	cfg := GlobalOptions.Config.Database
	if s.Path() == store.MemoryPath && cfg.BackupDirectory == "" {
		logger.Debug("skipping backup of in-memory database")
		return nil
	}

	path, err := s.Backup(ctx, store.BackupOptions{
		Enabled:   cfg.BackupEnabled,
		Directory: cfg.BackupDirectory,
	})
	if err != nil {
		pw.PrintError(err.Error())
		return fmt.Errorf("backup database: %w", err)
	}
	if path == "" {
		return nil
	}

	size := ""
	if info, statErr := os.Stat(path); statErr == nil {
		size = " (" + format.Size(info.Size()) + ")"
	}
	pw.Step(cli.StageComplete, "Backed up database to "+path+size)
	pw.Step(cli.StageRunning, "To undo: "+shellescape.QuoteCommand([]string{"cp", path, s.Path()}))
	return nil
}

func abortedOr(cmd *cobra.Command, err error) error {
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
	return nil
}
