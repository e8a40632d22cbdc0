package commands

import (
	"context"
	"strings"

	"github.com/andri/pocs/pkg/output"
	"github.com/andri/pocs/pkg/store"
	"github.com/spf13/cobra"
)

// MigrateOptions holds options for the migrate command
type MigrateOptions struct {
	Output string
}

func newMigrateCmd() *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply pending migrations to the configured database and list every
applied migration. Running it again is a no-op.`,
		Example: `  pocs migrate
  pocs --database /tmp/demo.sqlite3 migrate --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				// Open has already migrated
				applied, err := s.AppliedMigrations(ctx)
				if err != nil {
					return err
				}
				return output.Render(cmd.OutOrStdout(), &output.Data{Migrations: applied}, format)
			})
		},
	}

	addOutputFlag(cmd, &opts.Output)
	return cmd
}

// addOutputFlag registers --output/-o for list commands.
func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", string(output.FormatTable), "output format: "+strings.Join(output.Names(), ", "))
	_ = cmd.RegisterFlagCompletionFunc("output", completeFixed(output.Names()...))
}
