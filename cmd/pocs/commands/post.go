package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/andri/pocs/pkg/forms"
	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/output"
	"github.com/andri/pocs/pkg/store"
	"github.com/spf13/cobra"
)

// PostListOptions holds options for the post ls commands
type PostListOptions struct {
	Output string
	Limit  int
}

func newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create and list posts",
		Long:  `Posts carry a single required timezone-aware datetime.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add DATETIME",
		Short: "Create a post",
		Long: `Create a post through its admin form. DATETIME is read in the configured
time zone unless it carries an offset.`,
		Example: `  pocs post add "2021-06-15 10:30"
  pocs post add 2021-06-15T10:30:00+09:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				form := forms.NewPostAdminForm(nil, forms.OptionsFor(s))
				form.Bind(url.Values{"datetime": {args[0]}})
				post, err := form.Save(ctx, s)
				if err != nil {
					return formError(cmd.ErrOrStderr(), form, err)
				}
				return printCreated(cmd.OutOrStdout(), post, post.DateTime, s)
			})
		},
	})

	cmd.AddCommand(newPostListCmd(model.PostMeta(), func(ctx context.Context, s *store.Store, limit int) ([]output.PostRow, error) {
		posts, err := s.Posts().List(ctx, store.ListOptions{Limit: limit})
		return output.PostRows(posts), err
	}))

	return cmd
}

func newPostDefaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post-default",
		Short: "Create and list posts whose datetime defaults to now",
		Long: `Posts with a default datetime are stamped with the current time in the
configured time zone when no datetime is given.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [DATETIME]",
		Short: "Create a post, stamped with now unless DATETIME is given",
		Example: `  pocs post-default add
  pocs --time-zone Asia/Tokyo post-default add "2021-06-15 21:00"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				form := forms.NewPostWithDefaultForm(nil, forms.OptionsFor(s))
				values := url.Values{}
				if len(args) > 0 {
					values.Set("datetime", args[0])
				}
				form.Bind(values)
				post, err := form.Save(ctx, s)
				if err != nil {
					return formError(cmd.ErrOrStderr(), form, err)
				}
				return printCreated(cmd.OutOrStdout(), post, post.DateTime, s)
			})
		},
	})

	cmd.AddCommand(newPostListCmd(model.PostWithDefaultMeta(), func(ctx context.Context, s *store.Store, limit int) ([]output.PostRow, error) {
		posts, err := s.DefaultPosts().List(ctx, store.ListOptions{Limit: limit})
		return output.DefaultPostRows(posts), err
	}))

	return cmd
}

func newPostListCmd(meta model.Meta, list func(context.Context, *store.Store, int) ([]output.PostRow, error)) *cobra.Command {
	opts := &PostListOptions{}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List " + meta.VerboseNamePlural,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				rows, err := list(ctx, s, opts.Limit)
				if err != nil {
					return err
				}
				for i := range rows {
					rows[i].DateTime = rows[i].DateTime.In(s.Location())
				}
				data := &output.Data{Posts: []output.PostSection{{Model: meta.ModelName, Items: rows}}}
				return output.Render(cmd.OutOrStdout(), data, format)
			})
		},
	}

	addOutputFlag(cmd, &opts.Output)
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rows (0 = all)")

	return cmd
}

func printCreated(w io.Writer, inst model.Instance, at time.Time, s *store.Store) error {
	_, err := fmt.Fprintf(w, "Created %s %d at %s\n", inst.Meta().VerboseName, inst.PK(), at.In(s.Location()).Format(dateTimeLayout))
	return err
}

const dateTimeLayout = "2006-01-02 15:04:05 MST"

// formError prints a form's validation errors and returns a short error
// for the exit status.
func formError(w io.Writer, form forms.Form, err error) error {
	if !errors.Is(err, forms.ErrInvalidForm) && len(form.NonFieldErrors()) == 0 {
		return err
	}
	for _, f := range form.Fields() {
		for _, msg := range f.Errors {
			_, _ = fmt.Fprintf(w, "%s: %s\n", f.Label, msg)
		}
	}
	for _, e := range form.NonFieldErrors() {
		_, _ = fmt.Fprintf(w, "%s\n", e.Detail)
	}
	return fmt.Errorf("%s was not saved", form.Meta().VerboseName)
}
