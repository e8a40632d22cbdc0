package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/andri/pocs/pkg/config"
	"github.com/andri/pocs/pkg/filters"
	"github.com/andri/pocs/pkg/forms"
	"github.com/andri/pocs/pkg/output"
	"github.com/andri/pocs/pkg/paginate"
	"github.com/andri/pocs/pkg/store"
	"github.com/andri/pocs/pkg/tui/models"
	"github.com/andri/pocs/pkg/tui/terminal"
	"github.com/andri/pocs/pkg/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// ProductAddOptions holds options for the product add command
type ProductAddOptions struct {
	Name        string
	Description string
	ReleaseDate string
}

// ProductListOptions holds options for the product ls and browse commands
type ProductListOptions struct {
	// Month and Year are passed through unparsed so that bad values are
	// reported by the product filter
	Month   string
	Year    string
	Page    string
	PerPage int
	Output  string
}

// values renders the options as product list query parameters.
func (o *ProductListOptions) values() url.Values {
	values := url.Values{}
	if o.Month != "" {
		values.Set(filters.ParamMonth, o.Month)
	}
	if o.Year != "" {
		values.Set(filters.ParamYear, o.Year)
	}
	if o.Page != "" {
		values.Set("page", o.Page)
	}
	return values
}

func (o *ProductListOptions) perPage() int {
	if o.PerPage > 0 {
		return o.PerPage
	}
	if n := GlobalOptions.Config.Pagination.ProductsPerPage; n > 0 {
		return n
	}
	return config.DefaultProductsPerPage
}

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Create, list and browse products",
	}

	cmd.AddCommand(newProductAddCmd())
	cmd.AddCommand(newProductListCmd())
	cmd.AddCommand(newProductBrowseCmd())

	return cmd
}

func newProductAddCmd() *cobra.Command {
	opts := &ProductAddOptions{}

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a product",
		Example: `  pocs product add --name Alpha --description "First release" --release-date 2021-06-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				form := forms.NewProductForm(nil, forms.OptionsFor(s))
				form.Bind(url.Values{
					"name":         {opts.Name},
					"description":  {opts.Description},
					"release_date": {opts.ReleaseDate},
				})
				p, err := form.Save(ctx, s)
				if err != nil {
					return formError(cmd.ErrOrStderr(), form, err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created product %d %q released %s\n", p.ID, p.Name, p.ReleaseDate)
				return err
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Name, "name", "", "product name (at most 255 characters)")
	flags.StringVar(&opts.Description, "description", "", "product description")
	flags.StringVar(&opts.ReleaseDate, "release-date", "", "release date, YYYY-MM-DD")

	return cmd
}

func addProductListFlags(cmd *cobra.Command, opts *ProductListOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.Month, "month", "", "only products released in this month (1-12)")
	flags.StringVar(&opts.Year, "year", "", "only products released in this year")
	flags.StringVar(&opts.Page, "page", "", `page number, or "last" (default: 1)`)
	flags.IntVar(&opts.PerPage, "per-page", 0, "products per page (default: pagination.products-per-page)")
}

func newProductListCmd() *cobra.Command {
	opts := &ProductListOptions{}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List products a page at a time",
		Long: `List products filtered by release month and year, paginated like the
product list page. A value that is not a number is reported and matches
no products.`,
		Example: `  pocs product ls
  pocs product ls --month 6 --year 2021
  pocs product ls --page last --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(opts.Output)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				list := &views.ProductList{Store: s, PerPage: opts.perPage()}
				page, err := list.Load(ctx, opts.values())
				if err != nil {
					return pageError(err, opts.Page)
				}
				return output.Render(cmd.OutOrStdout(), &output.Data{Products: productSection(page)}, format)
			})
		},
	}

	addProductListFlags(cmd, opts)
	addOutputFlag(cmd, &opts.Output)

	return cmd
}

func productSection(page *views.ProductListPage) *output.ProductSection {
	section := &output.ProductSection{
		Count:    page.Page.Count,
		Page:     page.Page.Number,
		NumPages: page.Page.NumPages,
		Errors:   page.Filter.ErrorMap(),
		Items:    page.Products,
	}
	if values := page.Filter.Values(); len(values) > 0 {
		section.Filters = make(map[string]string, len(values))
		for k := range values {
			section.Filters[k] = values.Get(k)
		}
	}
	return section
}

// pageError phrases paginator errors the way the list page does.
func pageError(err error, raw string) error {
	switch {
	case errors.Is(err, paginate.ErrPageNotAnInteger):
		return fmt.Errorf("page %q is not an integer: %w", raw, err)
	case errors.Is(err, paginate.ErrEmptyPage):
		if _, convErr := strconv.Atoi(raw); convErr == nil {
			return fmt.Errorf("page %s contains no results: %w", raw, err)
		}
	}
	return err
}

func newProductBrowseCmd() *cobra.Command {
	opts := &ProductListOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse products interactively",
		Long: `Open an interactive product list. Use n/p to change page and / to
filter, e.g. "month=6 year=2021" or "2021-06".`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				cap := terminal.DetectCapabilities()
				terminal.ConfigureLipgloss(cap)

				m := models.NewBrowseModel(models.BrowseModelConfig{
					Context:    ctx,
					Store:      s,
					PerPage:    opts.perPage(),
					Values:     opts.values(),
					Capability: &cap,
				})

				p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
				if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return fmt.Errorf("browse products: %w", err)
				}
				return nil
			})
		},
	}

	addProductListFlags(cmd, opts)

	return cmd
}
