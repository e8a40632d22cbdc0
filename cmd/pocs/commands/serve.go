package commands

import (
	"context"
	"time"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/admin"
	"github.com/andri/pocs/pkg/store"
	"github.com/andri/pocs/pkg/views"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product list and the admin site",
		Long: `Serve the filtered, paginated product list at ` + views.ProductListPath + `
and the admin site at ` + admin.Prefix + ` until interrupted.`,
		Example: `  pocs serve
  pocs serve --host 0.0.0.0 --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(runServe)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default: 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default: 8000)")

	return cmd
}

func runServe(ctx context.Context, s *store.Store) error {
	cfg := GlobalOptions.Config

	site := admin.DefaultSite(s, cfg.Pagination.AdminPerPage)
	srv := &views.Server{
		Addr: cfg.Server.Addr(),
		Handler: views.NewHandler(views.Routes{
			Store:           s,
			ProductsPerPage: cfg.Pagination.ProductsPerPage,
			Admin:           site.Handler(),
		}),
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
	}

	logger.Info("starting server", "addr", srv.Addr, "database", s.Path(), "time_zone", s.Location().String())
	return srv.ListenAndServe(ctx)
}
