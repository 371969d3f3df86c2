package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fitcharts/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering service",
		Long: `Run the HTTP rendering service.

Without --config the service listens on :8080 with a file cache in the
system temp directory and in-memory chart storage. A TOML config file
selects Redis for the cache and MongoDB for saved charts.`,
		Example: `  fitcharts serve
  fitcharts serve --config /etc/fitcharts.toml --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config file)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config) error {
	srv, err := server.Open(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(closeCtx); err != nil {
			c.Logger.Warn("close backends", "error", err)
		}
	}()

	printInfo("Serving on %s", StyleHighlight.Render(cfg.Addr))
	printDetail("cache: %s, storage: %s", cfg.Cache.Backend, cfg.Storage.Backend)
	return srv.ListenAndServe(ctx)
}
